package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/index"

	"github.com/jedib0t/go-pretty/v6/text"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var videoFlag string
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed transcripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			query := args[0]
			if videoFlag != "" {
				videoPath, err := config.ExpandPath(videoFlag)
				if err != nil {
					return err
				}
				hits, err := store.Search(cmd.Context(), videoPath, query, limitFlag)
				if err != nil {
					return err
				}
				printHits(cmd, videoPath, hits)
				return nil
			}

			results, err := store.SearchAll(cmd.Context(), query, limitFlag)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
				return nil
			}
			for videoPath, hits := range results {
				printHits(cmd, videoPath, hits)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&videoFlag, "video", "v", "", "Limit the search to one video")
	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 0, "Maximum number of hits (default 50)")
	return cmd
}

func printHits(cmd *cobra.Command, videoPath string, hits []index.SearchHit) {
	out := cmd.OutOrStdout()
	if len(hits) == 0 {
		fmt.Fprintf(out, "%s: no matches\n", videoPath)
		return
	}

	fmt.Fprintln(out, videoPath)
	rows := make([][]string, 0, len(hits))
	for _, hit := range hits {
		rows = append(rows, []string{
			formatTimecode(hit.Start),
			formatTimecode(hit.End),
			highlightSnippet(hit.Highlighted),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Start", "End", "Match"},
		rows,
		0, 1,
	))
}

// highlightSnippet converts snippet markers to bold text on terminals and
// strips them elsewhere.
func highlightSnippet(snippet string) string {
	if !isTerminal() {
		return stripMarkTags(snippet)
	}
	return replaceMarkTags(snippet, text.Bold.EscapeSeq(), text.EscapeReset)
}
