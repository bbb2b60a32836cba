package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/config"
)

func newSegmentsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "segments <video>",
		Short: "Print the full transcript of an indexed video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			videoPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if _, err := store.GetVideo(cmd.Context(), videoPath); err != nil {
				return err
			}

			segments := store.AllSegments(cmd.Context(), videoPath)
			if len(segments) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Transcript is empty.")
				return nil
			}
			for _, seg := range segments {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s - %s] %s\n",
					formatTimecode(seg.Start), formatTimecode(seg.End), seg.Text)
			}
			return nil
		},
	}
}
