package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/subtitles"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "export <video>",
		Short: "Write a subtitle file from the indexed transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var formats []subtitles.Format
			if strings.EqualFold(strings.TrimSpace(formatFlag), "all") {
				formats = []subtitles.Format{subtitles.FormatSRT, subtitles.FormatVTT}
			} else {
				format, err := subtitles.ParseFormat(formatFlag)
				if err != nil {
					return err
				}
				formats = []subtitles.Format{format}
			}

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
			for _, format := range formats {
				outputPath, err := subtitles.Generate(segments, videoPath, format)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "F", "srt", "Subtitle format (srt, vtt, or all)")
	return cmd
}
