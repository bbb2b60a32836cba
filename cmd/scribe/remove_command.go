package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/config"
)

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <video>...",
		Short: "Remove videos from the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			for _, arg := range args {
				videoPath, err := config.ExpandPath(arg)
				if err != nil {
					return err
				}
				if err := store.RemoveVideo(cmd.Context(), videoPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", videoPath)
			}
			return nil
		},
	}
}
