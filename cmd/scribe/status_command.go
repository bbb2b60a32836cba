package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/deps"
	"scribe/internal/extraction"
	"scribe/internal/indexing"
	"scribe/internal/stage"
	"scribe/internal/transcription"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check external dependencies and pipeline readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			depRows := make([][]string, 0, 2)
			allAvailable := true
			for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
				state := "ok"
				if !status.Available {
					state = "missing"
					if !status.Optional {
						allAvailable = false
					}
				}
				detail := status.Detail
				if detail == "" {
					detail = status.Description
				}
				depRows = append(depRows, []string{status.Name, status.Command, state, detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Dependency", "Command", "State", "Detail"},
				depRows,
			))

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			healths := []stage.Health{
				extraction.NewService(cfg.Extraction, logger).HealthCheck(cmd.Context()),
				transcription.NewService(cfg.Transcription, logger).HealthCheck(cmd.Context()),
				indexing.NewService(cfg, store, logger).HealthCheck(cmd.Context()),
			}
			healthRows := make([][]string, 0, len(healths))
			for _, health := range healths {
				state := "ready"
				if !health.Ready {
					state = "not ready"
				}
				healthRows = append(healthRows, []string{health.Name, state, health.Detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Stage", "State", "Detail"},
				healthRows,
			))

			if !allAvailable {
				return fmt.Errorf("missing required dependencies")
			}
			return nil
		},
	}
}
