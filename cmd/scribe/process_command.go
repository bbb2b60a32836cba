package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"scribe/internal/extraction"
	"scribe/internal/indexing"
	"scribe/internal/runner"
	"scribe/internal/scheduler"
	"scribe/internal/services"
	"scribe/internal/transcription"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "process <video-or-directory>...",
		Short: "Transcribe and index videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			videos, err := collectVideos(args)
			if err != nil {
				return err
			}
			if len(videos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No video files found.")
				return nil
			}

			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire process lock: %w", err)
			}
			if !locked {
				return errors.New("another scribe process is already running")
			}
			defer lock.Unlock()

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			extractor := extraction.NewService(cfg.Extraction, logger)
			engine := transcription.NewService(cfg.Transcription, logger)
			indexer := indexing.NewService(cfg, store, logger)
			r := runner.New(extractor, engine, indexer, cfg.Paths.WorkDir, logger)
			sched := scheduler.New(r, store, cfg.Pipeline.MaxConcurrent, logger)

			accepted := 0
			for _, video := range videos {
				if _, ok := sched.Submit(video, force); ok {
					accepted++
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Skipping %s (already queued)\n", video)
				}
			}
			if accepted == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to do.")
				return nil
			}

			interrupts := make(chan os.Signal, 1)
			signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(interrupts)
			go func() {
				<-interrupts
				fmt.Fprintln(cmd.OutOrStdout(), "\nCancelling...")
				for _, video := range videos {
					sched.Cancel(video)
				}
			}()

			results := consumeEvents(cmd, sched)
			printSummary(cmd, results)

			for _, res := range results {
				if res.State == runner.StateFailed {
					return errors.New("one or more videos failed to process")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Reprocess videos that are already indexed")
	return cmd
}

// consumeEvents renders progress until the scheduler drains, then returns
// the completion events. Interactive terminals get an in-place progress
// line; everything else gets one line per state change.
func consumeEvents(cmd *cobra.Command, sched *scheduler.Scheduler) []runner.CompletionEvent {
	out := cmd.OutOrStdout()
	interactive := isTerminal()

	done := make(chan []runner.CompletionEvent, 1)
	go func() {
		var events []runner.CompletionEvent
		for ev := range sched.Completions() {
			events = append(events, ev)
		}
		done <- events
	}()
	// Closes the event channels once every job finishes, ending both loops.
	go sched.Wait()

	lastState := make(map[string]runner.State)
	for ev := range sched.Progress() {
		if interactive {
			fmt.Fprintf(out, "\r\033[K%s: %s %.0f%% (%s)", ev.VideoPath, ev.State, ev.Percent, ev.Message)
			continue
		}
		if lastState[ev.JobID] != ev.State {
			lastState[ev.JobID] = ev.State
			fmt.Fprintf(out, "%s: %s (%s)\n", ev.VideoPath, ev.State, ev.Message)
		}
	}
	if interactive {
		fmt.Fprintln(out)
	}
	return <-done
}

func printSummary(cmd *cobra.Command, results []runner.CompletionEvent) {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		detail := ""
		if res.Err != nil {
			detail = services.Message(res.Err)
		}
		rows = append(rows, []string{
			res.VideoPath,
			string(res.State),
			res.Duration.Round(time.Second).String(),
			detail,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Video", "Result", "Duration", "Detail"},
		rows,
		2,
	))
}

func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
