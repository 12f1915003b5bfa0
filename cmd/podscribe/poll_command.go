package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"podscribe/internal/config"
	"podscribe/internal/store"
	"podscribe/internal/watcher"
)

func newPollCommand(ctx *commandContext) *cobra.Command {
	var transcribeOnly bool
	var insightsOnly bool

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll all feeds once and process new episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				w := watcher.New(cfg, st, logger,
					watcher.WithMode(modeFromFlags(transcribeOnly, insightsOnly)))
				summary, err := w.PollOnce(signalCtx)
				if summary != nil {
					out := cmd.OutOrStdout()
					fmt.Fprintf(out, "Feeds polled: %d (%d failed)\n", summary.Feeds, summary.FeedErrors)
					fmt.Fprintf(out, "Episodes: %d processed, %d skipped, %d failed\n",
						summary.Processed, summary.Skipped, summary.Failed)
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&transcribeOnly, "transcribe-only", false, "Stop after transcription")
	cmd.Flags().BoolVar(&insightsOnly, "insights-only", false, "Only extract insights from existing transcripts")
	cmd.MarkFlagsMutuallyExclusive("transcribe-only", "insights-only")
	return cmd
}
