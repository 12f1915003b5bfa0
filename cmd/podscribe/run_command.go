package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"podscribe/internal/config"
	"podscribe/internal/store"
	"podscribe/internal/watcher"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var transcribeOnly bool
	var insightsOnly bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll feeds continuously and process new episodes",
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
				return w.Run(signalCtx)
			})
		},
	}

	cmd.Flags().BoolVar(&transcribeOnly, "transcribe-only", false, "Stop after transcription")
	cmd.Flags().BoolVar(&insightsOnly, "insights-only", false, "Only extract insights from existing transcripts")
	cmd.MarkFlagsMutuallyExclusive("transcribe-only", "insights-only")
	return cmd
}
