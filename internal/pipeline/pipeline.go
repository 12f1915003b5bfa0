package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"podscribe/internal/config"
	"podscribe/internal/logging"
	"podscribe/internal/notifications"
	"podscribe/internal/services"
	"podscribe/internal/services/download"
	"podscribe/internal/services/toolcmd"
	"podscribe/internal/store"
)

// Observer is invoked synchronously after every status write with the new
// status and the episode title. It is the sole notification channel to any
// attached front end.
type Observer func(status store.Status, episodeTitle string)

// AudioFetcher downloads a remote audio file to a local destination.
type AudioFetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// Pipeline executes the per-episode state machine.
type Pipeline struct {
	cfg        *config.Config
	store      *store.Store
	downloader AudioFetcher
	runner     toolcmd.Runner
	notifier   notifications.Service
	observer   Observer
	logger     *slog.Logger
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithObserver attaches a status-transition observer.
func WithObserver(observer Observer) Option {
	return func(p *Pipeline) {
		p.observer = observer
	}
}

// WithDownloader overrides the default audio fetcher.
func WithDownloader(fetcher AudioFetcher) Option {
	return func(p *Pipeline) {
		if fetcher != nil {
			p.downloader = fetcher
		}
	}
}

// WithRunner overrides the default tool runner.
func WithRunner(runner toolcmd.Runner) Option {
	return func(p *Pipeline) {
		if runner != nil {
			p.runner = runner
		}
	}
}

// WithNotifier overrides the default notification service.
func WithNotifier(notifier notifications.Service) Option {
	return func(p *Pipeline) {
		if notifier != nil {
			p.notifier = notifier
		}
	}
}

// New builds a pipeline with default collaborators derived from cfg.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:        cfg,
		store:      st,
		downloader: download.New(cfg, logger),
		runner:     toolcmd.NewShell(logger),
		notifier:   notifications.NewService(cfg),
		logger:     logging.WithComponent(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process advances one episode through the stages selected by mode. Any
// failure inside a stage is recorded in the store as status "error" with the
// message and returned; it never panics across episodes. Precondition
// failures (unknown episode, insights-only without a transcript) are returned
// without mutating state.
//
// Cancellation of ctx takes effect only between stages: a stage already in
// progress always runs to completion or failure, and its status is persisted
// even when the caller has gone away.
func (p *Pipeline) Process(ctx context.Context, episodeID int64, mode Mode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Stage work and status writes run on a detached context so a stop
	// signal never kills an in-flight external tool or drops a status write.
	workCtx := context.WithoutCancel(ctx)

	// Always work from a fresh row so a stale snapshot never masks progress
	// made by an earlier pass.
	episode, err := p.store.GetEpisodeByID(workCtx, episodeID)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "pipeline", "load episode", fmt.Sprintf("id %d", episodeID), err)
	}

	logger := p.logger.With(
		logging.Int64(logging.FieldEpisodeID, episode.ID),
		logging.String(logging.FieldRequestID, uuid.NewString()),
	)

	if mode == ModeInsightsOnly && !fileExists(episode.TranscriptPath) {
		return services.Wrap(services.ErrValidation, "pipeline", "insights-only",
			fmt.Sprintf("episode %q has no transcript yet", episode.Title), nil)
	}

	if err := os.MkdirAll(episode.EpisodeDir, 0o755); err != nil {
		return fmt.Errorf("create episode directory %s: %w", episode.EpisodeDir, err)
	}

	logger.Info("processing episode",
		logging.String("title", episode.Title),
		logging.String("mode", string(mode)))

	if err := p.runStages(ctx, workCtx, episode, mode, logger); err != nil {
		// A stop request between stages is not an episode failure; the
		// episode rests at whichever done-status the last stage reached.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if statusErr := p.setStatus(workCtx, episode, store.StatusError, err.Error()); statusErr != nil {
			logger.Error("record episode error", logging.Error(statusErr))
		}
		logger.Error("episode failed", logging.String("title", episode.Title), logging.Error(err))
		if notifyErr := p.notifier.NotifyEpisodeFailed(workCtx, episode.Title, err); notifyErr != nil {
			logger.Warn("notify episode failure", logging.Error(notifyErr))
		}
		return err
	}
	return nil
}

// runStages checks ctx only at stage boundaries; the stages themselves run
// on workCtx, which does not carry the caller's cancellation.
func (p *Pipeline) runStages(ctx, workCtx context.Context, episode *store.Episode, mode Mode, logger *slog.Logger) error {
	if mode != ModeInsightsOnly {
		if err := p.downloadStage(workCtx, episode, logger); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.transcribeStage(workCtx, episode, logger); err != nil {
			return err
		}
		if mode == ModeTranscribeOnly {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return p.analyzeStage(workCtx, episode, logger)
}

func (p *Pipeline) downloadStage(ctx context.Context, episode *store.Episode, logger *slog.Logger) error {
	if !fileExists(episode.AudioPath) {
		if episode.AudioURL == "" {
			return services.Wrap(services.ErrValidation, "download", "fetch",
				fmt.Sprintf("episode %q has no audio url", episode.Title), nil)
		}
		if err := p.setStatus(ctx, episode, store.StatusDownloading, ""); err != nil {
			return err
		}
		logger.Info("downloading audio", logging.String("url", episode.AudioURL))
		if err := p.downloader.Fetch(ctx, episode.AudioURL, episode.AudioPath); err != nil {
			return err
		}
	}
	return p.setStatus(ctx, episode, store.StatusDownloaded, "")
}

func (p *Pipeline) transcribeStage(ctx context.Context, episode *store.Episode, logger *slog.Logger) error {
	if !fileExists(episode.TranscriptPath) {
		if err := p.setStatus(ctx, episode, store.StatusTranscribing, ""); err != nil {
			return err
		}
		logger.Info("transcribing", logging.String("audio", episode.AudioPath))
		vars := toolcmd.Vars{
			Audio:      episode.AudioPath,
			Transcript: episode.TranscriptPath,
		}
		if err := p.runner.Run(ctx, "transcribe", p.cfg.Tools.TranscribeCmd, vars); err != nil {
			return err
		}
		if !fileExists(episode.TranscriptPath) {
			return services.Wrap(services.ErrExternalTool, "transcribe", "verify output",
				fmt.Sprintf("did not produce expected file: %s", episode.TranscriptPath), nil)
		}
	}
	return p.setStatus(ctx, episode, store.StatusTranscribed, "")
}

func (p *Pipeline) analyzeStage(ctx context.Context, episode *store.Episode, logger *slog.Logger) error {
	if !fileExists(episode.InsightsPath) {
		if err := p.setStatus(ctx, episode, store.StatusAnalyzing, ""); err != nil {
			return err
		}
		logger.Info("extracting insights", logging.String("transcript", episode.TranscriptPath))
		vars := toolcmd.Vars{
			Transcript:   episode.TranscriptPath,
			EpisodeDir:   filepath.Dir(episode.InsightsPath),
			InsightsFile: filepath.Base(episode.InsightsPath),
		}
		if err := p.runner.Run(ctx, "analyze", p.cfg.Tools.InsightsCmd, vars); err != nil {
			return err
		}
		if !fileExists(episode.InsightsPath) {
			return services.Wrap(services.ErrExternalTool, "analyze", "verify output",
				fmt.Sprintf("did not produce expected file: %s", episode.InsightsPath), nil)
		}
	}
	if err := p.setStatus(ctx, episode, store.StatusDone, ""); err != nil {
		return err
	}
	if err := p.notifier.NotifyEpisodeCompleted(ctx, episode.Title); err != nil {
		logger.Warn("notify episode completion", logging.Error(err))
	}
	return nil
}

// setStatus writes the transition through to the store before reporting it to
// the observer. A crash after the write is always resumable from the store.
func (p *Pipeline) setStatus(ctx context.Context, episode *store.Episode, status store.Status, errMessage string) error {
	if err := p.store.UpdateEpisodeStatus(ctx, episode.ID, status, errMessage); err != nil {
		return err
	}
	episode.Status = status
	episode.ErrorMessage = errMessage
	if p.observer != nil {
		p.observer(status, episode.Title)
	}
	return nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
