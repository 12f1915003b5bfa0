package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"

	"podscribe/internal/config"
	"podscribe/internal/ingest"
	"podscribe/internal/logging"
	"podscribe/internal/notifications"
	"podscribe/internal/pipeline"
	"podscribe/internal/store"
)

// Watcher orchestrates ingestion and pipeline processing.
type Watcher struct {
	cfg      *config.Config
	store    *store.Store
	ingestor *ingest.Ingestor
	pipeline *pipeline.Pipeline
	notifier notifications.Service
	logger   *slog.Logger
	mode     pipeline.Mode
	lock     *flock.Flock
}

// Option configures optional watcher collaborators.
type Option func(*Watcher)

// WithPipeline overrides the default pipeline.
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(w *Watcher) {
		if p != nil {
			w.pipeline = p
		}
	}
}

// WithIngestor overrides the default ingestor.
func WithIngestor(ing *ingest.Ingestor) Option {
	return func(w *Watcher) {
		if ing != nil {
			w.ingestor = ing
		}
	}
}

// WithNotifier overrides the default notification service.
func WithNotifier(n notifications.Service) Option {
	return func(w *Watcher) {
		if n != nil {
			w.notifier = n
		}
	}
}

// WithMode selects which pipeline stages automatic polling runs.
func WithMode(mode pipeline.Mode) Option {
	return func(w *Watcher) {
		if mode != "" {
			w.mode = mode
		}
	}
}

// New constructs a watcher with default collaborators derived from cfg.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		cfg:      cfg,
		store:    st,
		ingestor: ingest.New(cfg, st, logger),
		pipeline: pipeline.New(cfg, st, logger),
		notifier: notifications.NewService(cfg),
		logger:   logging.WithComponent(logger, "watcher"),
		mode:     pipeline.ModeFull,
		lock:     flock.New(cfg.LockPath()),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// PollSummary aggregates one pass over all configured feeds.
type PollSummary struct {
	Feeds      int
	FeedErrors int
	Processed  int
	Failed     int
	Skipped    int
}

// PollOnce ingests every configured feed and processes its incomplete
// episodes in first-seen order. Errors are isolated per feed and per episode;
// only cancellation aborts the pass early.
func (w *Watcher) PollOnce(ctx context.Context) (*PollSummary, error) {
	started := time.Now()
	summary := &PollSummary{}

	for _, feedCfg := range w.cfg.Feeds {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Feeds++

		result, err := w.ingestor.IngestFeed(ctx, feedCfg)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}
			summary.FeedErrors++
			w.logger.Error("feed ingestion failed",
				logging.String(logging.FieldFeed, feedCfg.URL),
				logging.Error(err))
			continue
		}

		if err := w.processFeed(ctx, result.FeedID, summary); err != nil {
			return summary, err
		}
	}

	w.logger.Info("poll completed",
		logging.Int("feeds", summary.Feeds),
		logging.Int("processed", summary.Processed),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", time.Since(started)))
	if summary.Processed > 0 || summary.Failed > 0 {
		if err := w.notifier.NotifyPollCompleted(ctx, summary.Processed, summary.Failed, time.Since(started)); err != nil {
			w.logger.Warn("notify poll completion", logging.Error(err))
		}
	}
	return summary, nil
}

func (w *Watcher) processFeed(ctx context.Context, feedID int64, summary *PollSummary) error {
	episodes, err := w.store.ListIncomplete(ctx, feedID, w.cfg.Runtime.MaxNewPerFeed)
	if err != nil {
		w.logger.Error("list incomplete episodes", logging.Error(err))
		summary.FeedErrors++
		return nil
	}

	for _, episode := range episodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if skip, reason := shouldSkip(episode, w.mode); skip {
			summary.Skipped++
			w.logger.Debug("skipping episode",
				logging.Int64(logging.FieldEpisodeID, episode.ID),
				logging.String("reason", reason))
			continue
		}
		if err := w.pipeline.Process(ctx, episode.ID, w.mode); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			summary.Failed++
			continue
		}
		summary.Processed++
	}
	return nil
}

// Run polls continuously on the configured interval until ctx is cancelled.
// A file lock guarantees a single running instance per data directory.
func (w *Watcher) Run(ctx context.Context) error {
	ok, err := w.lock.TryLock()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("another podscribe instance is already running")
	}
	defer func() {
		_ = w.lock.Unlock()
	}()

	w.logger.Info("watch loop started",
		logging.Int("interval_minutes", w.cfg.Runtime.PollIntervalMinutes),
		logging.String("lock", w.cfg.LockPath()))

	interval := time.Duration(w.cfg.Runtime.PollIntervalMinutes) * time.Minute
	for {
		if ctx.Err() != nil {
			w.logger.Info("watch loop stopped")
			return nil
		}
		if _, err := w.PollOnce(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			w.logger.Error("poll failed", logging.Error(err))
		}
		if err := sleepIncrements(ctx, interval); err != nil {
			w.logger.Info("watch loop stopped")
			return nil
		}
	}
}

// BulkSummary reports the outcome of an operator-submitted batch.
type BulkSummary struct {
	Processed int
	Failed    int
	Skipped   int
}

// ProcessEpisodes runs the selected episodes through the pipeline
// sequentially in the given order, skipping episodes incompatible with the
// chosen mode. Failures never abort the rest of the batch; cancellation does,
// between episodes.
func (w *Watcher) ProcessEpisodes(ctx context.Context, episodeIDs []int64, mode pipeline.Mode) (*BulkSummary, error) {
	summary := &BulkSummary{}
	for _, id := range episodeIDs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		episode, err := w.store.GetEpisodeByID(ctx, id)
		if err != nil {
			summary.Failed++
			w.logger.Error("load episode", logging.Int64(logging.FieldEpisodeID, id), logging.Error(err))
			continue
		}
		if skip, reason := shouldSkip(episode, mode); skip {
			summary.Skipped++
			w.logger.Info("skipping episode",
				logging.Int64(logging.FieldEpisodeID, id),
				logging.String("title", episode.Title),
				logging.String("reason", reason))
			continue
		}
		if err := w.pipeline.Process(ctx, id, mode); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}
			summary.Failed++
			continue
		}
		summary.Processed++
	}
	return summary, nil
}

// shouldSkip reports whether an episode is incompatible with mode. Checks
// follow the same artifact-over-status rule as the pipeline itself.
func shouldSkip(episode *store.Episode, mode pipeline.Mode) (bool, string) {
	switch mode {
	case pipeline.ModeTranscribeOnly:
		if fileExists(episode.TranscriptPath) {
			return true, "transcript already exists"
		}
	case pipeline.ModeInsightsOnly:
		if !fileExists(episode.TranscriptPath) {
			return true, "no transcript yet"
		}
		if fileExists(episode.InsightsPath) {
			return true, "insights already exist"
		}
	default:
		if episode.Status == store.StatusDone {
			return true, "already done"
		}
	}
	return false, ""
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// sleepIncrements sleeps for total in one-second steps, returning early when
// ctx is cancelled.
func sleepIncrements(ctx context.Context, total time.Duration) error {
	deadline := time.Now().Add(total)
	for time.Now().Before(deadline) {
		step := time.Second
		if remaining := time.Until(deadline); remaining < step {
			step = remaining
		}
		timer := time.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}
