// Package interactive implements the terminal episode browser: a paginated
// view over feeds and episodes with on-demand pipeline submission, including
// bulk selections like "1,3-5,8" or "all".
package interactive

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"podscribe/internal/config"
	"podscribe/internal/ingest"
	"podscribe/internal/logging"
	"podscribe/internal/pipeline"
	"podscribe/internal/selection"
	"podscribe/internal/store"
	"podscribe/internal/watcher"
)

const defaultPageSize = 5

var errQuit = errors.New("quit requested")

// Browser drives the interactive session.
type Browser struct {
	cfg      *config.Config
	store    *store.Store
	ingestor *ingest.Ingestor
	watcher  *watcher.Watcher
	logger   *slog.Logger

	in       *bufio.Scanner
	out      io.Writer
	colorize bool
	pageSize int
	mode     pipeline.Mode
}

// Option configures the browser.
type Option func(*Browser)

// WithInput overrides the input stream (stdin by default).
func WithInput(r io.Reader) Option {
	return func(b *Browser) {
		b.in = bufio.NewScanner(r)
	}
}

// WithOutput overrides the output stream (stdout by default).
func WithOutput(w io.Writer) Option {
	return func(b *Browser) {
		b.out = w
		b.colorize = shouldColorize(w)
	}
}

// WithWatcher overrides the default watcher.
func WithWatcher(w *watcher.Watcher) Option {
	return func(b *Browser) {
		if w != nil {
			b.watcher = w
		}
	}
}

// WithIngestor overrides the default ingestor.
func WithIngestor(ing *ingest.Ingestor) Option {
	return func(b *Browser) {
		if ing != nil {
			b.ingestor = ing
		}
	}
}

// New builds a browser. Its pipeline reports stage transitions onto the
// output stream so the operator sees progress as it happens.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, opts ...Option) *Browser {
	b := &Browser{
		cfg:      cfg,
		store:    st,
		ingestor: ingest.New(cfg, st, logger),
		logger:   logging.WithComponent(logger, "interactive"),
		in:       bufio.NewScanner(os.Stdin),
		out:      os.Stdout,
		colorize: shouldColorize(os.Stdout),
		pageSize: defaultPageSize,
		mode:     pipeline.ModeFull,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.watcher == nil {
		p := pipeline.New(cfg, st, logger, pipeline.WithObserver(func(status store.Status, title string) {
			fmt.Fprintf(b.out, "  %s %s\n", colorizeStatus(status, b.colorize), title)
		}))
		b.watcher = watcher.New(cfg, st, logger, watcher.WithPipeline(p))
	}
	return b
}

// Run populates the episode catalog and enters the browsing loop until the
// operator quits or input ends.
func (b *Browser) Run(ctx context.Context) error {
	b.populate(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		feeds, err := b.store.FeedsWithStats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(b.out, renderFeedTable(feeds))
		fmt.Fprintf(b.out, "Select podcast [1-%d], [r] refresh, [q] quit: ", len(feeds))

		line, ok := b.readLine()
		if !ok {
			return nil
		}
		switch strings.ToLower(line) {
		case "q":
			fmt.Fprintln(b.out, "Bye.")
			return nil
		case "r":
			b.populate(ctx)
		case "":
			continue
		default:
			idx, err := strconv.Atoi(line)
			if err != nil || idx < 1 || idx > len(feeds) {
				fmt.Fprintln(b.out, renderError(fmt.Sprintf("invalid podcast selection %q", line), b.colorize))
				continue
			}
			if err := b.episodeView(ctx, feeds[idx-1]); err != nil {
				if errors.Is(err, errQuit) {
					fmt.Fprintln(b.out, "Bye.")
					return nil
				}
				return err
			}
		}
	}
}

// populate ingests every configured feed without the per-cycle cap so the
// full back catalog is browsable. Failures are shown and skipped.
func (b *Browser) populate(ctx context.Context) {
	for _, feedCfg := range b.cfg.Feeds {
		if ctx.Err() != nil {
			return
		}
		if _, err := b.ingestor.PopulateFeed(ctx, feedCfg); err != nil {
			b.logger.Warn("populate feed failed",
				logging.String(logging.FieldFeed, feedCfg.URL),
				logging.Error(err))
			fmt.Fprintln(b.out, renderError("could not load "+feedCfg.URL+": "+err.Error(), b.colorize))
		}
	}
}

func (b *Browser) episodeView(ctx context.Context, feed store.FeedStats) error {
	feedName := feed.Name
	if feedName == "" {
		feedName = feed.Slug
	}
	limit := b.pageSize

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		episodes, err := b.store.EpisodesByFeed(ctx, feed.ID, 0, limit)
		if err != nil {
			return err
		}
		total, err := b.store.EpisodeCount(ctx, feed.ID)
		if err != nil {
			return err
		}

		fmt.Fprintln(b.out, renderEpisodeTable(feedName, episodes, total, b.colorize))
		fmt.Fprintf(b.out, "Select episodes (e.g. 1,3-5 or all), [l] more, [m] mode (%s), [b] back, [q] quit: ", b.mode)

		line, ok := b.readLine()
		if !ok {
			return errQuit
		}
		switch strings.ToLower(line) {
		case "q":
			return errQuit
		case "b", "":
			return nil
		case "l":
			if limit < total {
				limit += b.pageSize
			} else {
				fmt.Fprintln(b.out, "All episodes are already loaded.")
			}
		case "m":
			b.mode = nextMode(b.mode)
			fmt.Fprintf(b.out, "Processing mode: %s\n", b.mode)
		default:
			indices, err := selection.Parse(line, len(episodes))
			if err != nil {
				fmt.Fprintln(b.out, renderError(err.Error(), b.colorize))
				continue
			}
			ids := make([]int64, len(indices))
			for i, idx := range indices {
				ids[i] = episodes[idx].ID
			}
			if err := b.processSelection(ctx, ids); err != nil {
				return err
			}
		}
	}
}

// processSelection submits the chosen episodes and reports a completion/skip
// summary. The pipeline observer prints each transition as it happens; an
// interrupt aborts between episodes, never mid-stage.
func (b *Browser) processSelection(ctx context.Context, ids []int64) error {
	fmt.Fprintf(b.out, "Processing %d episode(s) in %s mode...\n", len(ids), b.mode)

	summary, err := b.watcher.ProcessEpisodes(ctx, ids, b.mode)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Fprintf(b.out, "Completed: %d processed, %d skipped, %d failed\n",
		summary.Processed, summary.Skipped, summary.Failed)

	if summary.Failed > 0 {
		for _, id := range ids {
			episode, err := b.store.GetEpisodeByID(ctx, id)
			if err != nil {
				continue
			}
			if episode.Status == store.StatusError {
				fmt.Fprintln(b.out, renderError(episode.Title+": "+episode.ErrorMessage, b.colorize))
			}
		}
	}
	return nil
}

func (b *Browser) readLine() (string, bool) {
	if !b.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(b.in.Text()), true
}

func nextMode(mode pipeline.Mode) pipeline.Mode {
	switch mode {
	case pipeline.ModeFull:
		return pipeline.ModeTranscribeOnly
	case pipeline.ModeTranscribeOnly:
		return pipeline.ModeInsightsOnly
	default:
		return pipeline.ModeFull
	}
}
