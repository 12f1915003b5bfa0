package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"

	"podscribe/internal/config"
	"podscribe/internal/logging"
	"podscribe/internal/store"
	"podscribe/internal/textutil"
)

// Result summarizes one ingestion pass over a feed.
type Result struct {
	FeedID         int64
	FeedTitle      string
	NotModified    bool
	Added          int
	SkippedKnown   int
	SkippedNoAudio int
	SkippedCapped  int
}

// Ingestor turns feed documents into episode rows.
type Ingestor struct {
	cfg     *config.Config
	store   *store.Store
	fetcher *Fetcher
	logger  *slog.Logger
	now     func() time.Time
}

// New builds an ingestor using the configured fetch timeout.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		cfg:     cfg,
		store:   st,
		fetcher: NewFetcher(time.Duration(cfg.Runtime.FetchTimeoutSeconds) * time.Second),
		logger:  logging.WithComponent(logger, "ingest"),
		now:     time.Now,
	}
}

// IngestFeed polls one configured feed, admitting at most the configured
// number of new episodes. A 304 response leaves the store untouched apart
// from the feed row; already-known incomplete episodes remain eligible for
// pipeline work.
func (in *Ingestor) IngestFeed(ctx context.Context, feedCfg config.Feed) (*Result, error) {
	return in.ingest(ctx, feedCfg, in.cfg.Runtime.MaxNewPerFeed)
}

// PopulateFeed ingests every unseen entry of a feed regardless of the
// per-cycle cap. Used when an operator wants the full back catalog tracked.
func (in *Ingestor) PopulateFeed(ctx context.Context, feedCfg config.Feed) (*Result, error) {
	return in.ingest(ctx, feedCfg, 0)
}

func (in *Ingestor) ingest(ctx context.Context, feedCfg config.Feed, maxNew int) (*Result, error) {
	in.logger.Info("polling feed", logging.String(logging.FieldFeed, feedCfg.URL))

	etag, lastModified, err := in.store.FeedHTTPCache(ctx, feedCfg.URL)
	if err != nil {
		return nil, err
	}

	fetched, err := in.fetcher.Fetch(ctx, feedCfg.URL, etag, lastModified)
	if err != nil {
		return nil, err
	}

	if fetched.NotModified {
		in.logger.Info("feed not modified", logging.String(logging.FieldFeed, feedCfg.URL))
		feedID, err := in.store.UpsertFeed(ctx, feedCfg.URL, feedCfg.Name, "")
		if err != nil {
			return nil, err
		}
		return &Result{FeedID: feedID, FeedTitle: feedCfg.Name, NotModified: true}, nil
	}

	title := feedCfg.Name
	if title == "" {
		title = fetched.Feed.Title
	}
	if title == "" {
		title = feedCfg.URL
	}
	slug := textutil.SafeName(title)

	feedID, err := in.store.UpsertFeed(ctx, feedCfg.URL, title, slug)
	if err != nil {
		return nil, err
	}
	if err := in.store.UpdateFeedHTTP(ctx, feedID, fetched.ETag, fetched.LastModified); err != nil {
		return nil, err
	}

	// The stored slug wins over a freshly derived one so episode paths stay
	// stable across feed renames.
	feed, err := in.store.GetFeedByID(ctx, feedID)
	if err != nil {
		return nil, err
	}
	if feed.Slug != "" {
		slug = feed.Slug
	}

	feedDir := filepath.Join(in.cfg.Storage.DataDir, slug)
	if err := os.MkdirAll(feedDir, 0o755); err != nil {
		return nil, fmt.Errorf("create feed directory %s: %w", feedDir, err)
	}

	result := &Result{FeedID: feedID, FeedTitle: title}
	items := sortNewestFirst(fetched.Feed.Items)
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		audioURL := SelectEnclosure(item)
		entryTitle := EntryTitle(item)
		if audioURL == "" {
			in.logger.Debug("skipping entry without audio",
				logging.String(logging.FieldFeed, feedCfg.URL),
				logging.String("title", entryTitle))
			result.SkippedNoAudio++
			continue
		}

		existing, err := in.store.FindEpisode(ctx, feedID, item.GUID, audioURL)
		if err != nil {
			return result, err
		}
		if existing != nil {
			result.SkippedKnown++
			continue
		}

		if maxNew > 0 && result.Added >= maxNew {
			result.SkippedCapped++
			continue
		}

		pubDate := EntryPubDate(item, in.now())
		paths := EpisodePaths(feedDir, pubDate, entryTitle)
		_, inserted, err := in.store.InsertEpisode(ctx, store.NewEpisode{
			FeedID:         feedID,
			GUID:           item.GUID,
			AudioURL:       audioURL,
			Title:          entryTitle,
			PubDate:        pubDate,
			EpisodeDir:     paths.Dir,
			AudioPath:      paths.Audio,
			TranscriptPath: paths.Transcript,
			InsightsPath:   paths.Insights,
		})
		if err != nil {
			return result, err
		}
		if inserted {
			result.Added++
		} else {
			result.SkippedKnown++
		}
	}

	in.logger.Info("feed ingested",
		logging.String(logging.FieldFeed, feedCfg.URL),
		logging.Int("added", result.Added),
		logging.Int("known", result.SkippedKnown))
	return result, nil
}

// Paths locates every artifact of one episode.
type Paths struct {
	Dir        string
	Audio      string
	Transcript string
	Insights   string
}

// EpisodePaths derives the artifact layout for an episode: a directory named
// <pubDate>_<safeTitle> under the feed directory, holding the audio,
// transcript, and insights files. Paths are computed once at ingestion and
// never change afterwards.
func EpisodePaths(feedDir, pubDate, title string) Paths {
	safeTitle := textutil.SafeName(title)
	dir := filepath.Join(feedDir, pubDate+"_"+safeTitle)
	return Paths{
		Dir:        dir,
		Audio:      filepath.Join(dir, safeTitle+".mp3"),
		Transcript: filepath.Join(dir, safeTitle+".transcript.md"),
		Insights:   filepath.Join(dir, safeTitle+".insights.md"),
	}
}

// sortNewestFirst orders entries newest publish time first so per-cycle caps
// admit the most recent episodes. Entries without a parseable time sort last
// in their original order.
func sortNewestFirst(items []*gofeed.Item) []*gofeed.Item {
	sorted := make([]*gofeed.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, _ := EntryTime(sorted[i])
		tj, _ := EntryTime(sorted[j])
		return ti.After(tj)
	})
	return sorted
}
