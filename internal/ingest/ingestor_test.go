package ingest_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"podscribe/internal/config"
	"podscribe/internal/ingest"
	"podscribe/internal/logging"
	"podscribe/internal/store"
	"podscribe/internal/testsupport"
)

const testFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Show</title>
    <item>
      <title>Oldest Episode</title>
      <guid>guid-1</guid>
      <pubDate>Mon, 05 Jan 2026 10:00:00 GMT</pubDate>
      <enclosure url="https://cdn.example.com/1.mp3" type="audio/mpeg" length="100"/>
    </item>
    <item>
      <title>Newest Episode</title>
      <guid>guid-3</guid>
      <pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate>
      <enclosure url="https://cdn.example.com/3.mp3" type="audio/mpeg" length="100"/>
    </item>
    <item>
      <title>Middle Episode</title>
      <guid>guid-2</guid>
      <pubDate>Mon, 02 Feb 2026 10:00:00 GMT</pubDate>
      <enclosure url="https://cdn.example.com/2.mp3" type="audio/mpeg" length="100"/>
    </item>
    <item>
      <title>Blog Post Without Audio</title>
      <guid>guid-4</guid>
      <pubDate>Mon, 09 Mar 2026 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

// newFeedServer serves the test feed with an ETag and honors If-None-Match.
func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testFeedXML))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newIngestor(t *testing.T, maxNew int) (*ingest.Ingestor, *store.Store, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t, func(c *config.Config) {
		c.Runtime.MaxNewPerFeed = maxNew
	})
	st := testsupport.MustOpenStore(t, cfg)
	return ingest.New(cfg, st, logging.NewNop()), st, cfg
}

func TestIngestFeedCreatesEpisodes(t *testing.T) {
	srv := newFeedServer(t)
	ing, st, cfg := newIngestor(t, 0)
	ctx := context.Background()

	result, err := ing.IngestFeed(ctx, config.Feed{URL: srv.URL})
	if err != nil {
		t.Fatalf("IngestFeed: %v", err)
	}
	if result.Added != 3 {
		t.Fatalf("expected 3 episodes added, got %d", result.Added)
	}
	if result.SkippedNoAudio != 1 {
		t.Fatalf("expected 1 entry skipped without audio, got %d", result.SkippedNoAudio)
	}
	if result.FeedTitle != "Test Show" {
		t.Fatalf("expected feed title from document, got %q", result.FeedTitle)
	}

	// Feed directory derived from the sanitized title exists under data_dir.
	feedDir := filepath.Join(cfg.Storage.DataDir, "Test Show")
	if _, err := os.Stat(feedDir); err != nil {
		t.Fatalf("expected feed dir %s: %v", feedDir, err)
	}

	episodes, err := st.EpisodesByFeed(ctx, result.FeedID, 0, -1)
	if err != nil {
		t.Fatalf("EpisodesByFeed: %v", err)
	}
	if len(episodes) != 3 {
		t.Fatalf("expected 3 episodes stored, got %d", len(episodes))
	}
	for _, ep := range episodes {
		if ep.Status != store.StatusNew {
			t.Fatalf("expected new status, got %s", ep.Status)
		}
	}

	// Newest-first listing with deterministic artifact paths.
	newest := episodes[0]
	if newest.Title != "Newest Episode" || newest.PubDate != "2026-03-02" {
		t.Fatalf("unexpected newest episode: %+v", newest)
	}
	wantDir := filepath.Join(feedDir, "2026-03-02_Newest Episode")
	if newest.EpisodeDir != wantDir {
		t.Fatalf("expected episode dir %q, got %q", wantDir, newest.EpisodeDir)
	}
	if newest.AudioPath != filepath.Join(wantDir, "Newest Episode.mp3") {
		t.Fatalf("unexpected audio path %q", newest.AudioPath)
	}
	if newest.TranscriptPath != filepath.Join(wantDir, "Newest Episode.transcript.md") {
		t.Fatalf("unexpected transcript path %q", newest.TranscriptPath)
	}
	if newest.InsightsPath != filepath.Join(wantDir, "Newest Episode.insights.md") {
		t.Fatalf("unexpected insights path %q", newest.InsightsPath)
	}

	// Repeat ingestion never duplicates. The second pass hits the 304 path
	// because validators were stored, so force a fresh fetch by clearing them.
	if err := st.UpdateFeedHTTP(ctx, result.FeedID, "", ""); err != nil {
		t.Fatalf("UpdateFeedHTTP: %v", err)
	}
	again, err := ing.IngestFeed(ctx, config.Feed{URL: srv.URL})
	if err != nil {
		t.Fatalf("IngestFeed repeat: %v", err)
	}
	if again.Added != 0 || again.SkippedKnown != 3 {
		t.Fatalf("expected dedupe on repeat, got %+v", again)
	}
}

func TestIngestFeedHonorsNewEpisodeCap(t *testing.T) {
	srv := newFeedServer(t)
	ing, st, _ := newIngestor(t, 1)
	ctx := context.Background()

	result, err := ing.IngestFeed(ctx, config.Feed{URL: srv.URL})
	if err != nil {
		t.Fatalf("IngestFeed: %v", err)
	}
	if result.Added != 1 {
		t.Fatalf("expected 1 episode admitted, got %d", result.Added)
	}
	if result.SkippedCapped != 2 {
		t.Fatalf("expected 2 entries capped, got %d", result.SkippedCapped)
	}

	episodes, err := st.EpisodesByFeed(ctx, result.FeedID, 0, -1)
	if err != nil {
		t.Fatalf("EpisodesByFeed: %v", err)
	}
	if len(episodes) != 1 || episodes[0].Title != "Newest Episode" {
		t.Fatalf("expected the newest entry to win the cap, got %+v", episodes)
	}
}

func TestPopulateFeedIgnoresCap(t *testing.T) {
	srv := newFeedServer(t)
	ing, st, _ := newIngestor(t, 1)
	ctx := context.Background()

	result, err := ing.PopulateFeed(ctx, config.Feed{URL: srv.URL})
	if err != nil {
		t.Fatalf("PopulateFeed: %v", err)
	}
	if result.Added != 3 || result.SkippedCapped != 0 {
		t.Fatalf("expected full backlog admitted, got %+v", result)
	}

	count, err := st.EpisodeCount(ctx, result.FeedID)
	if err != nil {
		t.Fatalf("EpisodeCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 episodes, got %d", count)
	}
}

func TestIngestFeedNotModified(t *testing.T) {
	srv := newFeedServer(t)
	ing, st, _ := newIngestor(t, 0)
	ctx := context.Background()

	first, err := ing.IngestFeed(ctx, config.Feed{URL: srv.URL})
	if err != nil {
		t.Fatalf("IngestFeed: %v", err)
	}

	// Validators are now cached, so the second poll sees a 304.
	second, err := ing.IngestFeed(ctx, config.Feed{URL: srv.URL})
	if err != nil {
		t.Fatalf("IngestFeed second: %v", err)
	}
	if !second.NotModified {
		t.Fatal("expected not-modified result")
	}
	if second.FeedID != first.FeedID {
		t.Fatalf("expected stable feed id, got %d and %d", first.FeedID, second.FeedID)
	}
	if second.Added != 0 {
		t.Fatalf("expected no additions on 304, got %d", second.Added)
	}

	count, err := st.EpisodeCount(ctx, first.FeedID)
	if err != nil {
		t.Fatalf("EpisodeCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected episode count unchanged, got %d", count)
	}
}

func TestIngestFeedPreservesConfiguredName(t *testing.T) {
	srv := newFeedServer(t)
	ing, st, _ := newIngestor(t, 0)
	ctx := context.Background()

	result, err := ing.IngestFeed(ctx, config.Feed{URL: srv.URL, Name: "My Custom Name"})
	if err != nil {
		t.Fatalf("IngestFeed: %v", err)
	}
	feed, err := st.GetFeedByID(ctx, result.FeedID)
	if err != nil {
		t.Fatalf("GetFeedByID: %v", err)
	}
	if feed.Name != "My Custom Name" {
		t.Fatalf("expected configured name, got %q", feed.Name)
	}
	if feed.Slug != "My Custom Name" {
		t.Fatalf("expected slug from configured name, got %q", feed.Slug)
	}
}
