package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"podscribe/internal/config"
	"podscribe/internal/store"
)

// MustOpenStore opens a store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// SeedFeed inserts a feed and returns its id.
func SeedFeed(t testing.TB, st *store.Store, url, name, slug string) int64 {
	t.Helper()

	id, err := st.UpsertFeed(context.Background(), url, name, slug)
	if err != nil {
		t.Fatalf("UpsertFeed: %v", err)
	}
	return id
}

// SeedEpisode inserts an episode with paths rooted under dir and returns its id.
func SeedEpisode(t testing.TB, st *store.Store, feedID int64, dir, title string) int64 {
	t.Helper()

	episodeDir := filepath.Join(dir, title)
	id, _, err := st.InsertEpisode(context.Background(), store.NewEpisode{
		FeedID:         feedID,
		GUID:           "guid-" + title,
		AudioURL:       "https://example.com/" + title + ".mp3",
		Title:          title,
		PubDate:        "2026-01-02",
		EpisodeDir:     episodeDir,
		AudioPath:      filepath.Join(episodeDir, title+".mp3"),
		TranscriptPath: filepath.Join(episodeDir, title+".transcript.md"),
		InsightsPath:   filepath.Join(episodeDir, title+".insights.md"),
	})
	if err != nil {
		t.Fatalf("InsertEpisode: %v", err)
	}
	return id
}
