package ingest

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

func TestSelectEnclosure(t *testing.T) {
	tests := []struct {
		name       string
		enclosures []*gofeed.Enclosure
		want       string
	}{
		{
			name:       "no enclosures",
			enclosures: nil,
			want:       "",
		},
		{
			name: "audio type preferred",
			enclosures: []*gofeed.Enclosure{
				{URL: "https://cdn.example.com/cover.jpg", Type: "image/jpeg"},
				{URL: "https://cdn.example.com/ep.mp3", Type: "audio/mpeg"},
			},
			want: "https://cdn.example.com/ep.mp3",
		},
		{
			name: "typeless enclosure accepted",
			enclosures: []*gofeed.Enclosure{
				{URL: "https://cdn.example.com/ep.mp3"},
			},
			want: "https://cdn.example.com/ep.mp3",
		},
		{
			name: "mpeg in type accepted",
			enclosures: []*gofeed.Enclosure{
				{URL: "https://cdn.example.com/ep.mp3", Type: "video/mpeg"},
			},
			want: "https://cdn.example.com/ep.mp3",
		},
		{
			name: "falls back to first url when no audio match",
			enclosures: []*gofeed.Enclosure{
				{URL: "https://cdn.example.com/cover.jpg", Type: "image/jpeg"},
				{URL: "https://cdn.example.com/notes.pdf", Type: "application/pdf"},
			},
			want: "https://cdn.example.com/cover.jpg",
		},
		{
			name: "empty urls skipped",
			enclosures: []*gofeed.Enclosure{
				{URL: "", Type: "audio/mpeg"},
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &gofeed.Item{Enclosures: tt.enclosures}
			if got := SelectEnclosure(item); got != tt.want {
				t.Fatalf("SelectEnclosure() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEntryPubDate(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	published := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	updated := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	if got := EntryPubDate(&gofeed.Item{PublishedParsed: &published}, now); got != "2026-03-14" {
		t.Fatalf("expected published date, got %q", got)
	}
	if got := EntryPubDate(&gofeed.Item{UpdatedParsed: &updated}, now); got != "2026-04-01" {
		t.Fatalf("expected updated date fallback, got %q", got)
	}
	if got := EntryPubDate(&gofeed.Item{}, now); got != "2026-08-24" {
		t.Fatalf("expected current date fallback, got %q", got)
	}
}

func TestEntryTitle(t *testing.T) {
	if got := EntryTitle(&gofeed.Item{Title: "Real Title"}); got != "Real Title" {
		t.Fatalf("expected title passthrough, got %q", got)
	}
	if got := EntryTitle(&gofeed.Item{}); got != "Untitled Episode" {
		t.Fatalf("expected untitled placeholder, got %q", got)
	}
}

func TestEpisodePaths(t *testing.T) {
	paths := EpisodePaths("/data/my-show", "2026-01-02", "Episode 1: The Beginning!")
	if paths.Dir != "/data/my-show/2026-01-02_Episode 1 The Beginning" {
		t.Fatalf("unexpected dir: %q", paths.Dir)
	}
	if paths.Audio != paths.Dir+"/Episode 1 The Beginning.mp3" {
		t.Fatalf("unexpected audio path: %q", paths.Audio)
	}
	if paths.Transcript != paths.Dir+"/Episode 1 The Beginning.transcript.md" {
		t.Fatalf("unexpected transcript path: %q", paths.Transcript)
	}
	if paths.Insights != paths.Dir+"/Episode 1 The Beginning.insights.md" {
		t.Fatalf("unexpected insights path: %q", paths.Insights)
	}
}
