package store

import (
	"strings"
	"time"
)

// Status represents the lifecycle of an episode.
type Status string

const (
	StatusNew          Status = "new"
	StatusDownloading  Status = "downloading"
	StatusDownloaded   Status = "downloaded"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusAnalyzing    Status = "analyzing"
	StatusDone         Status = "done"
	StatusError        Status = "error"
)

var allStatuses = []Status{
	StatusNew,
	StatusDownloading,
	StatusDownloaded,
	StatusTranscribing,
	StatusTranscribed,
	StatusAnalyzing,
	StatusDone,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status needs no further pipeline work.
func (s Status) IsTerminal() bool {
	return s == StatusDone
}

// IncompleteStatuses returns every status eligible for pipeline processing,
// including error (a failed episode resumes from its missing artifact).
func IncompleteStatuses() []Status {
	statuses := make([]Status, 0, len(allStatuses)-1)
	for _, status := range allStatuses {
		if !status.IsTerminal() {
			statuses = append(statuses, status)
		}
	}
	return statuses
}

// Feed is a subscribed RSS source persisted in SQLite.
type Feed struct {
	ID            int64
	URL           string
	Name          string
	Slug          string
	ETag          string
	LastModified  string
	LastCheckedAt time.Time
}

// Episode is one tracked feed entry and its pipeline artifacts.
//
// Paths are computed once at insertion and never rewritten; they identify
// where the audio, transcript, and insights artifacts must land.
type Episode struct {
	ID             int64
	FeedID         int64
	GUID           string
	AudioURL       string
	Title          string
	PubDate        string
	EpisodeDir     string
	AudioPath      string
	TranscriptPath string
	InsightsPath   string
	Status         Status
	ErrorMessage   string
	FirstSeenAt    time.Time
	UpdatedAt      time.Time
}

// FeedStats is a feed with aggregated episode counts for front ends.
type FeedStats struct {
	Feed
	NewCount   int
	DoneCount  int
	TotalCount int
}
