package pipeline

import (
	"fmt"
	"strings"
)

// Mode selects which stages a processing run executes. It changes only which
// stages are invoked, never the per-stage contract.
type Mode string

const (
	// ModeFull runs download, transcribe, and analyze.
	ModeFull Mode = "full"
	// ModeTranscribeOnly runs download and transcribe, stopping after the
	// transcript exists.
	ModeTranscribeOnly Mode = "transcribe-only"
	// ModeInsightsOnly runs analyze alone. The episode must already have a
	// transcript on disk.
	ModeInsightsOnly Mode = "insights-only"
)

// ParseMode validates a mode string.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeFull:
		return ModeFull, nil
	case ModeTranscribeOnly:
		return ModeTranscribeOnly, nil
	case ModeInsightsOnly:
		return ModeInsightsOnly, nil
	default:
		return "", fmt.Errorf("unknown pipeline mode %q", value)
	}
}
