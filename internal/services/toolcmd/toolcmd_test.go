package toolcmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podscribe/internal/logging"
	"podscribe/internal/services"
)

func TestRender(t *testing.T) {
	vars := Vars{
		Audio:        "/data/show/ep/ep.mp3",
		Transcript:   "/data/show/ep/ep.transcript.md",
		EpisodeDir:   "/data/show/ep",
		InsightsFile: "ep.insights.md",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "all placeholders",
			template: "transcribe {audio} -o {transcript}",
			want:     "transcribe /data/show/ep/ep.mp3 -o /data/show/ep/ep.transcript.md",
		},
		{
			name:     "insights placeholders",
			template: "insights {transcript} --dir {episode_dir} --out {insights_file}",
			want:     "insights /data/show/ep/ep.transcript.md --dir /data/show/ep --out ep.insights.md",
		},
		{
			name:     "repeated placeholder",
			template: "cp {audio} {audio}.bak",
			want:     "cp /data/show/ep/ep.mp3 /data/show/ep/ep.mp3.bak",
		},
		{
			name:     "unknown placeholder left intact",
			template: "tool {audio} {bogus}",
			want:     "tool /data/show/ep/ep.mp3 {bogus}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.template, vars); got != tt.want {
				t.Fatalf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShellRunSuccess(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	runner := NewShell(logging.NewNop())
	err := runner.Run(context.Background(), "transcribe", "echo hello > {transcript}", Vars{Transcript: out})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if strings.TrimSpace(string(data)) != "hello" {
		t.Fatalf("unexpected output file contents: %q", data)
	}
}

func TestShellRunFailureCapturesOutput(t *testing.T) {
	runner := NewShell(logging.NewNop())
	err := runner.Run(context.Background(), "analyze", "echo boom >&2; exit 3", Vars{})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected captured stderr in error, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "analyze") {
		t.Fatalf("expected stage in error, got %q", err.Error())
	}
}
