package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podscribe/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
storage:
  data_dir: `+dir+`/data
  temp_dir: `+dir+`/tmp
tools:
  transcribe_cmd: "transcribe {audio} {transcript}"
  insights_cmd: "insights {transcript} {episode_dir} {insights_file}"
feeds:
  - url: https://example.com/feed.xml
    name: Example
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Runtime.MaxRetries != 3 {
		t.Fatalf("expected default max_retries 3, got %d", cfg.Runtime.MaxRetries)
	}
	if cfg.Runtime.PollIntervalMinutes != 30 {
		t.Fatalf("expected default poll interval, got %d", cfg.Runtime.PollIntervalMinutes)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if len(cfg.Feeds) != 1 || cfg.Feeds[0].Name != "Example" {
		t.Fatalf("unexpected feeds: %+v", cfg.Feeds)
	}
	if cfg.DatabasePath() != filepath.Join(cfg.Storage.DataDir, "state.db") {
		t.Fatalf("unexpected database path: %s", cfg.DatabasePath())
	}
}

func TestLoadExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	path := writeConfig(t, `
storage:
  data_dir: ~/podscribe-data
  temp_dir: ~/podscribe-tmp
tools:
  transcribe_cmd: "t {audio}"
  insights_cmd: "i {transcript}"
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !strings.HasPrefix(cfg.Storage.DataDir, home) {
		t.Fatalf("expected data dir under home, got %s", cfg.Storage.DataDir)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{
			name: "missing transcribe command",
			contents: `
storage: {data_dir: /tmp/a, temp_dir: /tmp/b}
tools: {insights_cmd: "i {transcript}"}
`,
			wantErr: "tools.transcribe_cmd",
		},
		{
			name: "missing data dir",
			contents: `
storage: {temp_dir: /tmp/b}
tools: {transcribe_cmd: "t", insights_cmd: "i"}
`,
			wantErr: "storage.data_dir",
		},
		{
			name: "bad log format",
			contents: `
storage: {data_dir: /tmp/a, temp_dir: /tmp/b}
tools: {transcribe_cmd: "t", insights_cmd: "i"}
logging: {format: xml}
`,
			wantErr: "logging.format",
		},
		{
			name: "feed without url",
			contents: `
storage: {data_dir: /tmp/a, temp_dir: /tmp/b}
tools: {transcribe_cmd: "t", insights_cmd: "i"}
feeds:
  - name: Example
`,
			wantErr: "feeds[0].url",
		},
		{
			name: "duplicate feed url",
			contents: `
storage: {data_dir: /tmp/a, temp_dir: /tmp/b}
tools: {transcribe_cmd: "t", insights_cmd: "i"}
feeds:
  - url: https://example.com/a.xml
  - url: https://example.com/a.xml
`,
			wantErr: "duplicates",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.contents)
			_, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error overwriting existing config")
	}
}
