// Package testsupport provides shared helpers for package tests: temp-dir
// configs, store lifecycles, and stub external tools.
package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"podscribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Storage.DataDir = filepath.Join(base, "data")
	cfg.Storage.TempDir = filepath.Join(base, "tmp")
	cfg.Tools.TranscribeCmd = "true {audio} {transcript}"
	cfg.Tools.InsightsCmd = "true {transcript} {episode_dir} {insights_file}"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithTools overrides the external command templates.
func WithTools(transcribeCmd, insightsCmd string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Tools.TranscribeCmd = transcribeCmd
		cfg.Tools.InsightsCmd = insightsCmd
	}
}

// WithRetries overrides the download retry policy.
func WithRetries(maxRetries, backoffSeconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Runtime.MaxRetries = maxRetries
		cfg.Runtime.RetryBackoffSeconds = backoffSeconds
	}
}

// StubTool writes an executable shell script to a temp dir and returns a
// command template that invokes it followed by the provided placeholder
// arguments.
func StubTool(t testing.TB, script string, placeholders ...string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "tool.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write stub tool: %v", err)
	}
	cmd := path
	for _, ph := range placeholders {
		cmd += fmt.Sprintf(" %s", ph)
	}
	return cmd
}
