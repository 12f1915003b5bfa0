package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed sample_config.yaml
var sampleConfig string

// Storage contains directory configuration.
type Storage struct {
	DataDir string `yaml:"data_dir"`
	TempDir string `yaml:"temp_dir"`
}

// Runtime contains polling and retry behavior.
type Runtime struct {
	PollIntervalMinutes int `yaml:"poll_interval_minutes"`
	MaxRetries          int `yaml:"max_retries"`
	RetryBackoffSeconds int `yaml:"retry_backoff_seconds"`
	// MaxNewPerFeed caps how many episodes may enter the pipeline from
	// status "new" per feed per poll cycle. Zero or negative means no cap.
	MaxNewPerFeed          int `yaml:"max_new_per_feed"`
	DownloadTimeoutSeconds int `yaml:"download_timeout_seconds"`
	FetchTimeoutSeconds    int `yaml:"fetch_timeout_seconds"`
}

// Tools contains the external command templates.
//
// Templates are rendered with {audio}, {transcript}, {episode_dir} and
// {insights_file} placeholders and executed through a shell; operators are
// trusted to supply safe templates.
type Tools struct {
	TranscribeCmd string `yaml:"transcribe_cmd"`
	InsightsCmd   string `yaml:"insights_cmd"`
}

// Feed identifies one subscribed RSS source.
type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Notifications contains optional ntfy push configuration.
type Notifications struct {
	NtfyTopic             string `yaml:"ntfy_topic"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// Config is the root configuration document.
type Config struct {
	Storage       Storage       `yaml:"storage"`
	Runtime       Runtime       `yaml:"runtime"`
	Tools         Tools         `yaml:"tools"`
	Logging       Logging       `yaml:"logging"`
	Notifications Notifications `yaml:"notifications"`
	Feeds         []Feed        `yaml:"feeds"`
}

// Load reads, normalizes, and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultPath returns the conventional configuration file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "podscribe", "config.yaml"), nil
}

// Resolve picks the configuration file to load: an explicit path wins, then
// podscribe.yaml in the working directory, then DefaultPath.
func Resolve(explicit string) (string, error) {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return expandPath(trimmed)
	}
	if _, err := os.Stat("podscribe.yaml"); err == nil {
		return "podscribe.yaml", nil
	}
	return DefaultPath()
}

// LogDir returns the directory log files are written to.
func (c *Config) LogDir() string {
	return filepath.Join(c.Storage.DataDir, "logs")
}

// DatabasePath returns the location of the state database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Storage.DataDir, "state.db")
}

// LockPath returns the watch-loop lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Storage.DataDir, "podscribe.lock")
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Storage.DataDir, c.Storage.TempDir, c.LogDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the embedded sample configuration to path. It refuses to
// overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// Sample returns the embedded sample configuration text.
func Sample() string {
	return sampleConfig
}
