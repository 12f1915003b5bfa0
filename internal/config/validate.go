package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateRuntime(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateFeeds()
}

func (c *Config) validateStorage() error {
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		return errors.New("storage.data_dir must be set")
	}
	if strings.TrimSpace(c.Storage.TempDir) == "" {
		return errors.New("storage.temp_dir must be set")
	}
	return nil
}

func (c *Config) validateRuntime() error {
	if c.Runtime.MaxRetries < 1 {
		return errors.New("runtime.max_retries must be at least 1")
	}
	if c.Runtime.RetryBackoffSeconds < 0 {
		return errors.New("runtime.retry_backoff_seconds must not be negative")
	}
	if c.Runtime.PollIntervalMinutes < 1 {
		return errors.New("runtime.poll_interval_minutes must be at least 1")
	}
	if c.Runtime.DownloadTimeoutSeconds < 1 {
		return errors.New("runtime.download_timeout_seconds must be at least 1")
	}
	if c.Runtime.FetchTimeoutSeconds < 1 {
		return errors.New("runtime.fetch_timeout_seconds must be at least 1")
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.TranscribeCmd == "" {
		return errors.New("tools.transcribe_cmd must be set (create a config with 'podscribe config init')")
	}
	if c.Tools.InsightsCmd == "" {
		return errors.New("tools.insights_cmd must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateFeeds() error {
	seen := make(map[string]struct{}, len(c.Feeds))
	for i, feed := range c.Feeds {
		if feed.URL == "" {
			return fmt.Errorf("feeds[%d].url must be set", i)
		}
		if _, dup := seen[feed.URL]; dup {
			return fmt.Errorf("feeds[%d].url duplicates %s", i, feed.URL)
		}
		seen[feed.URL] = struct{}{}
	}
	return nil
}
