package config

const (
	defaultDataDir                = "~/.local/share/podscribe/data"
	defaultTempDir                = "~/.local/share/podscribe/tmp"
	defaultPollIntervalMinutes    = 30
	defaultMaxRetries             = 3
	defaultRetryBackoffSeconds    = 5
	defaultMaxNewPerFeed          = 1
	defaultDownloadTimeoutSeconds = 60
	defaultFetchTimeoutSeconds    = 30
	defaultLogLevel               = "info"
	defaultLogFormat              = "console"
	defaultNotifyTimeoutSeconds   = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Storage: Storage{
			DataDir: defaultDataDir,
			TempDir: defaultTempDir,
		},
		Runtime: Runtime{
			PollIntervalMinutes:    defaultPollIntervalMinutes,
			MaxRetries:             defaultMaxRetries,
			RetryBackoffSeconds:    defaultRetryBackoffSeconds,
			MaxNewPerFeed:          defaultMaxNewPerFeed,
			DownloadTimeoutSeconds: defaultDownloadTimeoutSeconds,
			FetchTimeoutSeconds:    defaultFetchTimeoutSeconds,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotifyTimeoutSeconds,
		},
	}
}
