// Package config loads and validates the podscribe YAML configuration.
//
// Configuration covers storage directories, runtime behavior for the polling
// loop and download retries, the external transcription/insights command
// templates, logging, optional push notifications, and the ordered list of
// subscribed feeds. Load applies defaults, expands ~ in paths, and validates
// the result before returning it.
package config
