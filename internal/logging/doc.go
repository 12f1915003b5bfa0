// Package logging builds the slog loggers used across podscribe.
//
// It provides a console handler with stable key=value formatting, a JSON
// handler for machine consumption, attribute helper aliases, and a no-op
// logger for tests. Loggers write to stdout plus a log file under the data
// directory when constructed from configuration.
package logging
