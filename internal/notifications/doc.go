// Package notifications delivers pipeline events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// the YAML config and gracefully degrades to a no-op when notifications are
// disabled. All pipeline code depends only on the simple Service interface.
package notifications
