// Package ingest fetches configured RSS feeds, deduplicates their entries
// against the store, and materializes new episode records with deterministic
// artifact paths. Feed documents are fetched with conditional GET so an
// unchanged feed costs one cheap round trip per poll.
package ingest
