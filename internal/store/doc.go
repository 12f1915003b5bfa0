// Package store persists feeds and episodes in SQLite.
//
// The database is the single source of truth for episode status. Every
// pipeline transition is written through before the next stage begins, so a
// crash at any point is resumable from the stored state plus the artifacts
// on disk. The store performs no retries; storage errors propagate to the
// caller.
package store
