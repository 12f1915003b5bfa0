// Package pipeline advances episodes through download, transcribe, and
// analyze stages. Stage entry is gated by artifact existence on disk, not by
// stored status: status is a cache of progress, the filesystem is the source
// of truth for whether work is needed. That makes processing idempotent under
// repeated invocation and safe to resume after an interruption at any point.
package pipeline
