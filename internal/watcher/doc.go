// Package watcher drives the pipeline across feeds and episodes: a one-shot
// poll that ingests then processes, a continuous loop on a timed interval,
// and bulk submission of operator-selected episodes. The loop enforces
// single-instance execution with a file lock and sleeps in one-second
// increments so cancellation takes effect promptly between episodes, never
// mid-stage.
package watcher
