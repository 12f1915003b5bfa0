// Command podscribe ingests podcast RSS feeds and runs each new episode
// through a download, transcription, and insight-extraction pipeline.
//
// The continuous loop is `podscribe run`; `podscribe poll` performs a single
// pass, `podscribe status` summarizes the library, and `podscribe
// interactive` opens the terminal browser for manual episode selection.
package main
