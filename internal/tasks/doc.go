// Package tasks orchestrates the curation pipeline with real-time progress reporting.
//
// # Core Operation
//
// [CurationEngine.Curate] runs the full prompt-to-playlist pipeline:
//
//  1. Read the cached artist catalog
//  2. Ask the LLM to select fitting artists
//  3. Bulk-resolve the selected artists' albums from Plex
//  4. Ask the LLM for track recommendations given the album context
//  5. Ask the LLM for a playlist name
//  6. Fuzzily resolve recommendations and create the playlist on Plex
//
// # Progress Reporting
//
// All steps emit [ProgressUpdate] values over a non-blocking channel for
// display by the CLI or TUI layer. Updates use select with default so
// reporting never blocks execution.
//
// # Playlist History
//
// The optional [PlaylistRecorder] interface enables persistence of
// finished runs. Records are written silently (errors logged) so history
// bookkeeping can never fail a curation.
package tasks
