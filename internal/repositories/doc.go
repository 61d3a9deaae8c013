// Package repositories implements SQLite persistence for curation history.
//
// [PlaylistRepository] records every playlist created by the curation
// pipeline with CRUD operations, atomic sequence generation for
// human-readable ordering, and soft deletes via deleted_at timestamps
// (deleted records are excluded from queries by default).
//
// Sequence numbers provide stable ordering (playlist #15) independent of
// UUIDs and creation timestamps. The [NextSequence] function atomically
// increments per-table sequence counters in dedicated sequence tables.
//
// [RecorderAdapter] plugs the repository into the curation engine as its
// optional history sink.
package repositories
