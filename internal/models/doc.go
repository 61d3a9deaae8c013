// Package models defines domain entities and persistence interfaces for the Plexmuse curation service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs exchanged with the Plex library and the LLM layer
//   - [Artist] : Cached artist snapshot (id, name, genres)
//   - [Album] : Transient album metadata used as LLM context
//   - [TrackRecommendation] : Untrusted (artist, title) pair produced by the LLM
//   - [PlaylistRequest] / [PlaylistResponse] : Curation API request/response shapes
//   - [Provider] : An available LLM provider
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [PersistedPlaylist] : Record of a curated playlist created on the Plex server
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
