// Package plex talks to the backing Plex media server and holds the
// in-memory artist cache that feeds curation.
//
// [Library] is the narrow capability surface the core needs from Plex:
// catalog enumeration with counts, exact and substring search scoped by
// entity type, a freshness token on the music section, and playlist
// creation from an ordered track key list. [Client] is the real HTTP
// implementation; tests substitute in-memory fakes.
//
// [LibraryCache] keeps an atomic snapshot of the artist catalog keyed by
// rating key, with a case-insensitive name index and aggregate counts.
// [Service] layers the resolution operations on top: bulk album lookup
// for LLM context and fuzzy playlist assembly from untrusted
// recommendations.
package plex
