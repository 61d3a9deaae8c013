// Package server provides the HTTP surface for the curation service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # API Handlers
//
// [API] exposes the curation endpoints:
//
//   - GET  /health          : liveness plus artist cache size
//   - GET  /artists         : cached artist catalog
//   - GET  /stats           : aggregate library counts
//   - GET  /providers       : configured LLM providers
//   - GET  /playlists       : curation history
//   - POST /cache/refresh   : conditional cache rebuild
//   - POST /recommendations : full prompt-to-playlist curation run
//
// Errors are returned as {"detail": "..."} JSON bodies. Invalid input maps
// to 422, upstream selection failures map to 502, and everything else maps
// to 500.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
