// Package web implements an HTMX-based web application mirroring the TUI functionality.
//
// # HTMX Web Application Implementation Plan
//
// # Architecture
//
// The web app replicates the three-view TUI workflow using server-side rendering
// with HTMX for dynamic updates. Each view corresponds to a template and handler:
//
//  1. Prompt Form: Mood prompt input with provider/model selector
//  2. Curation Monitor: SSE (Server-Sent Events) streaming pipeline phases
//  3. Results Display: Curated track list with Plex deep link
//
// Core Components
//
//   - HTTP Server: reuses server.BasicRouter and middleware stack
//   - Service Integration: Uses the same tasks.CurationEngine as the TUI and API
//   - SSE Handler: Streams real-time phase updates during curation runs
//   - Static Assets: embedded index.html with the Plex base URL injected
//
// Routes
//
//	GET  /                    → Prompt form with provider selector
//	POST /curate              → Start curation, return run ID
//	GET  /curate/{id}/stream  → SSE progress stream
//	GET  /curate/{id}/result  → HTMX partial: curated track list
//	GET  /history             → Table of past runs from the playlists repository
//
// Templates
//
//   - base.html: Layout with library stats in the footer
//   - prompt.html: Form with hx-post and provider radio group
//   - progress.html: SSE consumer rendering the phase checklist
//   - results.html: Track list partial with matched/dropped breakdown
//
// # State Management
//
// Active runs are tracked in-memory keyed by run ID:
//   - In-memory channels: SSE connections for active curation runs
//   - PersistedPlaylist records: completed runs served from the repository
//
// # Progress Streaming
//
// Curation progress uses Server-Sent Events:
//  1. POST /curate registers a run ID and progress channel
//  2. Client opens SSE connection to /curate/{id}/stream
//  3. Handler launches goroutine running CurationEngine.Curate
//  4. Progress channel updates stream as SSE events, one per phase
//  5. On completion, send "done" event with the result partial URL
//
// Dependencies
//
//   - html/template: Server-side rendering
//   - net/http: HTTP server and SSE
//
// Implementation Tasks
//
//  1. Template structure with HTMX integration
//  2. Prompt form handler wiring llm.Providers into the selector
//  3. Curate endpoint registering the run and progress channel
//  4. SSE handler streaming tasks.ProgressUpdate events
//  5. Result handler rendering CurationResult
//  6. History handler paging the playlists repository
//  7. Error handling mapped through server.statusForError
//
// # Testing Strategy
//
// Use httptest:
//   - testing.FakeLibrary and testing.FakeCompleter behind a real engine
//   - Validate HTMX headers and response structure
//   - Test SSE stream formatting phase by phase
package web
