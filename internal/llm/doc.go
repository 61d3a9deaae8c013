// Package llm asks a language model to make playlist selections.
//
// The model call itself is an injected capability: [Completer] turns a
// system instruction and a user message into raw text. [Service] owns the
// three selection use sites (artists, tracks, playlist name) and the
// shared response pipeline: strip an optional ```json fence, decode the
// expected JSON shape, and treat empty lists as failures rather than
// empty successes.
//
// Malformed responses are hard failures surfaced with the raw content
// logged for diagnosis. Nothing here retries; retry policy belongs to the
// caller.
package llm
