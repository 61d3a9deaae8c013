// Package match implements title normalization and fuzzy track matching.
//
// Track titles coming back from an LLM rarely match library metadata
// byte-for-byte ("Midnight City" vs "Midnight City (Remastered 2024)").
// [Normalize] canonicalizes titles for comparison and [FindBestMatch]
// scores candidates with a longest-matching-blocks similarity ratio,
// short-circuiting on exact normalized matches.
//
// The package is self-contained: callers pass candidate titles as strings
// and receive the winning index, so it carries no dependency on the Plex
// layer and is trivially testable.
package match
