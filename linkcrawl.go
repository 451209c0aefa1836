// Package linkcrawl provides a same-origin link discovery crawler.
// It walks a site breadth-first from a root domain, extracts hyperlinks
// from every fetched page, keeps the links that share the root's origin,
// and reports the discovered URL set.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, goquery/, sqlite/).
package linkcrawl
