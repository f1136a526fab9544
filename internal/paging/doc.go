// Package paging caches one query cursor per fetched page so that listings
// backed by the document database can move forward page by page with
// startAfter semantics instead of offsets.
//
// State is kept per key (an admin session plus a listing name) in a
// StateStore. Page n can only be fetched once page n-1 has been fetched since
// the last reset, because its cursor is the last document of page n-1.
package paging
