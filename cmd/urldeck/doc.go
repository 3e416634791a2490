// Package main hosts the urldeck CLI entrypoint and command graph.
//
// The Cobra-based command tree loads the configured list file into an entry
// store, applies edits (add, move, delete) and saves the result, runs icon
// enrichment with a live progress display, and exposes cache and
// configuration maintenance. It centralizes configuration resolution, list
// file access, and logging setup so subcommands can focus on output.
//
// Keep this package lean: list semantics live in internal/entry, icon
// resolution in internal/resolver, internal/fetch and internal/enrich.
package main
