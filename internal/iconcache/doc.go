// Package iconcache persists successfully fetched icons in SQLite, keyed by
// candidate URL.
//
// The Cache stores decoded icons with their fetch time and treats rows older
// than the configured TTL as misses. CachingFetcher decorates any fetcher with
// the cache; cache errors are logged and never fail a fetch. Placeholders are
// never stored. Schema changes bump schemaVersion; users clear the cache
// database to adopt the new schema.
package iconcache
