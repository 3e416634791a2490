// Package entry owns the ordered URL list.
//
// A Store holds entries in insertion order, assigns each a stable identity,
// and derives 1-based positions that are renumbered after every mutation.
// Every operation runs inside one critical section so enrichment workers may
// write icons by identity while another actor reorders or deletes entries.
// Deleting an entry always wins over a late icon write for the same identity.
package entry
