// Package textutil provides filename helpers for files derived from entry
// titles.
package textutil
