// Package listfile reads and writes the text files an entry list is loaded
// from and saved to.
//
// Two conventions are supported. The "pairs" format stores a title line
// followed by a URL line, with records separated by blank lines. The "lines"
// format stores one URL per line with an optional " # title" suffix; lines
// that start with '#' are comments. Paths may be given as file:// URIs.
// Reads hold a shared lock on "<file>.lock" and saves hold the exclusive lock
// while replacing the file atomically.
package listfile
