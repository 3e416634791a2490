// Package resolver maps a stored URL to the ordered icon fetch targets tried
// for it.
//
// Resolution is pure. Split follows the generic URI grammar, Host derives the
// authority with an implicit http:// scheme when none is present, and Chain
// builds the favicon.ico, favicon.png and lookup service candidates. Input that
// yields no usable host produces no candidates rather than an error.
package resolver
