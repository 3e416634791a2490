// Package fetch performs single icon fetch attempts over HTTP.
//
// A Client issues one GET per call with a fixed timeout, follows redirects up
// to a limit, and identifies itself with a browser-like User-Agent. The only
// success is a 200 response whose non-empty body decodes as a raster image.
// Every other outcome is reported as ErrFetchFailed.
package fetch
