// Package icon validates raster icon data and synthesises placeholders.
//
// Decode accepts PNG, GIF, JPEG, BMP, WebP and ICO containers. ICO files may
// carry PNG or DIB payloads; the largest image in the directory is decoded.
package icon
