// Package config loads, normalizes, and validates urldeck configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// URLDECK_LIST_FILE. The Config type centralizes every knob the CLI and the
// enrichment pipeline need: where the list file lives, how icons are fetched,
// how many fetches may run at once, and where the icon cache is kept.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, clamped limits, and clear validation errors.
package config
