// Package config loads, normalizes, and validates cbzsanitize configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, parses human-readable byte sizes such as
// "3 MB", and honours the CBZSANITIZE_LOG_LEVEL environment override. The
// Config type is passed explicitly into the pipeline constructors; nothing in
// the repository reads configuration from package-level state.
//
// Always obtain settings through this package so downstream code receives
// resolved byte counts, canonical log formats, and clear validation errors.
package config
