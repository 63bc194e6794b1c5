// Package config loads, normalizes, and validates bookdetector configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BOOKDETECTOR_FOLDERS. The Config type centralizes every knob the CLI and
// the HTTP API need: which folders feed the catalog, where the catalog cache
// lives, how OCR and camera capture are invoked, and how logs are written.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, an ordered non-empty folder list, and clear validation
// errors that name the offending TOML key.
package config
