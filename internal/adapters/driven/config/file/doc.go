// Package file provides the TOML-backed configuration store.
//
// Configuration lives in ~/.asrs/config.toml (or the path given with
// --config) and may be overridden per key with ASRS_* environment variables.
package file
