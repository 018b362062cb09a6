// Package config loads, normalizes, and validates camtrace configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// CAMTRACE_FFPROBE and CAMTRACE_LOG_LEVEL. The Config type centralizes the
// analysis knobs (worker count, extension sets, excluded directories, and
// the registry collision policy) alongside media tool and logging settings.
//
// Always obtain settings through this package so downstream code receives
// lower-cased extension sets, canonical log formats, and clear validation
// errors.
package config
