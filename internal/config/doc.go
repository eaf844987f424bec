// Package config loads, normalizes, and validates labprep configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads either the native TOML format or the recipe-style
// config.yaml that training recipes ship with. Segmentation thresholds are
// written in seconds and converted to 100ns ticks exactly once, while the
// configuration is loaded.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical symbol sets, and clear validation errors.
package config
