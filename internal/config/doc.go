// Package config loads, normalizes, and validates suimu configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as SUIMU_LOG_LEVEL and
// SUIMU_HTTP_BIND. Downstream code receives absolute runtime paths and
// canonical log settings.
package config
