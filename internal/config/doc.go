// Package config loads and merges snapreview configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (SNAPREVIEW_PROVIDER, SNAPREVIEW_MODEL, SNAPREVIEW_STORE_BACKEND, etc.)
//  3. Config file ($XDG_CONFIG_HOME/snapreview/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write it back, and
// [SetField] to update a single dotted key such as "cache.ttlSeconds".
package config
