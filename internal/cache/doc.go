// Package cache stores LLM review responses so that resubmitting the same
// snippet does not call the provider again.
//
// Entries are keyed by a SHA-256 hash of the provider, model, language and
// redacted code. Each entry is a JSON file holding the raw response, its
// creation time and a TTL in seconds; expired entries are skipped on read. A
// ristretto in-process cache sits in front of the files and is backfilled on
// disk hits.
//
// The default cache directory is $XDG_CACHE_HOME/snapreview (or the
// OS-appropriate equivalent).
package cache
