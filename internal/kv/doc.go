// Package kv provides the key/value substrate used for credentials and
// sessions.
//
// Three backends implement [Store]: [Memory] for tests and ephemeral runs,
// [File] which keeps one JSON document per key under a data directory, and
// [NATS] which stores values in a NATS JetStream key/value bucket for
// deployments that share state between machines.
//
// Every write replaces a single key with a single value, so readers never
// observe a partially written value.
package kv
