// Package redact keeps credentials out of review requests and out of what
// the CLI prints.
//
// Code handed to a provider passes through [Snippet] first when
// privacy.redactSecrets is on. Provider failures pass through [Credential]
// so the resolved API key never reaches logs or the rendered error.
// [PathExcluded] lets the review command refuse files such as .env outright.
package redact
