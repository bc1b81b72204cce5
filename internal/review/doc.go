// Package review runs code-review requests against an LLM and exposes their
// progress as a small state machine.
//
// An [Orchestrator] validates the snippet, resolves a credential, calls a
// [Client] and, on success, passes the review through a [Formatter]. Each
// step is published as an immutable [State] snapshot to subscribers:
//
//	Idle -> Loading -> Success | Error
//
// A blank snippet fails validation before the credential is checked, and a
// missing credential fails before any remote call. Remote failures are
// reported once, never retried. Formatting problems only change
// FormattingStatus.
//
// [ProviderClient] is the production Client: it redacts secrets, builds the
// reviewer prompt, consults the response cache and calls the configured
// provider.
package review
