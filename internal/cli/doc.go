// Package cli implements the snapreview command tree with cobra.
//
// Commands report failures on stderr and set a deterministic exit code:
// 0 success, 1 validation, 2 usage, 3 configuration or authentication,
// 4 runtime or remote failure.
package cli
