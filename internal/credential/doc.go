// Package credential decides whether a usable API key exists and where it
// came from.
//
// A [Resolver] evaluates an ordered list of [Strategy] values and the first
// one that yields a non-empty key wins. The persisted key stored in the
// key/value substrate always comes first, followed by the environment. When
// nothing matches the resolved [Credential] has [SourceNone] and no remote
// call may be made with it.
package credential
