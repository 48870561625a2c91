package stream

import "github.com/praetorian-inc/shapes/pkg/pattern"

// Verify reports whether pattern accepts every sample the stream has seen,
// checked against the uncompressed tokens. The catch-all stream verifies
// only against a pattern accepting every non-empty string.
func (ts *TokenStream) Verify(v *pattern.Verifier, p string) (bool, error) {
	if ts.IsWildcard() {
		return v.MatchesAnything(p)
	}
	return v.Match(p, ts.tokens)
}
