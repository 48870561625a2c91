// Package prefilter rejects values that cannot match a pattern because they
// lack a literal every match must contain.
package prefilter

import (
	"github.com/cloudflare/ahocorasick"
)

// Prefilter uses Aho-Corasick to check for required literals in one pass.
type Prefilter struct {
	matcher  *ahocorasick.Matcher
	keywords []string // keyword at each index
}

// New creates a prefilter requiring every keyword. Empty and duplicate
// keywords are dropped; with none left every value may match.
func New(keywords []string) *Prefilter {
	pf := &Prefilter{}

	seen := make(map[string]bool)
	for _, keyword := range keywords {
		if keyword == "" || seen[keyword] {
			continue
		}
		seen[keyword] = true
		pf.keywords = append(pf.keywords, keyword)
	}

	// Build Aho-Corasick matcher if we have keywords
	if len(pf.keywords) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(pf.keywords)
	}

	return pf
}

// Keywords returns the required literals.
func (pf *Prefilter) Keywords() []string {
	return pf.keywords
}

// MayMatch reports whether value contains every required literal. It is
// safe for concurrent use.
func (pf *Prefilter) MayMatch(value string) bool {
	if pf.matcher == nil {
		return true
	}

	hits := pf.matcher.MatchThreadSafe([]byte(value))
	if len(hits) < len(pf.keywords) {
		return false
	}

	found := make(map[int]bool, len(hits))
	for _, hit := range hits {
		found[hit] = true
	}
	return len(found) == len(pf.keywords)
}
