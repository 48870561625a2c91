package cluster

import (
	"fmt"

	"github.com/praetorian-inc/shapes/pkg/pattern"
	"github.com/praetorian-inc/shapes/pkg/stream"
	"github.com/praetorian-inc/shapes/pkg/token"
	"github.com/sirupsen/logrus"
)

const (
	// Two shapes are rendered as an alternation only with at least this
	// many samples and each shape holding at least alternationShare
	// percent of them.
	alternationSamples = 100
	alternationShare   = 15
)

// Pattern synthesizes a single pattern describing every tracked sample.
// Rules are tried in order and the first to apply wins:
//
//  1. a single shape renders itself;
//  2. two well-populated shapes become an alternation;
//  3. shapes that all merge position by position render their merge, simplified;
//  4. shapes sharing one compressed key render their compressed merge;
//  5. shapes made only of letters and digits render one class with a length range.
//
// Otherwise the result is pattern.Unknown, which the caller must handle.
func (c *Cluster) Pattern(fitted bool) pattern.Result {
	ordered := c.ordered()
	if len(ordered) == 0 {
		return pattern.Unknown
	}
	opts := c.renderOptions(fitted)

	rules := []struct {
		name  string
		apply func([]*stream.TokenStream, token.RenderOptions) (string, bool)
	}{
		{"single", single},
		{"alternation", alternation},
		{"merge", mergeAll},
		{"compressed", mergeCompressed},
		{"class", classOnly},
	}
	for _, rule := range rules {
		if re, ok := rule.apply(ordered, opts); ok {
			c.log.WithFields(logrus.Fields{
				"rule":    rule.name,
				"shapes":  len(ordered),
				"pattern": re,
			}).Debug("synthesized pattern")
			return pattern.Known(re)
		}
	}

	c.log.WithField("shapes", len(ordered)).Debug("no pattern describes all shapes")
	return pattern.Unknown
}

func single(streams []*stream.TokenStream, opts token.RenderOptions) (string, bool) {
	if len(streams) != 1 {
		return "", false
	}
	return streams[0].Render(opts), true
}

func alternation(streams []*stream.TokenStream, opts token.RenderOptions) (string, bool) {
	if len(streams) != 2 {
		return "", false
	}
	a, b := streams[0], streams[1]
	total := a.Occurrences() + b.Occurrences()
	if total < alternationSamples {
		return "", false
	}
	for _, s := range streams {
		if s.Occurrences()*100 < total*alternationShare {
			return "", false
		}
	}
	return pattern.Alternate(a.Render(opts), b.Render(opts)), true
}

func mergeAll(streams []*stream.TokenStream, opts token.RenderOptions) (string, bool) {
	merged := streams[0]
	for _, s := range streams[1:] {
		next, err := stream.Merge(merged, s)
		if err != nil {
			return "", false
		}
		merged = next
	}
	return token.Render(merged.Simplify(), opts), true
}

func mergeCompressed(streams []*stream.TokenStream, opts token.RenderOptions) (string, bool) {
	key := streams[0].CompressedKey()
	for _, s := range streams[1:] {
		if s.CompressedKey() != key {
			return "", false
		}
	}
	return token.Render(stream.MergeCompressed(streams), opts), true
}

func classOnly(streams []*stream.TokenStream, _ token.RenderOptions) (string, bool) {
	var run []*token.CharClass
	minLen, maxLen := -1, 0
	for _, s := range streams {
		n := len(s.Tokens())
		if n == 0 || s.IsWildcard() {
			return "", false
		}
		for _, t := range s.Tokens() {
			cc, ok := t.(*token.CharClass)
			if !ok {
				return "", false
			}
			run = append(run, cc)
		}
		if minLen < 0 || n < minLen {
			minLen = n
		}
		if n > maxLen {
			maxLen = n
		}
	}

	escape := token.Combine(run).Escape()
	if len(streams) == maxLen-minLen+1 {
		return escape + token.Quantifier(minLen, maxLen), true
	}
	return escape + "+", true
}

// CountMatching returns the number of tracked samples whose shape pattern
// accepts, or 0 once samples that do not match exceed (100 - confidence)
// percent of the total: past that point the floor can no longer be met.
// An uncompilable pattern is an error, distinct from a count of 0.
func (c *Cluster) CountMatching(p string, confidence int) (int64, error) {
	if confidence < 0 || confidence > 100 {
		return 0, fmt.Errorf("confidence %d outside 0-100", confidence)
	}
	if _, err := c.verifier.Compile(p); err != nil {
		c.log.WithError(err).Warn("candidate pattern does not compile")
		return 0, err
	}

	var matched, missed int64
	for _, s := range c.ordered() {
		ok, err := s.Verify(c.verifier, p)
		if err != nil {
			return 0, fmt.Errorf("verifying shape %q: %w", s.Key(), err)
		}
		if ok {
			matched += s.Occurrences()
			continue
		}
		missed += s.Occurrences()
		if missed*100 > c.total*int64(100-confidence) {
			return 0, nil
		}
	}
	return matched, nil
}
