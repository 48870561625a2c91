package cluster

import (
	"io"

	"github.com/praetorian-inc/shapes/pkg/automaton"
	"github.com/praetorian-inc/shapes/pkg/pattern"
	"github.com/praetorian-inc/shapes/pkg/token"
	"github.com/sirupsen/logrus"
)

// Defaults used by New.
const (
	DefaultMaxLength = 64
	DefaultCap       = 30
)

// MaxLengthLimit is the largest accepted max length. A run that long renders
// as a {n} repeat, and regexp/syntax rejects counts above 1000.
const MaxLengthLimit = 1000

// Option configures a Cluster.
type Option func(*Cluster)

// WithMaxLength sets the longest sample, in runes, that keeps structure.
// Longer samples collapse the cluster. n is clamped to MaxLengthLimit.
func WithMaxLength(n int) Option {
	return func(c *Cluster) {
		if n > 0 {
			c.maxLength = min(n, MaxLengthLimit)
		}
	}
}

// WithCap sets the maximum number of distinct shapes tracked before the
// cluster collapses.
func WithCap(n int) Option {
	return func(c *Cluster) {
		if n > 0 {
			c.cap = n
		}
	}
}

// WithFitRatio tunes fitted rendering: an explicit character set is
// rendered while the characters observed in a run are at most ratio times
// the run length.
func WithFitRatio(ratio float64) Option {
	return func(c *Cluster) {
		if ratio > 0 {
			c.fitRatio = ratio
		}
	}
}

// WithVerifier shares a pattern verifier, and so its automaton cache,
// between clusters. The verifier's cache must be safe for however many
// goroutines use those clusters.
func WithVerifier(v *pattern.Verifier) Option {
	return func(c *Cluster) {
		if v != nil {
			c.verifier = v
		}
	}
}

// WithCacheSize gives the cluster a private LRU automaton cache of n entries.
func WithCacheSize(n int) Option {
	return func(c *Cluster) {
		if cache, err := automaton.NewLRUCache(n); err == nil {
			c.verifier = pattern.NewVerifier(cache)
		}
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Cluster) {
		if logger != nil {
			c.log = logger
		}
	}
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (c *Cluster) renderOptions(fitted bool) token.RenderOptions {
	return token.RenderOptions{Fitted: fitted, FitRatio: c.fitRatio}
}
