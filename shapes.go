// Package shapes infers the structural pattern of a column of string values
// in a single pass with bounded memory.
//
// Each value is reduced to a shape (letters, digits and literal
// punctuation). Shapes are clustered up to a cap, and a single regular
// expression is synthesized that describes virtually every value seen,
// neither so narrow that it rejects future valid data nor so wide that it
// accepts garbage.
//
// # Basic Usage
//
// Track values, then ask for a pattern:
//
//	profile := shapes.NewProfile()
//	for _, v := range values {
//	    profile.Track(strings.TrimSpace(v), 1)
//	}
//
//	result := profile.Pattern(true)
//	if !result.Known() {
//	    // fall back to something permissive
//	}
//	fmt.Println(result.Regex())
//
// # Verifying a Candidate
//
// A pattern proposed elsewhere can be checked against everything tracked:
//
//	n, err := profile.CountMatching(`\d{5}`, 95)
//	if err != nil {
//	    // the pattern does not compile
//	}
//	if n == 0 {
//	    // fewer than 95% of values match
//	}
//
// # Several Columns
//
// Each column needs its own profile. Profiles may share an automaton cache:
//
//	verifier, err := shapes.NewSharedVerifier(256)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a := shapes.NewProfile(shapes.WithVerifier(verifier))
//	b := shapes.NewProfile(shapes.WithVerifier(verifier))
package shapes

import (
	"github.com/praetorian-inc/shapes/pkg/automaton"
	"github.com/praetorian-inc/shapes/pkg/cluster"
	"github.com/praetorian-inc/shapes/pkg/pattern"
	"github.com/praetorian-inc/shapes/pkg/stream"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/praetorian-inc/shapes" without subpackages.
type (
	// Profile is the bounded shape cluster for one column.
	Profile = cluster.Cluster

	// Option configures a Profile.
	Option = cluster.Option

	// Shape is a shape key with its sample count.
	Shape = cluster.Shape

	// Result is a synthesized pattern or Unknown.
	Result = pattern.Result

	// Stream is the structural record of one shape.
	Stream = stream.TokenStream

	// Verifier checks patterns against tracked shapes.
	Verifier = pattern.Verifier
)

// Re-export configuration.
var (
	WithMaxLength = cluster.WithMaxLength
	WithCap       = cluster.WithCap
	WithFitRatio  = cluster.WithFitRatio
	WithVerifier  = cluster.WithVerifier
	WithCacheSize = cluster.WithCacheSize
	WithLogger    = cluster.WithLogger
)

// Unknown is the result when no single pattern describes a column.
var Unknown = pattern.Unknown

// ErrInvalidPattern is returned for candidate patterns that do not compile.
var ErrInvalidPattern = pattern.ErrInvalidPattern

// NewProfile creates an empty profile.
//
// By default a profile:
//   - keeps structure for values of up to 64 characters
//   - tracks up to 30 distinct shapes before collapsing
//   - has a private cache of 100 compiled automata
//   - logs nothing
func NewProfile(opts ...Option) *Profile {
	return cluster.New(opts...)
}

// NewSharedVerifier returns a verifier whose LRU automaton cache holds up to
// size entries and is safe to share between profiles used on different
// goroutines.
func NewSharedVerifier(size int) (*Verifier, error) {
	cache, err := automaton.NewLRUCache(size)
	if err != nil {
		return nil, err
	}
	return pattern.NewVerifier(cache), nil
}

// Infer profiles values and returns the fitted pattern, a convenience for
// callers that already hold the whole column.
func Infer(values []string, opts ...Option) Result {
	p := NewProfile(opts...)
	for _, v := range values {
		p.Track(v, 1)
	}
	return p.Pattern(true)
}
