package pattern

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/praetorian-inc/shapes/pkg/prefilter"
)

// Result is the outcome of pattern synthesis: a regular expression, or
// Unknown when no single pattern describes the observed shapes. Callers
// must check Known before using Regex.
type Result struct {
	regex string
	known bool
}

// Unknown is the failed synthesis result.
var Unknown = Result{}

// Known wraps a synthesized expression.
func Known(regex string) Result {
	return Result{regex: regex, known: true}
}

// Known reports whether synthesis produced a pattern.
func (r Result) Known() bool { return r.known }

// Regex returns the expression, or "" for Unknown.
func (r Result) Regex() string { return r.regex }

func (r Result) String() string {
	if !r.known {
		return "<unknown>"
	}
	return r.regex
}

// MatchTimeout bounds a single raw-value match.
const MatchTimeout = 5 * time.Second

// Pattern matches raw values against a rendered pattern. The whole value
// must match.
type Pattern struct {
	source string
	re     *regexp2.Regexp
	filter *prefilter.Prefilter
}

// Compile compiles a rendered pattern for raw-value matching. Failures wrap
// ErrInvalidPattern.
func Compile(source string) (*Pattern, error) {
	anchored := `\A(?:` + ToGo(source) + `)\z`
	re, err := regexp2.Compile(anchored, regexp2.RE2|regexp2.Singleline)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, source, err)
	}
	re.MatchTimeout = MatchTimeout
	return &Pattern{
		source: source,
		re:     re,
		filter: prefilter.New(RequiredLiterals(source)),
	}, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(source string) *Pattern {
	p, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return p
}

// MatchString reports whether all of s matches.
func (p *Pattern) MatchString(s string) (bool, error) {
	if !p.filter.MayMatch(s) {
		return false, nil
	}
	ok, err := p.re.MatchString(s)
	if err != nil {
		return false, fmt.Errorf("matching %q against %q: %w", s, p.source, err)
	}
	return ok, nil
}

// Literals returns the literal text every match must contain.
func (p *Pattern) Literals() []string { return p.filter.Keywords() }

// String returns the rendered source pattern.
func (p *Pattern) String() string { return p.source }
