// Package token defines the per-position units a shape is built from.
//
// A Token is a closed sum type with four variants: Literal, CharClass,
// Wildcard and Float. Only this package can add variants; callers dispatch
// on the concrete type with a type switch.
package token

import (
	"errors"
	"fmt"
	"regexp"
)

// Shape key markers.
const (
	MarkerAlpha      = 'X'
	MarkerDigit      = '9'
	MarkerAlphaDigit = 'H'
	MarkerFloat      = 'F'

	// WildcardKey is the shape key of every over-length sample.
	WildcardKey = "ANY"
)

// ErrIncompatible is returned when two tokens cannot occupy the same position.
var ErrIncompatible = errors.New("incompatible tokens")

// Kind identifies a Token variant.
type Kind int

const (
	KindLiteral Kind = iota
	KindCharClass
	KindWildcard
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindCharClass:
		return "class"
	case KindWildcard:
		return "wildcard"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Token is the class of one character position (or, after compression, of a run).
type Token interface {
	Kind() Kind

	// Key is the token's contribution to a shape key.
	Key() string

	// CharactersUsed is the number of distinct characters observed, or -1
	// when the token is opaque (Wildcard, Float).
	CharactersUsed() int

	// Render returns the regular expression for the token.
	Render(opts RenderOptions) string

	// Clone returns a deep copy.
	Clone() Token

	sealed()
}

// DefaultFitRatio bounds the fitted rendering: an explicit bracket
// expression is used while CharactersUsed <= FitRatio * max repeat.
const DefaultFitRatio = 1.0

// RenderOptions controls how tokens are rendered.
type RenderOptions struct {
	Fitted   bool
	FitRatio float64
}

func (o RenderOptions) ratio() float64 {
	if o.FitRatio <= 0 {
		return DefaultFitRatio
	}
	return o.FitRatio
}

// Literal is an exact non-alphanumeric character.
type Literal struct {
	ch rune
}

// NewLiteral returns a Literal for ch.
func NewLiteral(ch rune) *Literal { return &Literal{ch: ch} }

func (l *Literal) Kind() Kind { return KindLiteral }
func (l *Literal) Key() string { return string(l.ch) }
func (l *Literal) Rune() rune { return l.ch }
func (l *Literal) CharactersUsed() int { return 1 }
func (l *Literal) Clone() Token { return &Literal{ch: l.ch} }
func (l *Literal) Render(RenderOptions) string { return regexp.QuoteMeta(string(l.ch)) }
func (*Literal) sealed() {}

// Wildcard matches any string. It replaces the whole stream of an
// over-length sample and carries no further structure.
type Wildcard struct{}

func (*Wildcard) Kind() Kind { return KindWildcard }
func (*Wildcard) Key() string { return WildcardKey }
func (*Wildcard) CharactersUsed() int { return -1 }
func (*Wildcard) Clone() Token { return &Wildcard{} }
func (*Wildcard) Render(RenderOptions) string { return ".+" }
func (*Wildcard) sealed() {}

// Float stands in for a [+-]?digits.digits run. Only compression creates it.
type Float struct {
	Signed bool
}

func (*Float) Kind() Kind { return KindFloat }
func (*Float) Key() string { return string(MarkerFloat) }
func (*Float) CharactersUsed() int { return -1 }
func (f *Float) Clone() Token { return &Float{Signed: f.Signed} }
func (*Float) sealed() {}

func (f *Float) Render(RenderOptions) string {
	if f.Signed {
		return `[+-]?\d*\.?\d+`
	}
	return `\d*\.?\d+`
}

// Merge combines two tokens observed at the same position and returns a
// new token; neither argument is modified. Differing literals are not an
// error here: whether they may share a position is decided by the stream.
func Merge(a, b Token) (Token, error) {
	switch x := a.(type) {
	case *Literal:
		if _, ok := b.(*Literal); ok {
			return x.Clone(), nil
		}
	case *CharClass:
		if y, ok := b.(*CharClass); ok {
			out := x.clone()
			out.Absorb(y)
			return out, nil
		}
	case *Float:
		if y, ok := b.(*Float); ok {
			return &Float{Signed: x.Signed || y.Signed}, nil
		}
	case *Wildcard:
		if _, ok := b.(*Wildcard); ok {
			return &Wildcard{}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s and %s", ErrIncompatible, a.Kind(), b.Kind())
}

// Render concatenates the rendering of each token.
func Render(tokens []Token, opts RenderOptions) string {
	var out []byte
	for _, t := range tokens {
		out = append(out, t.Render(opts)...)
	}
	return string(out)
}

// Key concatenates the key of each token.
func Key(tokens []Token) string {
	var out []byte
	for _, t := range tokens {
		out = append(out, t.Key()...)
	}
	return string(out)
}

// Quantifier renders a repeat range: "" for {1}, "{n}", or "{min,max}".
// A negative max means unbounded.
func Quantifier(min, max int) string {
	switch {
	case max < 0 && min <= 0:
		return "*"
	case max < 0 && min == 1:
		return "+"
	case max < 0:
		return fmt.Sprintf("{%d,}", min)
	case min == max && min == 1:
		return ""
	case min == max:
		return fmt.Sprintf("{%d}", min)
	default:
		return fmt.Sprintf("{%d,%d}", min, max)
	}
}
