// Package stream implements TokenStream, the structural record of every
// sample sharing one shape key.
package stream

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/praetorian-inc/shapes/pkg/token"
)

// ErrNotMergeable is returned when two streams cannot be combined.
var ErrNotMergeable = errors.New("streams are not mergeable")

// TokenStream is the ordered token sequence for one canonical shape plus
// the number of samples that produced it.
type TokenStream struct {
	key         string
	tokens      []token.Token
	occurrences int64

	// compressed form, rebuilt lazily after any token change
	compressed    []token.Token
	compressedKey string
}

// New tokenizes sample. Samples longer than maxLength runes collapse to a
// single Wildcard token with the fixed key token.WildcardKey.
func New(sample string, count int64, maxLength int) *TokenStream {
	if utf8.RuneCountInString(sample) > maxLength {
		return NewWildcard(count)
	}

	ts := &TokenStream{
		tokens:      make([]token.Token, 0, len(sample)),
		occurrences: count,
	}
	var key strings.Builder
	for _, r := range sample {
		if class, ok := token.Classify(r); ok {
			ts.tokens = append(ts.tokens, token.NewCharClass(class, r))
			key.WriteRune(class.Marker())
		} else {
			ts.tokens = append(ts.tokens, token.NewLiteral(r))
			key.WriteRune(r)
		}
	}
	ts.key = key.String()
	return ts
}

// NewWildcard returns the catch-all stream.
func NewWildcard(count int64) *TokenStream {
	return &TokenStream{
		key:         token.WildcardKey,
		tokens:      []token.Token{&token.Wildcard{}},
		occurrences: count,
	}
}

// Shape returns the shape key of sample without building tokens, and
// whether sample is entirely ASCII.
func Shape(sample string, maxLength int) (key string, ascii bool) {
	if utf8.RuneCountInString(sample) > maxLength {
		return token.WildcardKey, false
	}
	ascii = true
	var b strings.Builder
	b.Grow(len(sample))
	for _, r := range sample {
		if r > unicode.MaxASCII {
			ascii = false
		}
		if class, ok := token.Classify(r); ok {
			b.WriteRune(class.Marker())
		} else {
			b.WriteRune(r)
		}
	}
	return b.String(), ascii
}

// Key returns the shape key.
func (ts *TokenStream) Key() string { return ts.key }

// Tokens returns the uncompressed tokens. The slice must not be modified.
func (ts *TokenStream) Tokens() []token.Token { return ts.tokens }

// Occurrences returns the number of samples folded into the stream.
func (ts *TokenStream) Occurrences() int64 { return ts.occurrences }

// AddOccurrences bumps the sample count without touching observations.
func (ts *TokenStream) AddOccurrences(n int64) { ts.occurrences += n }

// IsWildcard reports whether the stream is the catch-all stream.
func (ts *TokenStream) IsWildcard() bool { return ts.key == token.WildcardKey }

// Complete reports whether every class token has already observed its
// whole ASCII alphabet, so another ASCII sample of the same shape would
// only change the count.
func (ts *TokenStream) Complete() bool {
	for _, t := range ts.tokens {
		if cc, ok := t.(*token.CharClass); ok && !cc.Complete() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (ts *TokenStream) Clone() *TokenStream {
	out := &TokenStream{
		key:         ts.key,
		tokens:      make([]token.Token, len(ts.tokens)),
		occurrences: ts.occurrences,
	}
	for i, t := range ts.tokens {
		out.tokens[i] = t.Clone()
	}
	return out
}

func (ts *TokenStream) String() string {
	return fmt.Sprintf("%s (%d)", ts.key, ts.occurrences)
}

// Mergeable reports whether a and b have equal length and, position by
// position, either the same literal or two class tokens (which promote to
// alpha-digit when they differ).
func Mergeable(a, b *TokenStream) bool {
	if a.IsWildcard() || b.IsWildcard() {
		return a.IsWildcard() && b.IsWildcard()
	}
	if len(a.tokens) != len(b.tokens) {
		return false
	}
	for i := range a.tokens {
		switch x := a.tokens[i].(type) {
		case *token.Literal:
			y, ok := b.tokens[i].(*token.Literal)
			if !ok || x.Rune() != y.Rune() {
				return false
			}
		case *token.CharClass:
			if _, ok := b.tokens[i].(*token.CharClass); !ok {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Merge returns a new stream combining a and b. Neither argument is
// modified. It fails with ErrNotMergeable rather than dropping data.
func Merge(a, b *TokenStream) (*TokenStream, error) {
	out := a.Clone()
	if err := out.Absorb(b); err != nil {
		return nil, err
	}
	return out, nil
}

// Absorb merges o into ts in place.
func (ts *TokenStream) Absorb(o *TokenStream) error {
	if !Mergeable(ts, o) {
		return fmt.Errorf("%w: %q and %q", ErrNotMergeable, ts.key, o.key)
	}
	for i := range ts.tokens {
		merged, err := token.Merge(ts.tokens[i], o.tokens[i])
		if err != nil {
			return fmt.Errorf("%w: position %d: %v", ErrNotMergeable, i, err)
		}
		ts.tokens[i] = merged
	}
	ts.key = token.Key(ts.tokens)
	ts.occurrences += o.occurrences
	ts.compressed = nil
	ts.compressedKey = ""
	return nil
}

// Render renders the compressed form.
func (ts *TokenStream) Render(opts token.RenderOptions) string {
	return token.Render(ts.Compress(), opts)
}
