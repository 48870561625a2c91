package stream

import (
	"fmt"

	"github.com/praetorian-inc/shapes/pkg/token"
)

// Compress returns the compressed tokens: adjacent class tokens of the same
// class coalesced into one token whose repeat range is the run length, and
// every [+-]?digits.digits run folded into a Float. The result is cached
// until the stream changes and must not be modified.
func (ts *TokenStream) Compress() []token.Token {
	if ts.compressed == nil {
		ts.compressed = foldFloats(coalesce(ts.tokens))
		ts.compressedKey = token.Key(ts.compressed)
	}
	return ts.compressed
}

// CompressedKey returns the shape key of the compressed form.
func (ts *TokenStream) CompressedKey() string {
	ts.Compress()
	return ts.compressedKey
}

func coalesce(in []token.Token) []token.Token {
	out := make([]token.Token, 0, len(in))
	for _, t := range in {
		cc, ok := t.(*token.CharClass)
		if !ok {
			out = append(out, t.Clone())
			continue
		}
		if n := len(out); n > 0 {
			if prev, ok := out[n-1].(*token.CharClass); ok && prev.Class() == cc.Class() {
				pmin, pmax := prev.Repeat()
				cmin, cmax := cc.Repeat()
				prev.Absorb(cc)
				prev.SetRepeat(pmin+cmin, pmax+cmax)
				continue
			}
		}
		out = append(out, cc.Clone())
	}
	return out
}

type floatState int

const (
	floatNone floatState = iota
	floatSign
	floatFirst
	floatPeriod
	floatSecond
)

func isSign(t token.Token) bool {
	l, ok := t.(*token.Literal)
	return ok && (l.Rune() == '+' || l.Rune() == '-')
}

func isPeriod(t token.Token) bool {
	l, ok := t.(*token.Literal)
	return ok && l.Rune() == '.'
}

func isDigits(t token.Token) bool {
	cc, ok := t.(*token.CharClass)
	return ok && cc.Class() == token.Digit
}

// foldFloats replaces each [+-]?digits.digits run with a Float. A candidate
// is committed on the first token that cannot extend it or at the end of
// input; a period straight after the second component marks a dotted
// version rather than a number and the whole dotted run is left alone.
func foldFloats(in []token.Token) []token.Token {
	out := make([]token.Token, 0, len(in))
	state := floatNone
	start := 0
	signed := false

	abandon := func(i int) {
		out = append(out, in[start:i]...)
		state = floatNone
	}

	for i := 0; i < len(in); i++ {
		t := in[i]
		switch state {
		case floatNone:
			start = i
			switch {
			case isSign(t):
				state, signed = floatSign, true
			case isDigits(t):
				state, signed = floatFirst, false
			default:
				out = append(out, t)
			}
		case floatSign:
			if isDigits(t) {
				state = floatFirst
				continue
			}
			abandon(i)
			i--
		case floatFirst:
			if isPeriod(t) {
				state = floatPeriod
				continue
			}
			abandon(i)
			i--
		case floatPeriod:
			if isDigits(t) {
				state = floatSecond
				continue
			}
			abandon(i)
			i--
		case floatSecond:
			if isPeriod(t) {
				for i < len(in) && (isDigits(in[i]) || isPeriod(in[i])) {
					i++
				}
				abandon(i)
				i--
				continue
			}
			out = append(out, &token.Float{Signed: signed})
			state = floatNone
			i--
		}
	}

	switch state {
	case floatNone:
	case floatSecond:
		out = append(out, &token.Float{Signed: signed})
	default:
		out = append(out, in[start:]...)
	}
	return out
}

// Simplify returns the compressed tokens with every run of three or more
// adjacent class tokens (so at least two class-to-class transitions)
// combined into one token. Alternating digit/alpha shapes otherwise render
// as long unreadable chains.
func (ts *TokenStream) Simplify() []token.Token {
	in := ts.Compress()
	out := make([]token.Token, 0, len(in))
	for i := 0; i < len(in); {
		var run []*token.CharClass
		j := i
		for ; j < len(in); j++ {
			cc, ok := in[j].(*token.CharClass)
			if !ok {
				break
			}
			run = append(run, cc)
		}
		switch {
		case len(run) >= 3:
			out = append(out, token.Combine(run))
			i = j
		case len(run) > 0:
			for _, cc := range run {
				out = append(out, cc.Clone())
			}
			i = j
		default:
			out = append(out, in[i].Clone())
			i++
		}
	}
	return out
}

// MergeCompressed merges the compressed forms of streams that all share one
// compressed key, widening class observations and repeat ranges. Passing
// streams with differing compressed keys is a caller bug and panics.
func MergeCompressed(streams []*TokenStream) []token.Token {
	if len(streams) == 0 {
		return nil
	}
	key := streams[0].CompressedKey()
	out := make([]token.Token, 0, len(streams[0].Compress()))
	for _, t := range streams[0].Compress() {
		out = append(out, t.Clone())
	}
	for _, s := range streams[1:] {
		if s.CompressedKey() != key {
			panic(fmt.Sprintf("stream: compressed merge of %q into %q", s.CompressedKey(), key))
		}
		for i, t := range s.Compress() {
			merged, err := token.Merge(out[i], t)
			if err != nil {
				panic(fmt.Sprintf("stream: compressed merge at position %d: %v", i, err))
			}
			out[i] = merged
		}
	}
	return out
}
