package token

import (
	"math/bits"
	"sort"
	"strings"
	"unicode"
)

// Class is the character class of a CharClass token. A class only widens.
type Class uint8

const (
	Alpha Class = iota + 1
	Digit
	AlphaDigit
)

// Marker returns the shape key marker for the class.
func (c Class) Marker() rune {
	switch c {
	case Alpha:
		return MarkerAlpha
	case Digit:
		return MarkerDigit
	default:
		return MarkerAlphaDigit
	}
}

// Promote returns the narrowest class covering both c and o.
func (c Class) Promote(o Class) Class {
	if c == o {
		return c
	}
	return AlphaDigit
}

func (c Class) String() string {
	switch c {
	case Alpha:
		return "alpha"
	case Digit:
		return "digit"
	case AlphaDigit:
		return "alphadigit"
	default:
		return "none"
	}
}

// Classify reports the class of r, or false if r is rendered as a Literal.
// Only ASCII digits are digits; any Unicode letter is alphabetic.
func Classify(r rune) (Class, bool) {
	switch {
	case r >= '0' && r <= '9':
		return Digit, true
	case unicode.IsLetter(r):
		return Alpha, true
	default:
		return 0, false
	}
}

// IsMarker reports whether r is a class marker in a shape key.
func IsMarker(r rune) bool {
	return r == MarkerAlpha || r == MarkerDigit || r == MarkerAlphaDigit
}

// Range is a closed interval of runes.
type Range struct {
	Lo, Hi rune
}

// bitmap of the 128 ASCII code points.
type asciiSet [2]uint64

func (s *asciiSet) add(r rune) { s[r>>6] |= 1 << (uint(r) & 63) }
func (s asciiSet) has(r rune) bool { return s[r>>6]&(1<<(uint(r)&63)) != 0 }
func (s asciiSet) count() int { return bits.OnesCount64(s[0]) + bits.OnesCount64(s[1]) }
func (s asciiSet) covers(o asciiSet) bool { return s[0]&o[0] == o[0] && s[1]&o[1] == o[1] }

func (s *asciiSet) union(o asciiSet) {
	s[0] |= o[0]
	s[1] |= o[1]
}

func rangeSet(lo, hi rune) asciiSet {
	var s asciiSet
	for r := lo; r <= hi; r++ {
		s.add(r)
	}
	return s
}

var (
	digitSet = rangeSet('0', '9')
	alphaSet = func() asciiSet {
		s := rangeSet('A', 'Z')
		s.union(rangeSet('a', 'z'))
		return s
	}()
)

// CharClass is an alphabetic, numeric or alphanumeric position. It records
// every character observed and, once coalesced, the run length as a repeat
// range.
type CharClass struct {
	class     Class
	ascii     asciiSet
	low, high rune
	nonASCII  []rune
	min, max  int
}

// NewCharClass returns a single-position class that has observed r.
func NewCharClass(class Class, r rune) *CharClass {
	c := &CharClass{class: class, low: unicode.MaxASCII + 1, high: -1, min: 1, max: 1}
	c.Observe(r)
	return c
}

func (c *CharClass) Kind() Kind { return KindCharClass }
func (c *CharClass) Key() string { return string(c.class.Marker()) }
func (c *CharClass) Class() Class { return c.class }
func (c *CharClass) Clone() Token { return c.clone() }
func (*CharClass) sealed() {}

func (c *CharClass) clone() *CharClass {
	out := *c
	out.nonASCII = append([]rune(nil), c.nonASCII...)
	return &out
}

// Repeat returns the repeat range.
func (c *CharClass) Repeat() (min, max int) { return c.min, c.max }

// SetRepeat replaces the repeat range.
func (c *CharClass) SetRepeat(min, max int) {
	c.min, c.max = min, max
}

// Observe records r.
func (c *CharClass) Observe(r rune) {
	if r <= unicode.MaxASCII {
		c.ascii.add(r)
		if r < c.low {
			c.low = r
		}
		if r > c.high {
			c.high = r
		}
		return
	}
	i := sort.Search(len(c.nonASCII), func(i int) bool { return c.nonASCII[i] >= r })
	if i < len(c.nonASCII) && c.nonASCII[i] == r {
		return
	}
	c.nonASCII = append(c.nonASCII, 0)
	copy(c.nonASCII[i+1:], c.nonASCII[i:])
	c.nonASCII[i] = r
}

// Contains reports whether r has been observed.
func (c *CharClass) Contains(r rune) bool {
	if r <= unicode.MaxASCII {
		return r >= 0 && c.ascii.has(r)
	}
	i := sort.Search(len(c.nonASCII), func(i int) bool { return c.nonASCII[i] >= r })
	return i < len(c.nonASCII) && c.nonASCII[i] == r
}

// Absorb folds o's observations into c, widening the class if needed and
// extending the repeat range to cover both.
func (c *CharClass) Absorb(o *CharClass) {
	c.class = c.class.Promote(o.class)
	c.ascii.union(o.ascii)
	if o.low < c.low {
		c.low = o.low
	}
	if o.high > c.high {
		c.high = o.high
	}
	for _, r := range o.nonASCII {
		c.Observe(r)
	}
	if o.min < c.min {
		c.min = o.min
	}
	if o.max > c.max {
		c.max = o.max
	}
}

// CharactersUsed returns the number of distinct characters observed.
func (c *CharClass) CharactersUsed() int {
	return c.ascii.count() + len(c.nonASCII)
}

// ASCII reports whether only ASCII characters have been observed.
func (c *CharClass) ASCII() bool { return len(c.nonASCII) == 0 }

// Complete reports whether every ASCII character of the class has been
// observed, so further ASCII samples cannot change the token.
func (c *CharClass) Complete() bool {
	switch c.class {
	case Digit:
		return c.ascii.covers(digitSet)
	case Alpha:
		return c.ascii.covers(alphaSet)
	default:
		return c.ascii.covers(digitSet) && c.ascii.covers(alphaSet)
	}
}

// Ranges returns the minimal sorted set of closed intervals covering the
// observed characters.
func (c *CharClass) Ranges() []Range {
	var out []Range
	add := func(r rune) {
		if n := len(out); n > 0 && out[n-1].Hi+1 == r {
			out[n-1].Hi = r
			return
		}
		out = append(out, Range{Lo: r, Hi: r})
	}
	for r := c.low; r <= c.high; r++ {
		if c.ascii.has(r) {
			add(r)
		}
	}
	for _, r := range c.nonASCII {
		add(r)
	}
	return out
}

// Escape returns the generic class escape, ignoring the observed set.
func (c *CharClass) Escape() string {
	switch c.class {
	case Digit:
		return `\d`
	case Alpha:
		if c.ASCII() {
			return `\p{Alpha}`
		}
		return `\p{IsAlphabetic}`
	default:
		if c.ASCII() {
			return `[A-Za-z0-9]`
		}
		return `[\p{IsAlphabetic}\d]`
	}
}

// Render renders the class followed by its repeat quantifier. Digits always
// render as \d; other classes render the observed set explicitly when fitted
// and few enough characters have been seen.
func (c *CharClass) Render(opts RenderOptions) string {
	body := c.Escape()
	if opts.Fitted && c.class != Digit && c.fits(opts.ratio()) {
		body = c.bracket()
	}
	return body + Quantifier(c.min, c.max)
}

func (c *CharClass) fits(ratio float64) bool {
	return float64(c.CharactersUsed()) <= ratio*float64(c.max)
}

func (c *CharClass) bracket() string {
	var b strings.Builder
	b.WriteByte('[')
	for _, r := range c.Ranges() {
		writeClassRune(&b, r.Lo)
		switch {
		case r.Hi == r.Lo:
		case r.Hi == r.Lo+1:
			writeClassRune(&b, r.Hi)
		default:
			b.WriteByte('-')
			writeClassRune(&b, r.Hi)
		}
	}
	b.WriteByte(']')
	return b.String()
}

func writeClassRune(b *strings.Builder, r rune) {
	switch r {
	case '\\', ']', '[', '^', '-':
		b.WriteByte('\\')
	}
	b.WriteRune(r)
}

// Combine coalesces a run of class tokens into a single token whose repeat
// range is the sum of the run's ranges. It returns nil for an empty run.
func Combine(run []*CharClass) *CharClass {
	if len(run) == 0 {
		return nil
	}
	out := run[0].clone()
	for _, o := range run[1:] {
		min, max := out.min+o.min, out.max+o.max
		out.Absorb(o)
		out.min, out.max = min, max
	}
	return out
}
