package automaton

import (
	"fmt"
	"regexp/syntax"
	"sort"
	"unicode"
)

// nfaState is either a rune-set transition (ranges non-empty, target out)
// or a set of epsilon transitions.
type nfaState struct {
	ranges []rng
	out    int
	eps    []int
}

type rng struct {
	lo, hi rune
}

type nfa struct {
	states []nfaState
	start  int
	accept int
}

type builder struct {
	states    []nfaState
	maxStates int
}

func (b *builder) newState() (int, error) {
	if b.maxStates > 0 && len(b.states) >= b.maxStates*8 {
		return 0, fmt.Errorf("%w: pattern expands beyond %d NFA states", ErrTooManyStates, b.maxStates*8)
	}
	b.states = append(b.states, nfaState{out: -1})
	return len(b.states) - 1, nil
}

func (b *builder) epsilon(from, to int) {
	b.states[from].eps = append(b.states[from].eps, to)
}

// buildNFA runs Thompson's construction over a parsed expression.
func buildNFA(re *syntax.Regexp, maxStates int) (*nfa, error) {
	b := &builder{maxStates: maxStates}
	start, end, err := b.build(re)
	if err != nil {
		return nil, err
	}
	return &nfa{states: b.states, start: start, accept: end}, nil
}

// frag returns a two-state fragment joined by a transition over ranges,
// or by an epsilon when ranges is nil.
func (b *builder) frag(ranges []rng) (int, int, error) {
	s, err := b.newState()
	if err != nil {
		return 0, 0, err
	}
	e, err := b.newState()
	if err != nil {
		return 0, 0, err
	}
	if ranges == nil {
		b.epsilon(s, e)
	} else {
		b.states[s].ranges = ranges
		b.states[s].out = e
	}
	return s, e, nil
}

func (b *builder) build(re *syntax.Regexp) (int, int, error) {
	switch re.Op {
	case syntax.OpNoMatch:
		s, err := b.newState()
		if err != nil {
			return 0, 0, err
		}
		e, err := b.newState()
		return s, e, err

	case syntax.OpEmptyMatch, syntax.OpBeginLine, syntax.OpEndLine, syntax.OpBeginText, syntax.OpEndText:
		// Matching is always whole-string, so anchors are no-ops.
		return b.frag(nil)

	case syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return 0, 0, fmt.Errorf("%w: %s", ErrUnsupported, re)

	case syntax.OpLiteral:
		if len(re.Rune) == 0 {
			return b.frag(nil)
		}
		fold := re.Flags&syntax.FoldCase != 0
		start, end := -1, -1
		for _, r := range re.Rune {
			s, e, err := b.frag(literalRanges(r, fold))
			if err != nil {
				return 0, 0, err
			}
			if start < 0 {
				start = s
			} else {
				b.epsilon(end, s)
			}
			end = e
		}
		return start, end, nil

	case syntax.OpCharClass:
		ranges := make([]rng, 0, len(re.Rune)/2)
		for i := 0; i+1 < len(re.Rune); i += 2 {
			ranges = append(ranges, rng{re.Rune[i], re.Rune[i+1]})
		}
		if len(ranges) == 0 {
			s, err := b.newState()
			if err != nil {
				return 0, 0, err
			}
			e, err := b.newState()
			return s, e, err
		}
		return b.frag(ranges)

	case syntax.OpAnyCharNotNL:
		return b.frag([]rng{{0, '\n' - 1}, {'\n' + 1, unicode.MaxRune}})

	case syntax.OpAnyChar:
		return b.frag([]rng{{0, unicode.MaxRune}})

	case syntax.OpCapture:
		return b.build(re.Sub[0])

	case syntax.OpStar:
		return b.star(re.Sub[0])

	case syntax.OpPlus:
		ss, se, err := b.build(re.Sub[0])
		if err != nil {
			return 0, 0, err
		}
		e, err := b.newState()
		if err != nil {
			return 0, 0, err
		}
		b.epsilon(se, ss)
		b.epsilon(se, e)
		return ss, e, nil

	case syntax.OpQuest:
		return b.quest(re.Sub[0])

	case syntax.OpRepeat:
		return b.repeat(re.Sub[0], re.Min, re.Max)

	case syntax.OpConcat:
		return b.concat(re.Sub)

	case syntax.OpAlternate:
		s, err := b.newState()
		if err != nil {
			return 0, 0, err
		}
		e, err := b.newState()
		if err != nil {
			return 0, 0, err
		}
		for _, sub := range re.Sub {
			ss, se, err := b.build(sub)
			if err != nil {
				return 0, 0, err
			}
			b.epsilon(s, ss)
			b.epsilon(se, e)
		}
		return s, e, nil
	}

	return 0, 0, fmt.Errorf("%w: operator %v", ErrUnsupported, re.Op)
}

func (b *builder) star(sub *syntax.Regexp) (int, int, error) {
	s, e, err := b.frag(nil)
	if err != nil {
		return 0, 0, err
	}
	ss, se, err := b.build(sub)
	if err != nil {
		return 0, 0, err
	}
	b.epsilon(s, ss)
	b.epsilon(se, ss)
	b.epsilon(se, e)
	return s, e, nil
}

func (b *builder) quest(sub *syntax.Regexp) (int, int, error) {
	s, e, err := b.frag(nil)
	if err != nil {
		return 0, 0, err
	}
	ss, se, err := b.build(sub)
	if err != nil {
		return 0, 0, err
	}
	b.epsilon(s, ss)
	b.epsilon(se, e)
	return s, e, nil
}

func (b *builder) concat(subs []*syntax.Regexp) (int, int, error) {
	if len(subs) == 0 {
		return b.frag(nil)
	}
	start, end := -1, -1
	for _, sub := range subs {
		s, e, err := b.build(sub)
		if err != nil {
			return 0, 0, err
		}
		if start < 0 {
			start = s
		} else {
			b.epsilon(end, s)
		}
		end = e
	}
	return start, end, nil
}

// repeat expands x{min,max} into min mandatory copies followed by either
// max-min optional copies or, when max is -1, a star.
func (b *builder) repeat(sub *syntax.Regexp, min, max int) (int, int, error) {
	start, end, err := b.frag(nil)
	if err != nil {
		return 0, 0, err
	}
	link := func(s, e int) {
		b.epsilon(end, s)
		end = e
	}
	for i := 0; i < min; i++ {
		s, e, err := b.build(sub)
		if err != nil {
			return 0, 0, err
		}
		link(s, e)
	}
	if max < 0 {
		s, e, err := b.star(sub)
		if err != nil {
			return 0, 0, err
		}
		link(s, e)
		return start, end, nil
	}
	for i := min; i < max; i++ {
		s, e, err := b.quest(sub)
		if err != nil {
			return 0, 0, err
		}
		link(s, e)
	}
	return start, end, nil
}

// literalRanges returns r alone, or its whole simple case-folding orbit.
func literalRanges(r rune, fold bool) []rng {
	runes := []rune{r}
	if fold {
		for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
			runes = append(runes, f)
		}
		sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	}
	out := make([]rng, 0, len(runes))
	for _, x := range runes {
		if n := len(out); n > 0 && out[n-1].hi+1 == x {
			out[n-1].hi = x
			continue
		}
		out = append(out, rng{x, x})
	}
	return out
}
