package pattern

import (
	"errors"
	"fmt"
	"sort"

	"github.com/praetorian-inc/shapes/pkg/automaton"
	"github.com/praetorian-inc/shapes/pkg/token"
)

// ErrInvalidPattern is returned when a candidate pattern cannot be compiled.
// It is never returned for a pattern that merely fails to match.
var ErrInvalidPattern = errors.New("invalid pattern")

// Verifier checks patterns against token sequences using compiled automata
// drawn from a Cache. A Verifier is as safe for concurrent use as its Cache.
type Verifier struct {
	cache     automaton.Cache
	maxStates int
}

// NewVerifier returns a Verifier backed by cache. A nil cache gets a
// private LRU of automaton.DefaultCacheSize entries.
func NewVerifier(cache automaton.Cache) *Verifier {
	if cache == nil {
		c, err := automaton.NewLRUCache(automaton.DefaultCacheSize)
		if err != nil {
			panic(err)
		}
		cache = c
	}
	return &Verifier{cache: cache, maxStates: automaton.DefaultMaxStates}
}

// WithMaxStates returns a copy of v using a different automaton bound.
func (v *Verifier) WithMaxStates(n int) *Verifier {
	out := *v
	out.maxStates = n
	return &out
}

// Cache returns the automaton cache.
func (v *Verifier) Cache() automaton.Cache { return v.cache }

// Compile returns the automaton for pattern, translating the rendered
// dialect first. Failures wrap ErrInvalidPattern.
func (v *Verifier) Compile(pattern string) (*automaton.DFA, error) {
	d, err := automaton.GetOrCompile(v.cache, ToGo(pattern), v.maxStates)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	return d, nil
}

// Match reports whether pattern accepts every string the token sequence
// can stand for. Literals need an exact transition. For a class token,
// every contiguous range of its observed characters must be covered by
// outgoing transitions: a range covered by one transition continues from
// that transition's target, and a range straddling a transition boundary is
// split there and each half verified on its own. Only Literal and CharClass
// tokens may be passed.
func (v *Verifier) Match(pattern string, tokens []token.Token) (bool, error) {
	d, err := v.Compile(pattern)
	if err != nil {
		return false, err
	}

	m := &matcher{
		dfa:    d,
		tokens: tokens,
		ranges: make([][]token.Range, len(tokens)),
		memo:   make(map[memoKey]bool),
	}
	for i, t := range tokens {
		switch x := t.(type) {
		case *token.Literal:
		case *token.CharClass:
			m.ranges[i] = x.Ranges()
		default:
			return false, fmt.Errorf("cannot verify %s token at position %d", t.Kind(), i)
		}
	}
	return m.from(d.Start(), 0), nil
}

// MatchesAnything reports whether pattern accepts every non-empty string,
// which is what verifying a catch-all stream requires.
func (v *Verifier) MatchesAnything(pattern string) (bool, error) {
	d, err := v.Compile(pattern)
	if err != nil {
		return false, err
	}
	return d.AcceptsAllNonEmpty(), nil
}

type memoKey struct {
	state, index int
}

type matcher struct {
	dfa    *automaton.DFA
	tokens []token.Token
	ranges [][]token.Range
	memo   map[memoKey]bool
}

func (m *matcher) from(state, i int) bool {
	if i == len(m.tokens) {
		return m.dfa.Accept(state)
	}
	k := memoKey{state, i}
	if ok, seen := m.memo[k]; seen {
		return ok
	}

	ok := true
	if lit, isLit := m.tokens[i].(*token.Literal); isLit {
		next, found := m.dfa.Step(state, lit.Rune())
		ok = found && m.from(next, i+1)
	} else {
		for _, r := range m.ranges[i] {
			if !m.covered(state, i, r) {
				ok = false
				break
			}
		}
	}

	m.memo[k] = ok
	return ok
}

// covered reports whether every rune of r leads from state to a state that
// accepts the rest of the tokens.
func (m *matcher) covered(state, i int, r token.Range) bool {
	for {
		trans := m.dfa.Transitions(state)
		j := sort.Search(len(trans), func(j int) bool { return trans[j].Hi >= r.Lo })
		if j == len(trans) || trans[j].Lo > r.Lo {
			return false
		}
		t := trans[j]
		if !m.from(t.To, i+1) {
			return false
		}
		if r.Hi <= t.Hi {
			return true
		}
		// Partial overlap: [r.Lo, t.Hi] is proven, continue with the rest.
		r.Lo = t.Hi + 1
	}
}
