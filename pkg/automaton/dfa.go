// Package automaton compiles regular expressions into deterministic finite
// automata whose transitions are labelled with closed rune intervals.
//
// A DFA built here answers whole-string membership only. It exists so that
// a pattern can be checked against sets of characters per position rather
// than against individual strings.
package automaton

import (
	"encoding/binary"
	"errors"
	"fmt"
	"regexp/syntax"
	"sort"
	"unicode"
)

// DefaultMaxStates bounds subset construction.
const DefaultMaxStates = 10000

var (
	// ErrUnsupported is returned for constructs with no finite-automaton
	// equivalent in this package, such as word boundaries.
	ErrUnsupported = errors.New("unsupported regular expression construct")

	// ErrTooManyStates is returned when construction exceeds its state bound.
	ErrTooManyStates = errors.New("automaton too large")
)

// Transition moves to state To on any rune in [Lo, Hi].
type Transition struct {
	Lo, Hi rune
	To     int
}

type state struct {
	accept bool
	trans  []Transition // sorted by Lo, pairwise disjoint
}

// DFA is an immutable deterministic automaton. State 0 is the start state.
type DFA struct {
	pattern string
	states  []state
}

// Compile parses pattern (Go regexp/syntax, Perl flags, dot matches
// newline) and builds its DFA with DefaultMaxStates.
func Compile(pattern string) (*DFA, error) {
	return CompileWithLimit(pattern, DefaultMaxStates)
}

// CompileWithLimit is Compile with an explicit state bound.
func CompileWithLimit(pattern string, maxStates int) (*DFA, error) {
	re, err := syntax.Parse(pattern, syntax.Perl|syntax.DotNL)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", pattern, err)
	}
	n, err := buildNFA(re, maxStates)
	if err != nil {
		return nil, fmt.Errorf("compiling %q: %w", pattern, err)
	}
	d, err := determinize(n, maxStates)
	if err != nil {
		return nil, fmt.Errorf("compiling %q: %w", pattern, err)
	}
	d.pattern = pattern
	return d, nil
}

// Pattern returns the source expression.
func (d *DFA) Pattern() string { return d.pattern }

// Start returns the start state.
func (d *DFA) Start() int { return 0 }

// States returns the number of states.
func (d *DFA) States() int { return len(d.states) }

// Accept reports whether s is accepting.
func (d *DFA) Accept(s int) bool { return d.states[s].accept }

// Transitions returns the sorted outgoing transitions of s. The slice must
// not be modified.
func (d *DFA) Transitions(s int) []Transition { return d.states[s].trans }

// Step returns the state reached from s on r.
func (d *DFA) Step(s int, r rune) (int, bool) {
	trans := d.states[s].trans
	i := sort.Search(len(trans), func(i int) bool { return trans[i].Hi >= r })
	if i == len(trans) || trans[i].Lo > r {
		return 0, false
	}
	return trans[i].To, true
}

// MatchString reports whether the whole of s is accepted.
func (d *DFA) MatchString(s string) bool {
	cur := d.Start()
	for _, r := range s {
		next, ok := d.Step(cur, r)
		if !ok {
			return false
		}
		cur = next
	}
	return d.Accept(cur)
}

// AcceptsAllNonEmpty reports whether every non-empty string is accepted:
// the start state and every state reachable from it must have transitions
// covering the whole rune space, and every state reached after at least
// one rune must accept.
func (d *DFA) AcceptsAllNonEmpty() bool {
	seen := make([]bool, len(d.states))
	queue := []int{d.Start()}
	seen[d.Start()] = true
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if !total(d.states[s].trans) {
			return false
		}
		for _, t := range d.states[s].trans {
			if !d.states[t.To].accept {
				return false
			}
			if !seen[t.To] {
				seen[t.To] = true
				queue = append(queue, t.To)
			}
		}
	}
	return true
}

func total(trans []Transition) bool {
	next := rune(0)
	for _, t := range trans {
		if t.Lo != next {
			return false
		}
		next = t.Hi + 1
	}
	return next == unicode.MaxRune+1
}

// determinize runs subset construction. Each DFA state's outgoing rune
// space is cut at every range boundary of its NFA members so that every
// elementary interval has a single target set; adjacent intervals with
// the same target are then rejoined.
func determinize(n *nfa, maxStates int) (*DFA, error) {
	d := &DFA{}
	index := make(map[string]int)
	var sets [][]int

	intern := func(set []int) (int, error) {
		k := setKey(set)
		if id, ok := index[k]; ok {
			return id, nil
		}
		if maxStates > 0 && len(sets) >= maxStates {
			return 0, fmt.Errorf("%w: more than %d states", ErrTooManyStates, maxStates)
		}
		id := len(sets)
		index[k] = id
		sets = append(sets, set)
		d.states = append(d.states, state{accept: contains(set, n.accept)})
		return id, nil
	}

	if _, err := intern(n.closure([]int{n.start})); err != nil {
		return nil, err
	}

	for id := 0; id < len(sets); id++ {
		type edge struct {
			lo, hi rune
			to     int
		}
		var edges []edge
		var cuts []rune
		for _, m := range sets[id] {
			st := n.states[m]
			for _, r := range st.ranges {
				edges = append(edges, edge{r.lo, r.hi, st.out})
				cuts = append(cuts, r.lo, r.hi+1)
			}
		}
		if len(edges) == 0 {
			continue
		}
		sort.Slice(cuts, func(i, j int) bool { return cuts[i] < cuts[j] })
		cuts = dedupe(cuts)

		var trans []Transition
		for c := 0; c+1 < len(cuts); c++ {
			lo, hi := cuts[c], cuts[c+1]-1
			var targets []int
			for _, e := range edges {
				if e.lo <= lo && hi <= e.hi {
					targets = append(targets, e.to)
				}
			}
			if len(targets) == 0 {
				continue
			}
			to, err := intern(n.closure(targets))
			if err != nil {
				return nil, err
			}
			if k := len(trans); k > 0 && trans[k-1].To == to && trans[k-1].Hi+1 == lo {
				trans[k-1].Hi = hi
				continue
			}
			trans = append(trans, Transition{Lo: lo, Hi: hi, To: to})
		}
		d.states[id].trans = trans
	}
	return d, nil
}

// closure returns the sorted epsilon closure of seeds.
func (n *nfa) closure(seeds []int) []int {
	seen := make(map[int]bool, len(seeds))
	stack := append([]int(nil), seeds...)
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[s] {
			continue
		}
		seen[s] = true
		stack = append(stack, n.states[s].eps...)
	}
	out := make([]int, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

func setKey(set []int) string {
	buf := make([]byte, 0, len(set)*binary.MaxVarintLen32)
	for _, s := range set {
		buf = binary.AppendUvarint(buf, uint64(s))
	}
	return string(buf)
}

func contains(set []int, x int) bool {
	i := sort.SearchInts(set, x)
	return i < len(set) && set[i] == x
}

func dedupe(sorted []rune) []rune {
	out := sorted[:0]
	for _, r := range sorted {
		if len(out) == 0 || out[len(out)-1] != r {
			out = append(out, r)
		}
	}
	return out
}
