package automaton

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of compiled automata kept by default.
const DefaultCacheSize = 100

// Cache stores compiled automata keyed by pattern string. Construction is
// pure, so a cache only has to make Get and Add safe for however many
// goroutines the host shares it between.
type Cache interface {
	Get(pattern string) (*DFA, bool)
	Add(pattern string, dfa *DFA)
	Len() int
}

// LRUCache is a bounded, goroutine-safe Cache evicting the least recently
// used automaton.
type LRUCache struct {
	lru *lru.Cache[string, *DFA]
}

// NewLRUCache creates an LRUCache holding at most size automata.
func NewLRUCache(size int) (*LRUCache, error) {
	c, err := lru.New[string, *DFA](size)
	if err != nil {
		return nil, fmt.Errorf("creating automaton cache: %w", err)
	}
	return &LRUCache{lru: c}, nil
}

// Get returns the cached automaton for pattern.
func (c *LRUCache) Get(pattern string) (*DFA, bool) {
	return c.lru.Get(pattern)
}

// Add stores dfa under pattern, evicting the oldest entry if full.
func (c *LRUCache) Add(pattern string, dfa *DFA) {
	c.lru.Add(pattern, dfa)
}

// Len returns the number of cached automata.
func (c *LRUCache) Len() int {
	return c.lru.Len()
}

// GetOrCompile returns the cached automaton for pattern, compiling and
// caching it on a miss. Compilation errors are not cached. Automata built
// under a bound other than DefaultMaxStates are cached apart from the
// default ones, so a tighter bound is never bypassed by a cache hit.
func GetOrCompile(c Cache, pattern string, maxStates int) (*DFA, error) {
	key := cacheKey(pattern, maxStates)
	if d, ok := c.Get(key); ok {
		return d, nil
	}
	d, err := CompileWithLimit(pattern, maxStates)
	if err != nil {
		return nil, err
	}
	c.Add(key, d)
	return d, nil
}

func cacheKey(pattern string, maxStates int) string {
	if maxStates == DefaultMaxStates {
		return pattern
	}
	return fmt.Sprintf("%s\x00%d", pattern, maxStates)
}
