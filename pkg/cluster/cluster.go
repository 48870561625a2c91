// Package cluster implements the bounded set of shapes seen in one column
// and the synthesis of a single pattern describing them.
//
// A Cluster is owned by the analyzer profiling one column and is not safe
// for concurrent use. Memory is bounded by the shape cap times the maximum
// tracked length, however many samples are tracked.
package cluster

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/praetorian-inc/shapes/pkg/pattern"
	"github.com/praetorian-inc/shapes/pkg/stream"
	"github.com/praetorian-inc/shapes/pkg/token"
	"github.com/sirupsen/logrus"
)

// Cluster tracks one TokenStream per distinct shape, up to a cap. Once a
// sample is too long or a new shape would exceed the cap, the cluster
// collapses for good into a single catch-all stream.
type Cluster struct {
	streams   map[string]*stream.TokenStream
	cap       int
	maxLength int
	fitRatio  float64
	collapsed bool
	total     int64

	verifier *pattern.Verifier
	log      *logrus.Logger
}

// Shape is one shape key with its sample count.
type Shape struct {
	Key   string `json:"key" yaml:"key"`
	Count int64  `json:"count" yaml:"count"`
}

// New creates an empty Cluster.
func New(opts ...Option) *Cluster {
	c := &Cluster{
		streams:   make(map[string]*stream.TokenStream),
		cap:       DefaultCap,
		maxLength: DefaultMaxLength,
		fitRatio:  token.DefaultFitRatio,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.verifier == nil {
		c.verifier = pattern.NewVerifier(nil)
	}
	if c.log == nil {
		c.log = discardLogger()
	}
	return c
}

// Track records count occurrences of sample, which the caller has already
// trimmed. Non-positive counts are ignored.
func (c *Cluster) Track(sample string, count int64) {
	if count <= 0 {
		return
	}
	c.total += count

	if c.collapsed {
		c.streams[token.WildcardKey].AddOccurrences(count)
		return
	}

	if utf8.RuneCountInString(sample) > c.maxLength {
		c.collapse("sample exceeds maximum length")
		return
	}

	key, ascii := stream.Shape(sample, c.maxLength)
	if existing, ok := c.streams[key]; ok {
		if ascii && existing.Complete() {
			existing.AddOccurrences(count)
			return
		}
		if err := existing.Absorb(stream.New(sample, count, c.maxLength)); err != nil {
			panic(fmt.Sprintf("cluster: sample %q does not merge into its own shape: %v", sample, err))
		}
		return
	}

	if len(c.streams) >= c.cap {
		c.collapse("shape cap exceeded")
		return
	}
	c.streams[key] = stream.New(sample, count, c.maxLength)
}

// collapse discards per-shape detail in favour of one catch-all stream
// holding every sample seen so far.
func (c *Cluster) collapse(reason string) {
	c.log.WithFields(logrus.Fields{
		"reason":  reason,
		"shapes":  len(c.streams),
		"samples": c.total,
		"cap":     c.cap,
	}).Debug("collapsing shape cluster")

	c.streams = map[string]*stream.TokenStream{
		token.WildcardKey: stream.NewWildcard(c.total),
	}
	c.collapsed = true
}

// Merge folds other into c, as when combining the clusters of two shards
// of one column. Streams sharing a shape key are merged; new shapes are
// added while the cap allows, after which c collapses. Either side being
// collapsed collapses the result. other is not modified.
func (c *Cluster) Merge(other *Cluster) error {
	if other == nil || other == c {
		return fmt.Errorf("cannot merge cluster into itself or nil")
	}
	if other.maxLength != c.maxLength {
		return fmt.Errorf("cannot merge clusters with max length %d and %d", c.maxLength, other.maxLength)
	}

	c.total += other.total
	if c.collapsed {
		c.streams[token.WildcardKey].AddOccurrences(other.total)
		return nil
	}
	if other.collapsed {
		c.collapse("merged with collapsed cluster")
		return nil
	}

	for _, s := range other.ordered() {
		if existing, ok := c.streams[s.Key()]; ok {
			if err := existing.Absorb(s); err != nil {
				return fmt.Errorf("merging shape %q: %w", s.Key(), err)
			}
			continue
		}
		if len(c.streams) >= c.cap {
			c.collapse("shape cap exceeded by merge")
			return nil
		}
		c.streams[s.Key()] = s.Clone()
	}
	return nil
}

// IsCollapsed reports whether the cluster has collapsed. It never reverts.
func (c *Cluster) IsCollapsed() bool { return c.collapsed }

// StreamCount returns the number of distinct shapes held.
func (c *Cluster) StreamCount() int { return len(c.streams) }

// SamplesSeen returns the total occurrence count tracked.
func (c *Cluster) SamplesSeen() int64 { return c.total }

// Cap returns the shape cap.
func (c *Cluster) Cap() int { return c.cap }

// MaxLength returns the longest sample that keeps structure.
func (c *Cluster) MaxLength() int { return c.maxLength }

// DominantStream returns the stream with the most occurrences, or nil if
// nothing has been tracked. Ties go to the smallest shape key.
func (c *Cluster) DominantStream() *stream.TokenStream {
	ordered := c.ordered()
	if len(ordered) == 0 {
		return nil
	}
	return ordered[0]
}

// Shapes returns every shape key with its count, most frequent first and
// then by key.
func (c *Cluster) Shapes() []Shape {
	ordered := c.ordered()
	out := make([]Shape, len(ordered))
	for i, s := range ordered {
		out[i] = Shape{Key: s.Key(), Count: s.Occurrences()}
	}
	return out
}

// ordered returns the streams by occurrences descending, then key.
func (c *Cluster) ordered() []*stream.TokenStream {
	out := make([]*stream.TokenStream, 0, len(c.streams))
	for _, s := range c.streams {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Occurrences() != out[j].Occurrences() {
			return out[i].Occurrences() > out[j].Occurrences()
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}
