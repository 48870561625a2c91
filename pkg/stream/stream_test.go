package stream

import (
	"testing"

	"github.com/praetorian-inc/shapes/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxLength = 64

var (
	fitted   = token.RenderOptions{Fitted: true}
	unfitted = token.RenderOptions{}
)

func build(t *testing.T, samples ...string) *TokenStream {
	t.Helper()
	require.NotEmpty(t, samples)
	ts := New(samples[0], 1, testMaxLength)
	for _, s := range samples[1:] {
		require.NoError(t, ts.Absorb(New(s, 1, testMaxLength)))
	}
	return ts
}

func TestNew_ShapeKey(t *testing.T) {
	tests := []struct {
		sample string
		key    string
	}{
		{"A1", "X9"},
		{"abc-123", "XXX-999"},
		{"1.5", "9.9"},
		{"été 7", "XXX 9"},
		{"", ""},
		{"(555) 123", "(999) 999"},
	}

	for _, tt := range tests {
		ts := New(tt.sample, 1, testMaxLength)
		assert.Equal(t, tt.key, ts.Key(), tt.sample)
		assert.Len(t, ts.Tokens(), len([]rune(tt.sample)))

		key, _ := Shape(tt.sample, testMaxLength)
		assert.Equal(t, tt.key, key, "Shape(%q)", tt.sample)
	}
}

func TestNew_MaxLength(t *testing.T) {
	atMax := New("12345", 1, 5)
	assert.Equal(t, "99999", atMax.Key())
	assert.False(t, atMax.IsWildcard())

	over := New("123456", 3, 5)
	assert.Equal(t, token.WildcardKey, over.Key())
	assert.True(t, over.IsWildcard())
	assert.Equal(t, int64(3), over.Occurrences())
	require.Len(t, over.Tokens(), 1)
	assert.Equal(t, ".+", over.Render(fitted))

	key, ascii := Shape("123456", 5)
	assert.Equal(t, token.WildcardKey, key)
	assert.False(t, ascii)
}

func TestShape_ASCII(t *testing.T) {
	_, ascii := Shape("abc", testMaxLength)
	assert.True(t, ascii)
	_, ascii = Shape("abé", testMaxLength)
	assert.False(t, ascii)
}

func TestMergeable(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"A1", "B2", true},
		{"123", "ABC", true},
		{"A-1", "1-A", true},
		{"A-1", "A_1", false},
		{"A1", "A12", false},
		{"A-", "AB", false},
	}

	for _, tt := range tests {
		a, b := New(tt.a, 1, testMaxLength), New(tt.b, 1, testMaxLength)
		assert.Equal(t, tt.want, Mergeable(a, b), "%s / %s", tt.a, tt.b)
		assert.Equal(t, tt.want, Mergeable(b, a), "%s / %s", tt.b, tt.a)
	}

	assert.True(t, Mergeable(NewWildcard(1), NewWildcard(2)))
	assert.False(t, Mergeable(NewWildcard(1), New("A", 1, testMaxLength)))
}

func TestMerge_Promotes(t *testing.T) {
	a := New("123", 2, testMaxLength)
	b := New("ABC", 3, testMaxLength)

	merged, err := Merge(a, b)
	require.NoError(t, err)
	assert.Equal(t, "HHH", merged.Key())
	assert.Equal(t, int64(5), merged.Occurrences())

	// Inputs are untouched.
	assert.Equal(t, "999", a.Key())
	assert.Equal(t, "XXX", b.Key())
	assert.Equal(t, int64(2), a.Occurrences())
}

func TestMerge_Commutative(t *testing.T) {
	a := build(t, "A-1", "B-7")
	b := build(t, "9-z", "é-5")

	ab, err := Merge(a, b)
	require.NoError(t, err)
	ba, err := Merge(b, a)
	require.NoError(t, err)

	assert.Equal(t, ab.Key(), ba.Key())
	assert.Equal(t, ab.Occurrences(), ba.Occurrences())
	assert.Equal(t, ab.Render(fitted), ba.Render(fitted))
	assert.Equal(t, ab.Render(unfitted), ba.Render(unfitted))
	for i := range ab.Tokens() {
		if x, ok := ab.Tokens()[i].(*token.CharClass); ok {
			assert.Equal(t, x.Ranges(), ba.Tokens()[i].(*token.CharClass).Ranges())
		}
	}
}

func TestMerge_Associative(t *testing.T) {
	a := New("A1", 1, testMaxLength)
	b := New("22", 1, testMaxLength)
	c := New("C3", 1, testMaxLength)

	ab, err := Merge(a, b)
	require.NoError(t, err)
	left, err := Merge(ab, c)
	require.NoError(t, err)

	bc, err := Merge(b, c)
	require.NoError(t, err)
	right, err := Merge(a, bc)
	require.NoError(t, err)

	assert.Equal(t, left.Key(), right.Key())
	assert.Equal(t, left.Render(fitted), right.Render(fitted))
	assert.Equal(t, left.Occurrences(), right.Occurrences())
}

func TestMerge_SelfIsAdditiveOnCount(t *testing.T) {
	a := build(t, "AB", "CD")
	merged, err := Merge(a, a)
	require.NoError(t, err)
	assert.Equal(t, a.Key(), merged.Key())
	assert.Equal(t, 2*a.Occurrences(), merged.Occurrences())
	assert.Equal(t, a.Render(fitted), merged.Render(fitted))
}

func TestMerge_Incompatible(t *testing.T) {
	a := New("A-1", 1, testMaxLength)
	b := New("A_1", 1, testMaxLength)

	merged, err := Merge(a, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotMergeable)
	assert.Nil(t, merged)

	err = a.Absorb(New("A1", 1, testMaxLength))
	assert.ErrorIs(t, err, ErrNotMergeable)
	assert.Equal(t, int64(1), a.Occurrences(), "failed absorb leaves the stream alone")
}

func TestComplete(t *testing.T) {
	ts := New("0", 1, testMaxLength)
	for _, s := range []string{"1", "2", "3", "4", "5", "6", "7", "8"} {
		require.NoError(t, ts.Absorb(New(s, 1, testMaxLength)))
	}
	assert.False(t, ts.Complete())
	require.NoError(t, ts.Absorb(New("9", 1, testMaxLength)))
	assert.True(t, ts.Complete())

	assert.True(t, New("--", 1, testMaxLength).Complete(), "literals only")
}

func TestClone_IsDeep(t *testing.T) {
	a := New("A", 1, testMaxLength)
	c := a.Clone()
	require.NoError(t, c.Absorb(New("B", 1, testMaxLength)))

	assert.Equal(t, 1, a.Tokens()[0].CharactersUsed())
	assert.Equal(t, 2, c.Tokens()[0].CharactersUsed())
}
