package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		r     rune
		class Class
		ok    bool
	}{
		{'0', Digit, true},
		{'9', Digit, true},
		{'a', Alpha, true},
		{'Z', Alpha, true},
		{'é', Alpha, true},
		{'-', 0, false},
		{' ', 0, false},
		{'٣', 0, false}, // Arabic-Indic digit is not \d
	}

	for _, tt := range tests {
		class, ok := Classify(tt.r)
		assert.Equal(t, tt.ok, ok, "rune %q", tt.r)
		assert.Equal(t, tt.class, class, "rune %q", tt.r)
	}
}

func TestQuantifier(t *testing.T) {
	assert.Equal(t, "", Quantifier(1, 1))
	assert.Equal(t, "{3}", Quantifier(3, 3))
	assert.Equal(t, "{2,5}", Quantifier(2, 5))
	assert.Equal(t, "+", Quantifier(1, -1))
	assert.Equal(t, "*", Quantifier(0, -1))
	assert.Equal(t, "{4,}", Quantifier(4, -1))
}

func TestLiteral_Render(t *testing.T) {
	assert.Equal(t, `\.`, NewLiteral('.').Render(RenderOptions{}))
	assert.Equal(t, `-`, NewLiteral('-').Render(RenderOptions{}))
	assert.Equal(t, `\+`, NewLiteral('+').Render(RenderOptions{}))
	assert.Equal(t, "@", NewLiteral('@').Key())
	assert.Equal(t, 1, NewLiteral('@').CharactersUsed())
}

func TestOpaqueTokens(t *testing.T) {
	assert.Equal(t, -1, (&Wildcard{}).CharactersUsed())
	assert.Equal(t, -1, (&Float{}).CharactersUsed())
	assert.Equal(t, ".+", (&Wildcard{}).Render(RenderOptions{Fitted: true}))
	assert.Equal(t, WildcardKey, (&Wildcard{}).Key())
	assert.Equal(t, `\d*\.?\d+`, (&Float{}).Render(RenderOptions{}))
	assert.Equal(t, `[+-]?\d*\.?\d+`, (&Float{Signed: true}).Render(RenderOptions{}))
}

func TestMerge_SameKinds(t *testing.T) {
	lit, err := Merge(NewLiteral('-'), NewLiteral('-'))
	require.NoError(t, err)
	assert.Equal(t, "-", lit.Key())

	f, err := Merge(&Float{}, &Float{Signed: true})
	require.NoError(t, err)
	assert.True(t, f.(*Float).Signed)

	w, err := Merge(&Wildcard{}, &Wildcard{})
	require.NoError(t, err)
	assert.Equal(t, KindWildcard, w.Kind())
}

func TestMerge_PromotesClass(t *testing.T) {
	a := NewCharClass(Alpha, 'A')
	d := NewCharClass(Digit, '1')

	merged, err := Merge(a, d)
	require.NoError(t, err)

	cc := merged.(*CharClass)
	assert.Equal(t, AlphaDigit, cc.Class())
	assert.True(t, cc.Contains('A'))
	assert.True(t, cc.Contains('1'))

	// Arguments are untouched.
	assert.Equal(t, Alpha, a.Class())
	assert.False(t, a.Contains('1'))
}

func TestMerge_Commutative(t *testing.T) {
	a := NewCharClass(Alpha, 'q')
	a.Observe('ß')
	b := NewCharClass(Digit, '7')

	ab, err := Merge(a, b)
	require.NoError(t, err)
	ba, err := Merge(b, a)
	require.NoError(t, err)

	assert.Equal(t, ab.(*CharClass).Ranges(), ba.(*CharClass).Ranges())
	assert.Equal(t, ab.Key(), ba.Key())
}

func TestMerge_Incompatible(t *testing.T) {
	_, err := Merge(NewLiteral('-'), NewCharClass(Digit, '1'))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompatible)

	_, err = Merge(&Float{}, &Wildcard{})
	assert.ErrorIs(t, err, ErrIncompatible)
}

func TestRenderAndKey(t *testing.T) {
	tokens := []Token{NewCharClass(Alpha, 'A'), NewLiteral('-'), NewCharClass(Digit, '4')}
	assert.Equal(t, "X-9", Key(tokens))
	assert.Equal(t, `\p{Alpha}-\d`, Render(tokens, RenderOptions{}))
	assert.Equal(t, `[A]-\d`, Render(tokens, RenderOptions{Fitted: true}))
}
