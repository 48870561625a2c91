package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_MatchString(t *testing.T) {
	tests := []struct {
		pattern string
		match   []string
		noMatch []string
	}{
		{`[A-Z]\d`, []string{"A1", "Z9"}, []string{"", "A", "a1", "A12"}},
		{`\d{3}-\d{4}`, []string{"555-1234"}, []string{"5551234", "55-1234"}},
		{`[A-Za-z0-9]{2,3}`, []string{"a1", "ZZZ"}, []string{"a", "abcd", "a-b"}},
		{`(?:\d{2}|[a-z])`, []string{"12", "q"}, []string{"1", "Q", "123"}},
		{`[+-]?\d*\.?\d+`, []string{"1.5", "-3.0", "+.25", "7"}, []string{"1.", "--1", "a"}},
		{`\pL+`, []string{"abc", "ÉtéΩ"}, []string{"ab1", ""}},
		{`(?i)ab`, []string{"ab", "AB", "aB"}, []string{"ac"}},
		{`^x*$`, []string{"", "xxx"}, []string{"y"}},
		{`a(b)?c`, []string{"ac", "abc"}, []string{"abbc"}},
		{`.+`, []string{"a", "\n", "any thing"}, []string{""}},
		{`[^a]`, []string{"b", "é"}, []string{"a", "bb"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			d, err := Compile(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.pattern, d.Pattern())
			for _, s := range tt.match {
				assert.True(t, d.MatchString(s), "%q should match %q", tt.pattern, s)
			}
			for _, s := range tt.noMatch {
				assert.False(t, d.MatchString(s), "%q should not match %q", tt.pattern, s)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(`[a-`)
	require.Error(t, err)

	_, err = Compile(`\bword\b`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = CompileWithLimit(`[ab]*a[ab]{12}`, 50)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyStates)
}

func TestTransitions_SortedAndDisjoint(t *testing.T) {
	d, err := Compile(`(?:[a-m]x|[h-z]y|\d)`)
	require.NoError(t, err)

	for s := 0; s < d.States(); s++ {
		trans := d.Transitions(s)
		for i := 1; i < len(trans); i++ {
			assert.Less(t, trans[i-1].Hi, trans[i].Lo, "state %d transitions overlap", s)
		}
	}

	// [h-m] is shared by both branches and must lead somewhere that
	// accepts either continuation.
	next, ok := d.Step(d.Start(), 'j')
	require.True(t, ok)
	_, okX := d.Step(next, 'x')
	_, okY := d.Step(next, 'y')
	assert.True(t, okX)
	assert.True(t, okY)

	_, ok = d.Step(d.Start(), '!')
	assert.False(t, ok)
}

func TestAcceptsAllNonEmpty(t *testing.T) {
	tests := []struct {
		pattern string
		want    bool
	}{
		{`.+`, true},
		{`(?s).+`, true},
		{`.*`, true},
		{`[\x00-\x{10FFFF}]+`, true},
		{`\pL+`, false},
		{`.`, false},
		{`[^\n]+`, false},
	}

	for _, tt := range tests {
		d, err := Compile(tt.pattern)
		require.NoError(t, err)
		assert.Equal(t, tt.want, d.AcceptsAllNonEmpty(), tt.pattern)
	}
}
