package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLines_AggregatesAndTrims(t *testing.T) {
	cols, err := readLines(strings.NewReader("b\n a \n\nb\r\n   \na\n"))
	require.NoError(t, err)
	require.Len(t, cols, 1)

	col := cols[0]
	assert.Equal(t, "value", col.name)
	assert.Equal(t, []string{"b", "a"}, col.order)
	assert.Equal(t, map[string]int64{"a": 2, "b": 2}, col.counts)
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		header bool
		names  []string
		counts []int
	}{
		{"header", "id,name\n1,x\n2,y\n", true, []string{"id", "name"}, []int{2, 2}},
		{"no header", "1,x\n2,y\n", false, []string{"column1", "column2"}, []int{2, 2}},
		{"ragged", "1\n2,y,z\n", false, []string{"column1", "column2", "column3"}, []int{2, 1, 1}},
		{"blank fields", "1,\n,\n", false, []string{"column1", "column2"}, []int{1, 0}},
		{"quoted", "\"a,b\",1\n", false, []string{"column1", "column2"}, []int{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, err := readCSV(strings.NewReader(tt.input), tt.header)
			require.NoError(t, err)
			require.Len(t, cols, len(tt.names))
			for i, col := range cols {
				assert.Equal(t, tt.names[i], col.name)
				assert.Len(t, col.order, tt.counts[i])
			}
		})
	}
}

func TestReadCSV_Malformed(t *testing.T) {
	_, err := readCSV(strings.NewReader("\"unterminated\n"), false)
	assert.Error(t, err)
}
