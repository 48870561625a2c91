package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1024 * 1024

// column is the pre-aggregated values of one input column: each distinct
// trimmed value with its count, in first-seen order.
type column struct {
	name   string
	order  []string
	counts map[string]int64
}

func newColumn(name string) *column {
	return &column{name: name, counts: make(map[string]int64)}
}

// add records one raw value. Blank values are not profiled.
func (c *column) add(raw string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	if _, ok := c.counts[v]; !ok {
		c.order = append(c.order, v)
	}
	c.counts[v]++
}

// openInput returns the file named by args, or stdin when there is none
// or it is "-".
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	return f, nil
}

// readLines treats every line of r as one value of a single column.
func readLines(r io.Reader) ([]*column, error) {
	col := newColumn("value")
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		col.add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return []*column{col}, nil
}

// readCSV splits r into columns. With header the first record names the
// columns; otherwise they are named column1, column2 and so on. Short
// records leave the missing columns untouched.
func readCSV(r io.Reader, header bool) ([]*column, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	var cols []*column
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}

		if first && header {
			for _, name := range record {
				cols = append(cols, newColumn(strings.TrimSpace(name)))
			}
			first = false
			continue
		}
		first = false

		for len(cols) < len(record) {
			cols = append(cols, newColumn(fmt.Sprintf("column%d", len(cols)+1)))
		}
		for i, field := range record {
			cols[i].add(field)
		}
	}
	return cols, nil
}

func readColumns(r io.Reader, csvMode, header bool) ([]*column, error) {
	if csvMode {
		return readCSV(r, header)
	}
	return readLines(r)
}
