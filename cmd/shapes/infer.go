package main

import (
	"fmt"
	"io"

	"github.com/praetorian-inc/shapes"
	"github.com/spf13/cobra"
)

var (
	inferCSV    bool
	inferHeader bool
	inferFitted bool
	inferFormat string
	inferColor  string
)

// columnReport is the inferred pattern of one column.
type columnReport struct {
	Column    string         `json:"column" yaml:"column"`
	Pattern   string         `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Known     bool           `json:"known" yaml:"known"`
	Samples   int64          `json:"samples" yaml:"samples"`
	Streams   int            `json:"streams" yaml:"streams"`
	Collapsed bool           `json:"collapsed" yaml:"collapsed"`
	Shapes    []shapes.Shape `json:"shapes" yaml:"shapes"`
}

var inferCmd = &cobra.Command{
	Use:   "infer [file]",
	Short: "Infer the pattern of a column of values",
	Long:  "Read one value per line (or CSV columns) and print the pattern describing each column",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInfer,
}

func init() {
	inferCmd.Flags().BoolVar(&inferCSV, "csv", false, "Treat input as CSV and profile every column")
	inferCmd.Flags().BoolVar(&inferHeader, "header", false, "First CSV record names the columns")
	inferCmd.Flags().BoolVar(&inferFitted, "fitted", true, "Render explicit character sets where they are tighter")
	inferCmd.Flags().StringVar(&inferFormat, "format", "human", "Output format: human, json, yaml")
	inferCmd.Flags().StringVar(&inferColor, "color", "auto", "Color output: auto, always, never")
}

func runInfer(cmd *cobra.Command, args []string) error {
	in, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	cols, err := readColumns(in, inferCSV, inferHeader)
	if err != nil {
		return err
	}

	log := newLogger(cmd.ErrOrStderr())
	opts, err := profileOptions(log)
	if err != nil {
		return err
	}
	profiles, err := profileColumns(cmd.Context(), cols, opts, log)
	if err != nil {
		return fmt.Errorf("profiling columns: %w", err)
	}

	reports := make([]columnReport, len(cols))
	for i, p := range profiles {
		result := p.Pattern(inferFitted)
		reports[i] = columnReport{
			Column:    cols[i].name,
			Pattern:   result.Regex(),
			Known:     result.Known(),
			Samples:   p.SamplesSeen(),
			Streams:   p.StreamCount(),
			Collapsed: p.IsCollapsed(),
			Shapes:    p.Shapes(),
		}
	}

	if inferFormat == "human" {
		enabled, err := resolveColor(inferColor)
		if err != nil {
			return err
		}
		return outputInferHuman(cmd.OutOrStdout(), reports, newStyles(enabled))
	}
	return writeStructured(cmd.OutOrStdout(), inferFormat, reports)
}

func outputInferHuman(out io.Writer, reports []columnReport, s *styles) error {
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(out)
		}
		s.heading.Fprintf(out, "Column: %s\n", r.Column)

		s.label.Fprint(out, "Pattern: ")
		if r.Known {
			s.pattern.Fprintln(out, r.Pattern)
		} else {
			s.unknown.Fprintln(out, "<unknown>")
		}

		s.label.Fprint(out, "Samples: ")
		fmt.Fprintln(out, r.Samples)

		s.label.Fprint(out, "Shapes:  ")
		if r.Collapsed {
			fmt.Fprintf(out, "%d (collapsed)\n", r.Streams)
		} else {
			fmt.Fprintln(out, r.Streams)
		}
		for _, shape := range r.Shapes {
			fmt.Fprint(out, "  ")
			s.shape.Fprintf(out, "%-20s", shape.Key)
			fmt.Fprintf(out, " %d\n", shape.Count)
		}
	}
	return nil
}
