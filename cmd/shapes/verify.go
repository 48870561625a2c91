package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/praetorian-inc/shapes/pkg/pattern"
	"github.com/spf13/cobra"
)

// errBelowConfidence is returned when any column misses the confidence floor.
var errBelowConfidence = errors.New("below confidence floor")

var (
	verifyPattern    string
	verifyConfidence int
	verifyValues     bool
	verifyCSV        bool
	verifyHeader     bool
	verifyFormat     string
	verifyColor      string
)

// valueMiss is a raw value the pattern rejects.
type valueMiss struct {
	Value string `json:"value" yaml:"value"`
	Count int64  `json:"count" yaml:"count"`
}

// verifyReport is the outcome of checking a pattern against one column.
type verifyReport struct {
	Column     string      `json:"column" yaml:"column"`
	Pattern    string      `json:"pattern" yaml:"pattern"`
	Confidence int         `json:"confidence" yaml:"confidence"`
	Samples    int64       `json:"samples" yaml:"samples"`
	Matching   int64       `json:"matching" yaml:"matching"`
	Passed     bool        `json:"passed" yaml:"passed"`
	Misses     []valueMiss `json:"misses,omitempty" yaml:"misses,omitempty"`
}

var verifyCmd = &cobra.Command{
	Use:   "verify --pattern <regex> [file]",
	Short: "Verify a pattern against a column of values",
	Long: `Profile the input and count the values the pattern accepts. The count is 0 when
more than (100 - confidence) percent of values are rejected. With --values every
distinct raw value is also matched directly and rejected values are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyPattern, "pattern", "p", "", "Pattern to verify (required)")
	verifyCmd.Flags().IntVar(&verifyConfidence, "confidence", 95, "Percentage of values that must match (0-100)")
	verifyCmd.Flags().BoolVar(&verifyValues, "values", false, "Match every raw value and list the misses")
	verifyCmd.Flags().BoolVar(&verifyCSV, "csv", false, "Treat input as CSV and verify every column")
	verifyCmd.Flags().BoolVar(&verifyHeader, "header", false, "First CSV record names the columns")
	verifyCmd.Flags().StringVar(&verifyFormat, "format", "human", "Output format: human, json, yaml")
	verifyCmd.Flags().StringVar(&verifyColor, "color", "auto", "Color output: auto, always, never")
	_ = verifyCmd.MarkFlagRequired("pattern")
}

func runVerify(cmd *cobra.Command, args []string) error {
	if verifyPattern == "" {
		return fmt.Errorf("--pattern is required")
	}

	var raw *pattern.Pattern
	if verifyValues {
		p, err := pattern.Compile(verifyPattern)
		if err != nil {
			return err
		}
		raw = p
	}

	in, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	cols, err := readColumns(in, verifyCSV, verifyHeader)
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

	reports := make([]verifyReport, len(cols))
	failed := 0
	for i, p := range profiles {
		n, err := p.CountMatching(verifyPattern, verifyConfidence)
		if err != nil {
			return fmt.Errorf("verifying column %s: %w", cols[i].name, err)
		}
		r := verifyReport{
			Column:     cols[i].name,
			Pattern:    verifyPattern,
			Confidence: verifyConfidence,
			Samples:    p.SamplesSeen(),
			Matching:   n,
		}
		r.Passed = r.Samples == 0 || r.Matching*100 >= r.Samples*int64(verifyConfidence)
		if raw != nil {
			misses, err := rawMisses(raw, cols[i])
			if err != nil {
				return fmt.Errorf("matching column %s: %w", cols[i].name, err)
			}
			r.Misses = misses
		}
		if !r.Passed {
			failed++
		}
		reports[i] = r
	}

	if verifyFormat == "human" {
		enabled, err := resolveColor(verifyColor)
		if err != nil {
			return err
		}
		outputVerifyHuman(cmd.OutOrStdout(), reports, newStyles(enabled))
	} else if err := writeStructured(cmd.OutOrStdout(), verifyFormat, reports); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d columns %w", failed, len(reports), errBelowConfidence)
	}
	return nil
}

// rawMisses matches every distinct value of col against p.
func rawMisses(p *pattern.Pattern, col *column) ([]valueMiss, error) {
	var misses []valueMiss
	for _, v := range col.order {
		ok, err := p.MatchString(v)
		if err != nil {
			return nil, err
		}
		if !ok {
			misses = append(misses, valueMiss{Value: v, Count: col.counts[v]})
		}
	}
	return misses, nil
}

func outputVerifyHuman(out io.Writer, reports []verifyReport, s *styles) {
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(out)
		}
		s.heading.Fprintf(out, "Column: %s\n", r.Column)

		s.label.Fprint(out, "Pattern:  ")
		s.pattern.Fprintln(out, r.Pattern)

		s.label.Fprint(out, "Matching: ")
		fmt.Fprintf(out, "%d of %d (floor %d%%) ", r.Matching, r.Samples, r.Confidence)
		if r.Passed {
			s.pattern.Fprintln(out, "PASS")
		} else {
			s.miss.Fprintln(out, "FAIL")
		}

		if len(r.Misses) > 0 {
			s.label.Fprintln(out, "Misses:")
			for _, m := range r.Misses {
				fmt.Fprint(out, "  ")
				s.miss.Fprintf(out, "%-20s", m.Value)
				fmt.Fprintf(out, " %d\n", m.Count)
			}
		}
	}
}
