package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// styles holds color formatters for human output
type styles struct {
	heading *color.Color
	label   *color.Color
	pattern *color.Color
	unknown *color.Color
	shape   *color.Color
	miss    *color.Color
}

// newStyles creates color formatters for human output
// enabled=false respects --color never and the NO_COLOR env var
func newStyles(enabled bool) *styles {
	s := &styles{
		heading: color.New(color.Bold, color.FgHiWhite),
		label:   color.New(color.Bold),
		pattern: color.New(color.FgHiGreen),
		unknown: color.New(color.FgYellow),
		shape:   color.New(color.FgHiBlue),
		miss:    color.New(color.FgRed),
	}

	if !enabled {
		s.heading.DisableColor()
		s.label.DisableColor()
		s.pattern.DisableColor()
		s.unknown.DisableColor()
		s.shape.DisableColor()
		s.miss.DisableColor()
	}

	return s
}

// resolveColor decides whether human output is colored for mode
// (auto, always or never).
func resolveColor(mode string) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		// Check if stdout is a TTY and NO_COLOR is not set
		return term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == "", nil
	default:
		return false, fmt.Errorf("unknown color mode: %s", mode)
	}
}

// writeStructured encodes v as json or yaml.
func writeStructured(out io.Writer, format string, v any) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
