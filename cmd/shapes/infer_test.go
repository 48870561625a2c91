package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// resetInferFlags restores infer flags between tests.
func resetInferFlags(t *testing.T) {
	t.Helper()
	inferCSV = false
	inferHeader = false
	inferFitted = true
	inferFormat = "json"
	inferColor = "never"
	settings = newSettings()
	t.Cleanup(func() { settings = newSettings() })
}

func runInferOn(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(input))
	err := runInfer(cmd, args)
	return buf.String(), err
}

func decodeReports(t *testing.T, output string) []columnReport {
	t.Helper()
	var reports []columnReport
	require.NoError(t, json.Unmarshal([]byte(output), &reports))
	return reports
}

func TestRunInfer_Lines(t *testing.T) {
	resetInferFlags(t)

	output, err := runInferOn(t, "90210\n10001\n\n 02134 \n")
	require.NoError(t, err)

	reports := decodeReports(t, output)
	require.Len(t, reports, 1)
	r := reports[0]
	assert.Equal(t, "value", r.Column)
	assert.True(t, r.Known)
	assert.Equal(t, `\d{5}`, r.Pattern)
	assert.Equal(t, int64(3), r.Samples)
	assert.Equal(t, 1, r.Streams)
	assert.False(t, r.Collapsed)
	require.Len(t, r.Shapes, 1)
	assert.Equal(t, "99999", r.Shapes[0].Key)
	assert.Equal(t, int64(3), r.Shapes[0].Count)
}

func TestRunInfer_CSVWithHeader(t *testing.T) {
	resetInferFlags(t)
	inferCSV = true
	inferHeader = true

	output, err := runInferOn(t, "zip,plate\n90210,AB-123\n10001,XY-999\n")
	require.NoError(t, err)

	reports := decodeReports(t, output)
	require.Len(t, reports, 2)
	assert.Equal(t, "zip", reports[0].Column)
	assert.Equal(t, `\d{5}`, reports[0].Pattern)
	assert.Equal(t, "plate", reports[1].Column)
	assert.Equal(t, `\p{Alpha}{2}-\d{3}`, reports[1].Pattern)
}

func TestRunInfer_CSVWithoutHeader(t *testing.T) {
	resetInferFlags(t)
	inferCSV = true

	output, err := runInferOn(t, "a,1\nb\n")
	require.NoError(t, err)

	reports := decodeReports(t, output)
	require.Len(t, reports, 2)
	assert.Equal(t, "column1", reports[0].Column)
	assert.Equal(t, int64(2), reports[0].Samples)
	assert.Equal(t, "column2", reports[1].Column)
	assert.Equal(t, int64(1), reports[1].Samples)
}

func TestRunInfer_Unknown(t *testing.T) {
	resetInferFlags(t)

	output, err := runInferOn(t, "A-1\n1/2/3\n")
	require.NoError(t, err)

	reports := decodeReports(t, output)
	require.Len(t, reports, 1)
	assert.False(t, reports[0].Known)
	assert.Empty(t, reports[0].Pattern)
	assert.Equal(t, 2, reports[0].Streams)
}

func TestRunInfer_Unfitted(t *testing.T) {
	resetInferFlags(t)
	inferFitted = false

	output, err := runInferOn(t, "A1\nA2\n")
	require.NoError(t, err)
	assert.Equal(t, `\p{Alpha}\d`, decodeReports(t, output)[0].Pattern)
}

func TestRunInfer_YAML(t *testing.T) {
	resetInferFlags(t)
	inferFormat = "yaml"

	output, err := runInferOn(t, "1.5\n-2.25\n")
	require.NoError(t, err)

	var reports []columnReport
	require.NoError(t, yaml.Unmarshal([]byte(output), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, `[+-]?\d*\.?\d+`, reports[0].Pattern)
	assert.Equal(t, int64(2), reports[0].Samples)
}

func TestRunInfer_Human(t *testing.T) {
	resetInferFlags(t)
	inferFormat = "human"

	output, err := runInferOn(t, "90210\n10001\n")
	require.NoError(t, err)

	assert.Contains(t, output, "Column: value")
	assert.Contains(t, output, `Pattern: \d{5}`)
	assert.Contains(t, output, "Samples: 2")
	assert.Contains(t, output, "Shapes:  1")
	assert.Contains(t, output, "99999")
	assert.NotContains(t, output, "\x1b[", "color must be disabled")
}

func TestRunInfer_HumanCollapsed(t *testing.T) {
	resetInferFlags(t)
	inferFormat = "human"
	t.Setenv("SHAPES_CAP", "1")
	settings = newSettings()

	output, err := runInferOn(t, "A\n1\n")
	require.NoError(t, err)

	assert.Contains(t, output, "Pattern: .+")
	assert.Contains(t, output, "(collapsed)")
	assert.Contains(t, output, "ANY")
}

func TestRunInfer_HumanUnknown(t *testing.T) {
	resetInferFlags(t)
	inferFormat = "human"

	output, err := runInferOn(t, "A-1\n1/2/3\n")
	require.NoError(t, err)
	assert.Contains(t, output, "<unknown>")
}

func TestRunInfer_ConfigFile(t *testing.T) {
	resetInferFlags(t)

	path := filepath.Join(t.TempDir(), "shapes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cap: 1\nmax_length: 8\n"), 0o644))
	require.NoError(t, loadConfig(path))
	assert.Equal(t, 1, settings.GetInt("cap"))
	assert.Equal(t, 8, settings.GetInt("max_length"))

	output, err := runInferOn(t, "A\n1\n")
	require.NoError(t, err)
	assert.True(t, decodeReports(t, output)[0].Collapsed)
}

func TestLoadConfig_Missing(t *testing.T) {
	resetInferFlags(t)

	err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunInfer_InputFile(t *testing.T) {
	resetInferFlags(t)

	path := filepath.Join(t.TempDir(), "values.txt")
	require.NoError(t, os.WriteFile(path, []byte("AB\nCD\n"), 0o644))

	output, err := runInferOn(t, "", path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), decodeReports(t, output)[0].Samples)

	_, err = runInferOn(t, "", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestRunInfer_BadOptions(t *testing.T) {
	resetInferFlags(t)
	inferFormat = "xml"
	_, err := runInferOn(t, "1\n")
	assert.ErrorContains(t, err, "unknown output format")

	resetInferFlags(t)
	inferFormat = "human"
	inferColor = "sometimes"
	_, err = runInferOn(t, "1\n")
	assert.ErrorContains(t, err, "unknown color mode")
}

func TestInferCmd_RejectsExtraArgs(t *testing.T) {
	err := inferCmd.Args(inferCmd, []string{"a", "b"})
	assert.Error(t, err)
}
