package output

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// SequenceSummary is one row of the `sequences list` output.
type SequenceSummary struct {
	Name     string  `yaml:"name"               json:"name"`
	Actions  int     `yaml:"actions"            json:"actions"`
	Duration float64 `yaml:"duration,omitempty" json:"duration,omitempty"`
	Created  string  `yaml:"created,omitempty"  json:"created,omitempty"`
}

// ListResult is the top-level output of the `sequences list` command.
type ListResult struct {
	Sequences []SequenceSummary `yaml:"sequences" json:"sequences"`
}

// PlayResult is the top-level output of the `play` command.
type PlayResult struct {
	Sequence string  `yaml:"sequence"          json:"sequence"`
	Actions  int     `yaml:"actions"           json:"actions"`
	Frames   int     `yaml:"frames,omitempty"  json:"frames,omitempty"`
	Elapsed  float64 `yaml:"elapsed"           json:"elapsed"`
	Output   string  `yaml:"output,omitempty"  json:"output,omitempty"`
}

// DocumentResult is the top-level output of the capture-and-analyze commands.
type DocumentResult struct {
	Name      string   `yaml:"name"                json:"name"`
	Directory string   `yaml:"directory"           json:"directory"`
	Frames    int      `yaml:"frames"              json:"frames"`
	Analyzed  int      `yaml:"analyzed"            json:"analyzed"`
	Failed    []int    `yaml:"failed,omitempty"    json:"failed,omitempty"`
	Warnings  []string `yaml:"warnings,omitempty"  json:"warnings,omitempty"`
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		if PrettyOutput {
			return PrintPrettyJSON(v)
		}
		return PrintJSON(v)
	case FormatYAML:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON serializes v to stdout as compact single-line JSON.
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintPrettyJSON serializes v to stdout as indented JSON.
func PrintPrettyJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintYAML serializes v to stdout as YAML.
func PrintYAML(v interface{}) error {
	enc := yaml.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
