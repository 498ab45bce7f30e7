package ui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// OutputFormat selects how command results are printed.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// ParseOutputFormat validates a --output value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case "":
		return OutputText, nil
	case OutputText, OutputJSON, OutputYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// AddOutputFlag adds --output to a command.
func AddOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", string(OutputText), "Output format: text, json or yaml")
}

// GetOutputFormat reads --output. Commands without the flag print text.
func GetOutputFormat(cmd *cobra.Command) (OutputFormat, error) {
	if cmd.Flags().Lookup("output") == nil {
		return OutputText, nil
	}
	s, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", fmt.Errorf("error parsing output flag: %w", err)
	}
	return ParseOutputFormat(s)
}

// Render writes v to w as JSON or YAML, or calls text for the text format.
// YAML output keeps the JSON attribute names of the API.
func Render(w io.Writer, format OutputFormat, v any, text func()) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		return enc.Close()
	default:
		if text != nil {
			text()
		}
		return nil
	}
}
