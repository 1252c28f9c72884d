package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/caseapi-client/internal/constants"
)

// renderOutput writes data in the selected output format. A --jq expression
// takes precedence over --output and is evaluated against the JSON form of
// data.
func renderOutput(cmd *cobra.Command, data any, headers []string, rows [][]string) error {
	w := cmd.OutOrStdout()

	if expr := viper.GetString("jq"); expr != "" {
		return applyJQ(w, data, expr)
	}

	switch format := viper.GetString(keyOutput); format {
	case constants.FormatJSON:
		return writeJSON(w, data)
	case constants.FormatYAML:
		return writeYAML(w, data)
	case constants.FormatTable, "":
		return writeTable(w, headers, rows)
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, format)
	}
}

func isTableOutput() bool {
	format := viper.GetString(keyOutput)

	return viper.GetString("jq") == "" && (format == constants.FormatTable || format == "")
}

// ValidateOutputFormat rejects formats other than table, json and yaml. An
// empty format means table.
func ValidateOutputFormat(format string) error {
	switch format {
	case "", constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %s (use table, json or yaml)", constants.ErrInvalidOutputFormat, format)
	}
}

func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))
	encoder.SetEscapeHTML(false)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func writeYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	defer func() { _ = encoder.Close() }()

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No results found")

		return err
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}

	table := tablewriter.NewWriter(w)
	table.Header(header...)

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = truncate(cell)
		}

		_ = table.Append(cells)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// applyJQ runs a jq expression against data and prints each result as JSON,
// one per line.
func applyJQ(w io.Writer, data any, expr string) error {
	query, err := gojq.Parse(expr)
	if err != nil {
		return fmt.Errorf("invalid jq expression: %w", err)
	}

	// gojq only understands plain maps, slices and scalars.
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	var input any

	err = json.Unmarshal(raw, &input)
	if err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)

	iter := query.Run(input)

	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}

		if err, isErr := v.(error); isErr {
			return fmt.Errorf("jq: %w", err)
		}

		err = encoder.Encode(v)
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	}
}
