package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fivetwenty-io/hscrm/internal/constants"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	NotAvailable = "N/A"

	defaultJSONIndent = 2
)

// StandardJSONRenderer creates a standard JSON encoder.
func StandardJSONRenderer[T any](data T) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer creates a standard YAML encoder.
func StandardYAMLRenderer[T any](data T) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(defaultJSONIndent)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return nil
}

// outputFormat returns the validated --output value.
func outputFormat() (string, error) {
	format := strings.ToLower(viper.GetString("output"))
	switch format {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, format)
	}
}

// renderOutput writes data in the selected output format, using renderTable
// for the table format.
func renderOutput[T any](data T, renderTable func(T) error) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		return StandardJSONRenderer(data)
	case constants.FormatYAML:
		return StandardYAMLRenderer(data)
	default:
		return renderTable(data)
	}
}

// columnHeader turns a property name into a table heading.
func columnHeader(property string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(property, "_", " "))
}

// recordRow builds one table row: the id followed by the given properties.
func recordRow(record *hscrm.Record, columns []string) []string {
	row := make([]string, 0, len(columns)+1)
	row = append(row, record.ID)

	for _, column := range columns {
		value := record.StringProperty(column)
		if value == "" {
			value = NotAvailable
		}

		row = append(row, value)
	}

	return row
}

// newRecordTable starts a record table with the id and the given columns.
func newRecordTable(columns []string) *tablewriter.Table {
	headers := make([]any, 0, len(columns)+1)
	headers = append(headers, "ID")

	for _, column := range columns {
		headers = append(headers, columnHeader(column))
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(headers...)

	return table
}

// renderRecords renders records as JSON, YAML or a table of the given
// columns.
func renderRecords(records []hscrm.Record, columns []string) error {
	return renderOutput(records, func(records []hscrm.Record) error {
		if len(records) == 0 {
			_, _ = os.Stdout.WriteString("No records found\n")

			return nil
		}

		table := newRecordTable(columns)
		for i := range records {
			_ = table.Append(recordRow(&records[i], columns))
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
}

// renderRecord renders one record with every property as a row.
func renderRecord(record *hscrm.Record) error {
	return renderOutput(record, func(record *hscrm.Record) error {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("ID", record.ID)

		keys := make([]string, 0, len(record.Properties))
		for key := range record.Properties {
			keys = append(keys, key)
		}

		slices.Sort(keys)

		for _, key := range keys {
			_ = table.Append(key, record.StringProperty(key))
		}

		if !record.CreatedAt.IsZero() {
			_ = table.Append("Created", record.CreatedAt.Format(time.RFC3339))
		}

		if !record.UpdatedAt.IsZero() {
			_ = table.Append("Updated", record.UpdatedAt.Format(time.RFC3339))
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
}

// streamRecords walks a paginator and renders every record. Tables are
// filled batch by batch; JSON and YAML need the whole result first.
func streamRecords(ctx context.Context, paginator *hscrm.Paginator[hscrm.Record], columns []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	if format != constants.FormatTable {
		records, err := paginator.All(ctx)
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}

		return renderRecords(records, columns)
	}

	table := newRecordTable(columns)
	total := 0

	for batch, err := range paginator.Batches(ctx) {
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}

		for i := range batch {
			_ = table.Append(recordRow(&batch[i], columns))
		}

		total += len(batch)
	}

	if total == 0 {
		_, _ = os.Stdout.WriteString("No records found\n")

		return nil
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Total: %d records in %d pages\n", total, paginator.PagesFetched())

	return nil
}

// parseProperties turns repeated key=value flags into a property bag.
func parseProperties(pairs []string) (hscrm.Properties, error) {
	properties := make(hscrm.Properties, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")

		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidPropertyFormat, pair)
		}

		properties[key] = value
	}

	return properties, nil
}

// walkFlags are the flags shared by every list-all command.
type walkFlags struct {
	since      string
	property   string
	value      string
	properties []string
	batchSize  int
	after      string
}

func (f *walkFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.since, "since", "", "only records modified after this RFC3339 time")
	cmd.Flags().StringVar(&f.property, "filter-name", "", "watermark property (default hs_lastmodifieddate)")
	cmd.Flags().StringVar(&f.value, "filter-value", "", "watermark value, records must be greater")
	cmd.Flags().StringSliceVar(&f.properties, "property", nil, "properties to return (repeatable)")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", constants.DefaultBatchSize, "records per page")
	cmd.Flags().StringVar(&f.after, "after", "", "paging token to start from")
}

// options converts the flags into walk options. --since is shorthand for a
// last-modified watermark and wins over --filter-name.
func (f *walkFlags) options() (*hscrm.WalkOptions, error) {
	watermark := hscrm.DefaultWatermark()

	switch {
	case f.since != "":
		since, err := time.Parse(time.RFC3339Nano, f.since)
		if err != nil {
			return nil, fmt.Errorf("invalid --since value: %w", err)
		}

		watermark.Value = since
	case f.property != "":
		watermark = hscrm.Watermark{Property: f.property, Value: f.value}
	case f.value != "":
		watermark.Value = f.value
	}

	return &hscrm.WalkOptions{
		Watermark:  watermark,
		Properties: f.properties,
		BatchSize:  f.batchSize,
		After:      f.after,
	}, nil
}

// columnsFor picks the table columns: the requested properties, or the
// record type's defaults.
func columnsFor(requested, defaults []string) []string {
	if len(requested) > 0 {
		return requested
	}

	return defaults
}

// printSuccess reports a completed mutation in the selected output format.
func printSuccess(action, recordType, id string) error {
	result := map[string]string{
		"action": action,
		"type":   recordType,
		"id":     id,
	}

	return renderOutput(result, func(map[string]string) error {
		_, _ = fmt.Fprintf(os.Stdout, "%s %s %s\n", cases.Title(language.English).String(action), recordType, id)

		return nil
	})
}
