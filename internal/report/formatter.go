package report

import (
	"fmt"
	"io"
)

// Formatter is an interface for report formatters
type Formatter interface {
	// Format formats the report and writes to the writer
	Format(rep *Report, writer io.Writer) error

	// FormatString returns the report as a string
	FormatString(rep *Report) (string, error)

	// Name returns the name of this formatter
	Name() string
}

// FormatType represents supported report formats
type FormatType string

const (
	FormatTable FormatType = "table"
	FormatJSON  FormatType = "json"
)

// GetFormatter returns a formatter for the specified format type
func GetFormatter(format FormatType) (Formatter, error) {
	switch format {
	case FormatTable:
		return NewTableReporter(), nil
	case FormatJSON:
		return NewJSONReporter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: table, json)", format)
	}
}

// FormatToWriter formats the report to a writer using the specified format
func FormatToWriter(rep *Report, format FormatType, writer io.Writer) error {
	formatter, err := GetFormatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(rep, writer)
}

// ValidFormat checks if a format string is valid
func ValidFormat(format string) bool {
	switch FormatType(format) {
	case FormatTable, FormatJSON:
		return true
	default:
		return false
	}
}

// SupportedFormats returns a list of supported format names
func SupportedFormats() []string {
	return []string{string(FormatTable), string(FormatJSON)}
}
