package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONReporter formats reports as JSON
type JSONReporter struct{}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{}
}

// Format formats the report as JSON and writes to the writer
func (r *JSONReporter) Format(rep *Report, writer io.Writer) error {
	data, err := r.FormatString(rep)
	if err != nil {
		return err
	}
	if _, err = io.WriteString(writer, data+"\n"); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

// FormatString returns the report as a JSON string
func (r *JSONReporter) FormatString(rep *Report) (string, error) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	return string(data), nil
}

// Name returns the name of this reporter
func (r *JSONReporter) Name() string {
	return "json"
}
