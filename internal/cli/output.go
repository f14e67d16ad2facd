package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/cybertec-postgresql/orasplit/internal/logger"
	"github.com/cybertec-postgresql/orasplit/internal/report"
)

// nopCloser keeps stdout open after a report is written
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns stdout for "-" or "", otherwise creates the file
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// writeReport formats rep to the configured output
func writeReport(config *Config, rep *report.Report) error {
	if !report.ValidFormat(config.Format) {
		return fmt.Errorf("unsupported format: %s (supported: %v)", config.Format, report.SupportedFormats())
	}

	w, err := openOutput(config.Output)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := report.FormatToWriter(rep, report.FormatType(config.Format), w); err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}

	if config.Output != "-" && config.Output != "" {
		logger.Info("Report written to %s", config.Output)
	}
	return nil
}
