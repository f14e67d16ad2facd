package cli

import (
	"github.com/cybertec-postgresql/orasplit/internal/lint"
	"github.com/cybertec-postgresql/orasplit/internal/report"
)

// Rules lists the registered lint rules
func Rules(config *Config) error {
	w, err := openOutput(config.Output)
	if err != nil {
		return err
	}
	defer w.Close()

	return report.FormatRules(lint.GetAll(), report.FormatType(config.Format), w)
}
