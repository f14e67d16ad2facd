package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/cybertec-postgresql/orasplit/internal/lint"
)

type ruleInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Group       string   `json:"group"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	ConfigKeys  []string `json:"config_keys,omitempty"`
}

// FormatRules writes the rule catalog as a table or JSON
func FormatRules(rules []lint.RuleDef, format FormatType, w io.Writer) error {
	infos := make([]ruleInfo, len(rules))
	for i, r := range rules {
		infos[i] = ruleInfo{
			ID:          r.ID,
			Name:        r.Name,
			Group:       r.Group,
			Severity:    r.Severity.String(),
			Description: r.Description,
			ConfigKeys:  r.ConfigKeys,
		}
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal rules to JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatTable:
		t := newTable(table.Row{"ID", "Name", "Severity", "Options", "Description"})
		for _, r := range infos {
			t.AppendRow(table.Row{r.ID, r.Name, r.Severity, strings.Join(r.ConfigKeys, ", "), r.Description})
		}
		t.SetOutputMirror(w)
		t.Render()
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: table, json)", format)
	}
}
