package lint

import (
	"fmt"
	"strings"

	"github.com/cybertec-postgresql/orasplit/internal/parser"
)

// Config controls which rules are enabled, their severity and options.
type Config struct {
	// DisabledRules contains rule IDs to skip
	DisabledRules map[string]bool

	// SeverityOverrides changes the default severity of rules
	SeverityOverrides map[string]Severity

	// RuleOptions holds the rule-specific settings, keyed by rule ID
	RuleOptions map[string]map[string]any
}

// NewConfig creates a default configuration with all rules enabled.
func NewConfig() *Config {
	return &Config{
		DisabledRules:     make(map[string]bool),
		SeverityOverrides: make(map[string]Severity),
		RuleOptions:       make(map[string]map[string]any),
	}
}

/*
 * ConfigFromSettings builds a Config from the lint.rules section of the
 * configuration file:
 *
 *	lint:
 *	  rules:
 *	    CV06:
 *	      enabled: true
 *	      severity: error
 *	      multiline_newline: true
 *
 * "enabled" and "severity" are consumed here; every other key is passed to
 * the rule as an option.  Rule IDs are case-insensitive.
 */
func ConfigFromSettings(settings map[string]map[string]any) (*Config, error) {
	cfg := NewConfig()
	for id, values := range settings {
		id = strings.ToUpper(id)
		if _, ok := GetByID(id); !ok {
			return nil, fmt.Errorf("unknown lint rule %q", id)
		}
		for key, v := range values {
			switch key {
			case "enabled":
				enabled, ok := parseBool(v)
				if !ok {
					return nil, fmt.Errorf("lint rule %s: enabled must be a boolean", id)
				}
				if !enabled {
					cfg.Disable(id)
				}
			case "severity":
				s, _ := v.(string)
				sev, ok := parser.ParseSeverity(s)
				if !ok {
					return nil, fmt.Errorf("lint rule %s: invalid severity %v", id, v)
				}
				cfg.SetSeverity(id, sev)
			default:
				cfg.SetOption(id, key, v)
			}
		}
	}
	return cfg, nil
}

// IsDisabled returns true if the rule should be skipped.
func (c *Config) IsDisabled(ruleID string) bool {
	if c == nil {
		return false
	}
	return c.DisabledRules[ruleID]
}

// GetSeverity returns the severity for a rule, applying any override.
func (c *Config) GetSeverity(ruleID string, defaultSeverity Severity) Severity {
	if c != nil {
		if sev, ok := c.SeverityOverrides[ruleID]; ok {
			return sev
		}
	}
	return defaultSeverity
}

// GetRuleOptions returns the options configured for a rule (possibly nil).
func (c *Config) GetRuleOptions(ruleID string) map[string]any {
	if c == nil {
		return nil
	}
	return c.RuleOptions[ruleID]
}

// Disable disables a rule by ID.
func (c *Config) Disable(ruleID string) *Config {
	c.DisabledRules[ruleID] = true
	return c
}

// SetSeverity overrides the severity for a rule.
func (c *Config) SetSeverity(ruleID string, severity Severity) *Config {
	c.SeverityOverrides[ruleID] = severity
	return c
}

// SetOption sets a rule-specific option.
func (c *Config) SetOption(ruleID, key string, value any) *Config {
	if c.RuleOptions[ruleID] == nil {
		c.RuleOptions[ruleID] = make(map[string]any)
	}
	c.RuleOptions[ruleID][key] = value
	return c
}

// GetBoolOption extracts a bool option.
func GetBoolOption(opts map[string]any, key string, defaultVal bool) bool {
	if opts == nil {
		return defaultVal
	}
	v, ok := opts[key]
	if !ok {
		return defaultVal
	}
	if b, ok := parseBool(v); ok {
		return b
	}
	return defaultVal
}

// parseBool accepts a bool or its string spelling.
func parseBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		// Values from environment variables arrive as strings.
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "on":
			return true, true
		case "false", "0", "no", "off":
			return false, true
		}
	}
	return false, false
}
