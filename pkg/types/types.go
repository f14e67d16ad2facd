package types

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cybertec-postgresql/orasplit/internal/errors"
)

// Config holds runtime configuration combining defaults, the config file,
// environment variables and flags
type Config struct {
	// Input
	Extensions []string `koanf:"extensions"` // Script extensions scanned in directories

	// Execution
	Parallelism int           `koanf:"parallel"` // Max concurrent scripts (1 = sequential)
	Timeout     time.Duration `koanf:"timeout"`  // Overall deadline, 0 = none

	// Output
	Format  string `koanf:"format"` // table or json
	Output  string `koanf:"output"` // File path, "-" for stdout
	Verbose bool   `koanf:"verbose"`

	// Lint rule settings keyed by rule ID
	Lint LintConfig `koanf:"lint"`

	// PostgreSQL catalog used by the load command
	ConnectionString string   `koanf:"connection"` // Overrides PG when set
	PG               PGConfig `koanf:"pg"`
}

// PGConfig describes the catalog database when no connection string is given
type PGConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`
	Schema   string `koanf:"schema"` // Schema holding the catalog tables
}

// LintConfig holds per-rule settings: enabled, severity and rule options
type LintConfig struct {
	Rules map[string]map[string]any `koanf:"rules"`
}

// Validate checks the configuration for values no command can work with
func (c *Config) Validate() error {
	if c.Parallelism < 1 {
		return errors.NewConfigError("parallel", c.Parallelism, "must be at least 1")
	}
	if c.Timeout < 0 {
		return errors.NewConfigError("timeout", c.Timeout, "must not be negative")
	}
	switch c.Format {
	case "table", "json":
	default:
		return errors.NewConfigError("format", c.Format, "must be table or json")
	}
	if len(c.Extensions) == 0 {
		return errors.NewConfigError("extensions", c.Extensions, "at least one extension is required")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return errors.NewConfigError("extensions", ext, "extensions must start with a dot")
		}
	}
	if c.ConnectionString == "" && (c.PG.Port < 1 || c.PG.Port > 65535) {
		return errors.NewConfigError("pg.port", c.PG.Port, "must be between 1 and 65535")
	}
	return nil
}

// ConnString returns the connection string for the catalog database.
// An explicit connection string wins over the PG fields.
func (c *Config) ConnString() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.PG.Host, strconv.Itoa(c.PG.Port)),
		Path:   "/" + c.PG.Database,
	}
	if c.PG.User != "" {
		if c.PG.Password != "" {
			u.User = url.UserPassword(c.PG.User, c.PG.Password)
		} else {
			u.User = url.User(c.PG.User)
		}
	}
	return u.String()
}
