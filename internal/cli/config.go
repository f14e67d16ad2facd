package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cybertec-postgresql/orasplit/internal/discovery"
	"github.com/cybertec-postgresql/orasplit/pkg/types"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is an alias for the shared Config type
type Config = types.Config

// EnvPrefix prefixes every environment variable read into the configuration
const EnvPrefix = "ORASPLIT_"

// DefaultConfigFiles are looked up in the working directory when no
// --config flag is given
var DefaultConfigFiles = []string{".orasplit.yaml", ".orasplit.yml"}

// DefaultConfig provides default configuration values
var DefaultConfig = Config{
	Extensions:  discovery.DefaultExtensions,
	Parallelism: 1,
	Timeout:     0,
	Format:      "table",
	Output:      "-",
	Verbose:     false,
	PG: types.PGConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "postgres",
		Schema:   "orasplit",
	},
}

// defaultsMap renders DefaultConfig in koanf key form
func defaultsMap() map[string]any {
	return map[string]any{
		"extensions":  DefaultConfig.Extensions,
		"parallel":    DefaultConfig.Parallelism,
		"timeout":     DefaultConfig.Timeout.String(),
		"format":      DefaultConfig.Format,
		"output":      DefaultConfig.Output,
		"verbose":     DefaultConfig.Verbose,
		"pg.host":     DefaultConfig.PG.Host,
		"pg.port":     DefaultConfig.PG.Port,
		"pg.database": DefaultConfig.PG.Database,
		"pg.schema":   DefaultConfig.PG.Schema,
	}
}

// findConfigFile returns the explicit path if set, otherwise the first
// default config file present in the working directory, or "".
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultConfigFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// LoadConfig builds the configuration from defaults, the config file and
// ORASPLIT_* environment variables, in increasing priority. Flags are
// applied afterwards with ApplyFlagsToConfig.
//
// Environment keys map by lowercasing and turning "__" into a nested
// key: ORASPLIT_PG__HOST sets pg.host.
func LoadConfig(cfgFile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	// A comma separated ORASPLIT_EXTENSIONS arrives as a single element.
	if len(cfg.Extensions) == 1 && strings.Contains(cfg.Extensions[0], ",") {
		cfg.Extensions = splitList(cfg.Extensions[0])
	}
	return &cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ApplyFlagsToConfig applies command-line flag values to configuration.
// Zero values leave the loaded setting alone; verbose can only be turned on.
func ApplyFlagsToConfig(c *Config, connection string, timeout time.Duration,
	parallel int, format, output string, verbose bool) {

	if connection != "" {
		c.ConnectionString = connection
	}
	if timeout != 0 {
		c.Timeout = timeout
	}
	if parallel != 0 {
		c.Parallelism = parallel
	}
	if format != "" {
		c.Format = format
	}
	if output != "" {
		c.Output = output
	}
	if verbose {
		c.Verbose = true
	}
}
