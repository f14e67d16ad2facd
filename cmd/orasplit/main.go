package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cybertec-postgresql/orasplit/internal/cli"
	"github.com/cybertec-postgresql/orasplit/internal/errors"
	"github.com/cybertec-postgresql/orasplit/internal/logger"
	urfavecli "github.com/urfave/cli/v3"
)

const version = "1.0.0"

// exitError carries a non-zero exit code out of a command action
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func main() {
	app := &urfavecli.Command{
		Name:    "orasplit",
		Usage:   "Split Oracle SQL*Plus scripts, parse dynamic SQL and lint terminators",
		Version: version,
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:  "config",
				Usage: "Config file (default .orasplit.yaml in the working directory)",
			},
			&urfavecli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug output",
			},
			&urfavecli.IntFlag{
				Name:  "parallel",
				Usage: "Maximum concurrent scripts (1 = sequential)",
			},
			&urfavecli.DurationFlag{
				Name:  "timeout",
				Usage: "Overall deadline (0 = none)",
			},
			&urfavecli.StringFlag{
				Name:  "format",
				Usage: "Output format (table or json)",
			},
			&urfavecli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (use - for stdout)",
			},
		},
		Commands: []*urfavecli.Command{
			{
				Name:      "split",
				Usage:     "Segment scripts on \"/\" lines and list their statements",
				ArgsUsage: "[path...]",
				Action:    splitCommand,
				Flags: []urfavecli.Flag{
					&urfavecli.StringFlag{
						Name:  "kind",
						Usage: "Only list statements of this kind (create_unit, anonymous_block, simple_statement, unclassified)",
					},
				},
			},
			{
				Name:      "dynsql",
				Usage:     "List EXECUTE IMMEDIATE clauses with their INTO/USING/RETURNING parts",
				ArgsUsage: "[path...]",
				Action:    pathsCommand(cli.DynSQL),
			},
			{
				Name:      "lint",
				Usage:     "Check terminator placement",
				ArgsUsage: "[path...]",
				Action:    lintCommand,
				Flags: []urfavecli.Flag{
					&urfavecli.BoolFlag{
						Name:  "fix",
						Usage: "Rewrite files with the suggested fixes",
					},
					&urfavecli.BoolFlag{
						Name:  "watch",
						Usage: "Lint again whenever a script changes",
					},
				},
			},
			{
				Name:      "load",
				Usage:     "Store parse and lint results in a PostgreSQL catalog",
				ArgsUsage: "[path...]",
				Action:    pathsCommand(cli.Load),
				Flags: []urfavecli.Flag{
					&urfavecli.StringFlag{
						Name:    "connection",
						Aliases: []string{"c"},
						Usage:   "PostgreSQL connection string (URI or key=value format)",
					},
				},
			},
			{
				Name:   "rules",
				Usage:  "List lint rules",
				Action: rulesCommand,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.Run(ctx, os.Args)
	stop()
	if err == nil {
		return
	}

	code := 1
	var exitErr *exitError
	if stderrors.As(err, &exitErr) {
		code = exitErr.code
		err = exitErr.err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}

// loadConfig resolves the configuration for cmd: file, environment, then flags
func loadConfig(cmd *urfavecli.Command) (*cli.Config, error) {
	config, err := cli.LoadConfig(cmd.String("config"))
	if err != nil {
		return nil, &exitError{code: 2, err: err}
	}

	cli.ApplyFlagsToConfig(config, cmd.String("connection"), cmd.Duration("timeout"),
		cmd.Int("parallel"), cmd.String("format"), cmd.String("output"), cmd.Bool("verbose"))

	if err := config.Validate(); err != nil {
		return nil, &exitError{code: 2, err: err}
	}

	logger.SetVerbose(config.Verbose)
	return config, nil
}

// exit turns a command result into the process exit status
func exit(code int, err error) error {
	var configErr *errors.ConfigError
	if stderrors.As(err, &configErr) {
		code = 2
	}
	if code == 0 && err == nil {
		return nil
	}
	if code == 0 {
		code = 1
	}
	return &exitError{code: code, err: err}
}

// pathsCommand adapts a cli function taking script paths to an action
func pathsCommand(fn func(context.Context, *cli.Config, []string) (int, error)) urfavecli.ActionFunc {
	return func(ctx context.Context, cmd *urfavecli.Command) error {
		config, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return exit(fn(ctx, config, cmd.Args().Slice()))
	}
}

// splitCommand handles the 'orasplit split' command
func splitCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return exit(cli.SplitByKind(ctx, config, cmd.Args().Slice(), cmd.String("kind")))
}

// lintCommand handles the 'orasplit lint' command
func lintCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	paths := cmd.Args().Slice()
	if cmd.Bool("watch") {
		return exit(cli.Watch(ctx, config, paths, cmd.Bool("fix")))
	}
	return exit(cli.Lint(ctx, config, paths, cmd.Bool("fix")))
}

// rulesCommand handles the 'orasplit rules' command
func rulesCommand(_ context.Context, cmd *urfavecli.Command) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return exit(0, cli.Rules(config))
}
