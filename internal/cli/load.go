package cli

import (
	"context"
	"fmt"

	"github.com/cybertec-postgresql/orasplit/internal/database"
	"github.com/cybertec-postgresql/orasplit/internal/logger"
	"github.com/cybertec-postgresql/orasplit/internal/runner"
	"github.com/cybertec-postgresql/orasplit/internal/store"
)

// Load parses and lints scripts and publishes the results into the
// PostgreSQL catalog.
func Load(ctx context.Context, config *Config, paths []string) (int, error) {
	analyzer, err := NewAnalyzer(config)
	if err != nil {
		return 2, err
	}

	runs, err := process(ctx, config, paths, analyzer)
	if err != nil {
		return 1, err
	}
	if len(runs) == 0 {
		return 0, nil
	}

	pool, err := database.NewPool(ctx, config)
	if err != nil {
		return 1, err
	}
	defer pool.Close()

	st := store.New(pool, config.PG.Schema)
	if err := st.EnsureSchema(ctx); err != nil {
		return 1, err
	}

	loaded := 0
	for _, run := range runs {
		if run.Status != runner.RunDone {
			logger.Error("skipping %s: %v", run.File.Path, run.Error)
			continue
		}
		if _, err := st.SaveScript(ctx, run.Script, run.Lint); err != nil {
			return 1, err
		}
		loaded++
	}

	summaries, err := st.ListScripts(ctx)
	if err != nil {
		return 1, err
	}
	for _, s := range summaries {
		logger.Debug("%s: %d statements, %d dynamic SQL, %d diagnostics", s.Path, s.Statements, s.DynamicSQL, s.Diagnostics)
	}
	logger.Info("Loaded %d script(s) into schema %s (catalog holds %d)", loaded, config.PG.Schema, len(summaries))

	if loaded != len(runs) {
		return 1, fmt.Errorf("%d script(s) could not be loaded", len(runs)-loaded)
	}
	return runner.SummarizeRuns(runs).ExitCode(), nil
}
