package cli

import (
	"context"

	"github.com/cybertec-postgresql/orasplit/internal/logger"
	"github.com/cybertec-postgresql/orasplit/internal/watch"
)

// Watch lints paths once, then again for every batch of changed scripts
// until ctx is cancelled.
func Watch(ctx context.Context, config *Config, paths []string, fix bool) (int, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	if code, err := Lint(ctx, config, paths, fix); code == 2 {
		return code, err
	} else if err != nil {
		logger.Error("%v", err)
	}

	w := watch.New(paths, config.Extensions, func(ctx context.Context, changed []string) error {
		_, err := Lint(ctx, config, changed, fix)
		return err
	})

	logger.Info("Watching %v for changes, press Ctrl+C to stop", paths)
	if err := w.Run(ctx); err != nil {
		return 1, err
	}
	return 0, nil
}
