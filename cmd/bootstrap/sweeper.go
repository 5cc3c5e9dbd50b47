package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"openbook/internal/pkg/config"
	"openbook/internal/usecase/commands"

	"go.uber.org/fx"
)

var SweeperModule = fx.Module("sweeper",
	fx.Invoke(
		StartSweeper,
	),
)

// StartSweeper runs the status sweep on a fixed interval for the
// lifetime of the process. The HTTP sweep endpoint shares the same
// sweeper, so a manual run between ticks is harmless.
func StartSweeper(lc fx.Lifecycle, sweeper commands.StatusSweeper, cfg config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(cfg.Sweep.Interval)
				defer ticker.Stop()

				logger.Info("status sweeper started", "interval", cfg.Sweep.Interval)
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						result, err := sweeper.Sweep(ctx)
						if err != nil {
							logger.Error("status sweep failed", "error", err)
							continue
						}
						if result.Activated > 0 || result.Completed > 0 || result.Failed > 0 {
							logger.Info("status sweep completed",
								"activated", result.Activated,
								"completed", result.Completed,
								"failed", result.Failed)
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}
