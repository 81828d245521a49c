package app

import (
	"context"
	"fmt"

	"github.com/carverauto/fleetradar/pkg/aggregate"
	"github.com/carverauto/fleetradar/pkg/config"
	"github.com/carverauto/fleetradar/pkg/core"
	"github.com/carverauto/fleetradar/pkg/core/api"
	"github.com/carverauto/fleetradar/pkg/lifecycle"
	"github.com/carverauto/fleetradar/pkg/models"
	"github.com/carverauto/fleetradar/pkg/version"
)

// Options contains runtime configuration derived from CLI flags.
type Options struct {
	ConfigPath string
}

// Run boots the core service using the provided options: load and
// validate the config, build the inventory engine, and serve the HTTP
// API until the context is canceled or an interrupt arrives.
func Run(ctx context.Context, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var cfg models.CoreServiceConfig

	loader := config.NewConfig(nil)
	if err := loader.LoadAndValidate(ctx, opts.ConfigPath, &cfg); err != nil {
		return fmt.Errorf("failed to load core config: %w", err)
	}

	mainLogger, err := lifecycle.CreateComponentLogger(ctx, "core", cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	server := core.NewServer(mainLogger, core.WithAggregator(aggregate.NewAggregator(
		aggregate.WithLogger(mainLogger),
		aggregate.WithActiveWindow(cfg.ActiveWindowDays),
	)))

	apiServer := api.NewAPIServer(cfg.CORS,
		api.WithLogger(mainLogger),
		api.WithCoreService(server),
		api.WithAPIKey(cfg.APIKey),
		api.WithUploadLimit(cfg.MaxUploadBytes),
		api.WithPageLimits(cfg.DefaultPageSize, cfg.MaxPageSize),
	)

	mainLogger.Info().
		Str("listen_addr", cfg.ListenAddr).
		Str("version", version.GetFullVersion()).
		Msg("Starting fleetradar core service")

	return lifecycle.RunHTTPServer(ctx, &lifecycle.ServerOptions{
		ListenAddr: cfg.ListenAddr,
		Handler:    apiServer,
		Logger:     mainLogger,
	})
}
