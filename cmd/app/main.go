package main

import (
	"context"
	"log"

	"uniform-store/internal/adapters/cli"
	"uniform-store/internal/app"
	"uniform-store/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	open := func(ctx context.Context) (app.ApplicationService, error) {
		store, err := app.OpenStore(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return app.NewAppService(store, logger), nil
	}
	cli.Execute(cfg, logger, open)
}
