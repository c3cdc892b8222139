package main

import (
	"fmt"

	log "github.com/charmbracelet/log"

	"github.com/kreso2/costwise/infra/initializer"
	"github.com/kreso2/costwise/pkg/config"
	"github.com/kreso2/costwise/webapi"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	app := webapi.NewApp(webapi.Services{
		Estimation: deps.Estimation,
		Advisor:    deps.Advisor,
		Exchange:   deps.Exchange,
	}, webapi.Options{RateLimit: cfg.Server.RateLimit})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	deps.Logger.Info("starting server",
		"env", cfg.Env,
		"address", addr,
	)

	return app.Listen(addr)
}
