package main

import (
	"log"

	"go.uber.org/fx"

	"github.com/pageza/recipebox/config"
	"github.com/pageza/recipebox/internal/app"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	fx.New(
		fx.Supply(cfg),
		app.Module,
		fx.StopTimeout(cfg.Server.ShutdownTimeout),
	).Run()
}
