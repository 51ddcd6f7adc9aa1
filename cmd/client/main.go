package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sultan0alshami/wathiq-sub001/internal/client/cli"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/config"
	"github.com/sultan0alshami/wathiq-sub001/internal/logging"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(cfg.LogLevel, os.Stderr)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
