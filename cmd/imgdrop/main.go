package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/imgdrop/internal/buildinfo"
	"github.com/dmitrijs2005/imgdrop/internal/cli"
	"github.com/dmitrijs2005/imgdrop/internal/config"
	"github.com/dmitrijs2005/imgdrop/internal/logging"
	"github.com/dmitrijs2005/imgdrop/internal/metrics"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error(ctx, "metrics server stopped", "error", err)
			}
		}()
	}

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error(ctx, "close", "error", err)
		}
	}()

	app.Run(ctx)

}
