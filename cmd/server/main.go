// Package main - Entry point for the plan-advisor HTTP server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"plan-advisor/api"
	"plan-advisor/internal/config"
	"plan-advisor/internal/logging"
	"plan-advisor/internal/setup"
)

var version = "1.0.0"

func main() {
	cfgPath := flag.String("config", "plan-advisor.yaml", "config file")
	addr := flag.String("addr", "", "server address (overrides config)")
	flag.Parse()

	if err := run(*cfgPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "plan-advisor server: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, addr string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	calc, err := setup.NewCalculator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	server := api.NewServer(calc,
		api.WithLogger(logger.Named("api")),
		api.WithVersion(version),
		api.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
	)
	logger.Info("starting plan-advisor server", zap.String("version", version))
	return server.Run(ctx, cfg.Server)
}
