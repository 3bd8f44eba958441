package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vsinha/disruption/pkg/application/services/orchestration"
	"github.com/vsinha/disruption/pkg/infrastructure/config"
	"github.com/vsinha/disruption/pkg/infrastructure/logging"
	"github.com/vsinha/disruption/pkg/infrastructure/metrics"
	"github.com/vsinha/disruption/pkg/interfaces/cli/commands"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("DISRUPTION_CONFIG"), "Path to YAML configuration file")
	flag.Usage = func() {
		_ = commands.Run(context.Background(), nil, config.Default(), nil, os.Stdout, os.Stdin)
	}
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logging.Init("disruption", settings.Logging.Pretty)
	logging.SetLevel(settings.Logging.Level)
	metrics.RegisterDefault()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory := func(ctx context.Context) (*orchestration.Responder, func() error, error) {
		return commands.BuildResponder(ctx, settings)
	}

	runErr := commands.Run(ctx, flag.Args(), settings, factory, os.Stdout, os.Stdin)

	if path := settings.Metrics.TextfilePath; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			logging.Logger.Warn().Err(err).Msg("failed to write metrics")
		}
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}
