package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/iudanet/itemsync/internal/server"
	"github.com/iudanet/itemsync/internal/server/config"
	pkgconfig "github.com/iudanet/itemsync/pkg/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewDefaultConfig()
	cfg.JWT.Secret = cmd.String("jwt-secret")

	configPath := cmd.String("config")
	if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("config_file", configPath),
		slog.String("http_address", cfg.HTTP.Address()),
		slog.String("database", cfg.Database.Path),
		slog.Bool("rate_limit", cfg.RateLimit.Enabled()),
		slog.String("log_level", cfg.LogLevel.String()))

	srv, err := server.New(ctx, cfg, server.WithLogger(logger), server.WithVersion(Version))
	if err != nil {
		return fmt.Errorf("failed to init server: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("failed to close server", slog.Any("error", err))
		}
	}()

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server run error: %w", err)
	}
	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:   "itemsync-server",
		Usage:  "Reference inventory server: REST API, realtime hub and sqlite storage",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/server.yaml",
				Value:       "config/server.yaml",
				Sources:     cli.EnvVars("ITEMSYNC_SERVER_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "jwt-secret",
				Usage:   "Secret for signing access tokens, overridden by jwt.secret in the config file",
				Sources: cli.EnvVars("ITEMSYNC_JWT_SECRET"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(context.Context, *cli.Command) error {
					printVersion()
					return nil
				},
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("ItemSync Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
