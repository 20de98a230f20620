package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hotelier/hotelier-server/internal/app"
	"github.com/hotelier/hotelier-server/internal/config"
	"github.com/hotelier/hotelier-server/internal/log"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:          "hotelier-server",
		Short:        "Hotel review platform server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	bootstrap := log.New("info")
	cfg, resolvedPath, err := config.Load(bootstrap, configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := log.New(cfg.LogLevel)
	logger.Info().Str("config", resolvedPath).Msg("configuration loaded")

	application, err := app.New(&cfg, logger)
	if err != nil {
		return fmt.Errorf("init application: %w", err)
	}

	logger.Info().Str("tcp_addr", cfg.TCPAddr).Str("http_addr", cfg.HTTPAddr).
		Msg("starting hotelier server")
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
