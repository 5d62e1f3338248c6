package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Apurer/go-gin-pets-api/internal/app/api"
)

var configPath string

var (
	rootCmd = &cobra.Command{
		Use:           "petsapi",
		Short:         "Pets catalog HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the pets API until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := api.LoadConfig(configPath)
			if err != nil {
				return err
			}
			return api.Run(cmd.Context(), cfg)
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or widen the PostgreSQL schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := api.LoadConfig(configPath)
			if err != nil {
				return err
			}
			return api.Migrate(cmd.Context(), cfg)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file; environment variables override it")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalf("petsapi: %v", err)
	}
}
