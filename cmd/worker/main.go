package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-pets-api/internal/app/api"
	petactivities "github.com/Apurer/go-gin-pets-api/internal/platform/temporal/activities/pets"
	petworkflows "github.com/Apurer/go-gin-pets-api/internal/platform/temporal/workflows/pets"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "petsworker",
	Short:         "Temporal worker executing pet creation workflows",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := api.LoadConfig(configPath)
		if err != nil {
			return err
		}
		return runWorker(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file; environment variables override it")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalf("petsworker: %v", err)
	}
}

func runWorker(ctx context.Context, cfg api.Config) error {
	// the worker has no HTTP listener to expose /metrics on
	cfg.MetricsEnabled = false
	instruments, flush, err := api.InitObservability(ctx, "pets-worker", cfg)
	if err != nil {
		return err
	}
	defer flush()
	logger := instruments.Logger

	petService, shared, cleanup := api.BuildPetService(ctx, cfg, instruments)
	defer cleanup()
	if !shared {
		// the API creates pets inline in this case, so nothing would reach this worker's store
		logger.Error("pets worker needs PostgreSQL; set POSTGRES_DSN to a reachable database")
		return errors.New("pets worker requires a shared PostgreSQL store")
	}
	petActivities := petactivities.NewActivities(petService)

	temporalClient, err := api.ConnectTemporalClient(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		return err
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, petworkflows.PetCreationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(petworkflows.PetCreationWorkflow, workflow.RegisterOptions{Name: petworkflows.PetCreationWorkflowName})
	w.RegisterActivityWithOptions(petActivities.CreatePet, activity.RegisterOptions{Name: petactivities.CreatePetActivityName})

	interrupt := make(chan interface{})
	go func() {
		<-ctx.Done()
		close(interrupt)
	}()
	logger.Info("worker listening", slog.String("taskQueue", petworkflows.PetCreationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(interrupt); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Temporal worker stopped")
	return nil
}
