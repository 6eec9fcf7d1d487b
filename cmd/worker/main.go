package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/vaccine-portal/internal/app/portal"
	"github.com/Apurer/vaccine-portal/internal/clients/http/backend"
	platformobservability "github.com/Apurer/vaccine-portal/internal/platform/observability"
	submissionactivities "github.com/Apurer/vaccine-portal/internal/platform/temporal/activities/submissions"
	submissionworkflows "github.com/Apurer/vaccine-portal/internal/platform/temporal/workflows/submissions"
)

func main() {
	ctx := context.Background()
	const serviceName = "vaccine-portal-worker"
	cfg, err := portal.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, platformobservability.WithProfile(cfg.Profile))
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backendClient, err := backend.NewClient(cfg.BackendBaseURL,
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to configure backend client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	activities := submissionactivities.NewActivities(backendClient, backendClient)

	temporalClient, err := portal.ConnectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, submissionworkflows.TaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(submissionworkflows.OrderSubmissionWorkflow, workflow.RegisterOptions{Name: submissionworkflows.OrderSubmissionWorkflowName})
	w.RegisterWorkflowWithOptions(submissionworkflows.CapacityRegistrationWorkflow, workflow.RegisterOptions{Name: submissionworkflows.CapacityRegistrationWorkflowName})
	w.RegisterActivityWithOptions(activities.SubmitOrder, activity.RegisterOptions{Name: submissionactivities.SubmitOrderActivityName})
	w.RegisterActivityWithOptions(activities.RegisterCapacity, activity.RegisterOptions{Name: submissionactivities.RegisterCapacityActivityName})

	logger.Info("worker listening",
		slog.String("taskQueue", submissionworkflows.TaskQueue),
		slog.String("namespace", cfg.TemporalNamespace),
		slog.String("backend", cfg.BackendBaseURL))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
