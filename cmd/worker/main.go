package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/olamileke/vendora/internal/clients/http/mailer"
	notifactivities "github.com/olamileke/vendora/internal/durable/temporal/activities/notifications"
	notifworkflows "github.com/olamileke/vendora/internal/durable/temporal/workflows/notifications"
	platformobservability "github.com/olamileke/vendora/internal/platform/observability"
)

func main() {
	ctx := context.Background()
	const serviceName = "vendora-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
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

	notifyBaseURL := strings.TrimSpace(os.Getenv("NOTIFY_BASE_URL"))
	if notifyBaseURL == "" {
		logger.Error("NOTIFY_BASE_URL is required for the notification worker")
		os.Exit(1)
	}
	mailerClient, err := mailer.NewClient(notifyBaseURL, nil)
	if err != nil {
		logger.Error("failed to build mailer client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	activities := notifactivities.NewActivities(mailerClient)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, notifworkflows.OrderConfirmationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(notifworkflows.OrderConfirmationWorkflow, workflow.RegisterOptions{Name: notifworkflows.OrderConfirmationWorkflowName})
	w.RegisterActivityWithOptions(activities.SendOrderConfirmation, activity.RegisterOptions{Name: notifactivities.SendOrderConfirmationActivityName})

	logger.Info("worker listening", slog.String("taskQueue", notifworkflows.OrderConfirmationTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
