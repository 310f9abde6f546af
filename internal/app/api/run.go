package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	"github.com/olamileke/vendora/internal/clients/http/mailer"
	"github.com/olamileke/vendora/internal/clients/http/rest"
	inventorymemory "github.com/olamileke/vendora/internal/domains/inventory/adapters/memory"
	inventorypostgres "github.com/olamileke/vendora/internal/domains/inventory/adapters/persistence/postgres"
	inventoryports "github.com/olamileke/vendora/internal/domains/inventory/ports"
	orderscache "github.com/olamileke/vendora/internal/domains/orders/adapters/cache"
	ordershttp "github.com/olamileke/vendora/internal/domains/orders/adapters/http"
	ordersmemory "github.com/olamileke/vendora/internal/domains/orders/adapters/memory"
	ordersobs "github.com/olamileke/vendora/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/olamileke/vendora/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/olamileke/vendora/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/olamileke/vendora/internal/domains/orders/application"
	ordersports "github.com/olamileke/vendora/internal/domains/orders/ports"
	paymentshttp "github.com/olamileke/vendora/internal/domains/payments/adapters/http"
	"github.com/olamileke/vendora/internal/domains/payments/adapters/providers/monnify"
	"github.com/olamileke/vendora/internal/domains/payments/adapters/providers/opay"
	"github.com/olamileke/vendora/internal/domains/payments/adapters/providers/paystack"
	paymentsapp "github.com/olamileke/vendora/internal/domains/payments/application"
	paymentsdomain "github.com/olamileke/vendora/internal/domains/payments/domain"
	shippingmemory "github.com/olamileke/vendora/internal/domains/shipping/adapters/memory"
	shippingpostgres "github.com/olamileke/vendora/internal/domains/shipping/adapters/persistence/postgres"
	shippingports "github.com/olamileke/vendora/internal/domains/shipping/ports"
	"github.com/olamileke/vendora/internal/events/kafka"
	platformmigrations "github.com/olamileke/vendora/internal/platform/migrations"
	platformobservability "github.com/olamileke/vendora/internal/platform/observability"
	platformpostgres "github.com/olamileke/vendora/internal/platform/postgres"
	platformredis "github.com/olamileke/vendora/internal/platform/redis"
)

// Run boots the Vendora HTTP API with observability, repositories,
// payment providers, and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "vendora-api"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	orderRepo, inventory, shipping, cleanupStorage := buildStorage(ctx, cfg, logger)
	defer cleanupStorage()

	if redisClient, cleanupRedis := platformredis.ConnectFromEnv(ctx, logger); redisClient != nil {
		defer cleanupRedis()
		orderRepo = orderscache.NewRepository(orderRepo, redisClient, logger)
	}

	orderOpts := []ordersapp.Option{
		ordersapp.WithLogger(logger),
		ordersapp.WithNumberPrefix(cfg.OrderNumberPrefix),
	}

	notifier, cleanupNotifier := buildNotifier(cfg, instruments)
	defer cleanupNotifier()
	if notifier != nil {
		orderOpts = append(orderOpts, ordersapp.WithNotifier(notifier))
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()
		orderOpts = append(orderOpts, ordersapp.WithEventPublisher(producer))
		logger.Info("kafka order events enabled", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	coreOrderService := ordersapp.NewService(orderRepo, inventory, shipping, orderOpts...)
	orderService := ordersobs.New(
		coreOrderService,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	registry := buildPaymentRegistry(cfg, logger)
	paymentService := paymentsapp.NewService(registry, orderService, logger,
		paymentsapp.WithCallbackURL(cfg.PaymentCallbackURL))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	v1 := router.Group("/api/v1")
	ordershttp.NewHandler(orderService).Register(v1)
	paymentshttp.NewHandler(paymentService).Register(v1)

	addr := ":" + cfg.Port
	logger.Info("Vendora API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("Vendora API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// buildStorage wires the Postgres-backed repositories, falling back to the
// in-memory fakes when no database is reachable.
func buildStorage(ctx context.Context, cfg Config, logger *slog.Logger) (ordersports.Repository, inventoryports.Accessor, shippingports.Repository, func()) {
	memoryFallback := func() (ordersports.Repository, inventoryports.Accessor, shippingports.Repository, func()) {
		accessor := inventorymemory.NewAccessor()
		return ordersmemory.NewRepository(accessor), accessor, shippingmemory.NewRepository(), func() {}
	}

	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return memoryFallback()
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		return memoryFallback()
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to in-memory repositories", slog.String("error", err.Error()))
		return memoryFallback()
	}
	if err := platformmigrations.Run(db); err != nil {
		logger.Error("failed to run migrations", slog.String("error", err.Error()))
		_ = sqlDB.Close()
		return memoryFallback()
	}
	logger.Info("repositories configured with postgres")
	return orderspostgres.NewRepository(db),
		inventorypostgres.NewAccessor(db),
		shippingpostgres.NewRepository(db),
		func() { _ = sqlDB.Close() }
}

// buildNotifier picks the confirmation delivery path: durable Temporal
// workflows when a cluster is reachable, an inline HTTP call otherwise,
// nothing when no notification service is configured.
func buildNotifier(cfg Config, instruments *platformobservability.Instruments) (ordersports.Notifier, func()) {
	logger := instruments.Logger
	if cfg.NotifyBaseURL == "" {
		logger.Warn("NOTIFY_BASE_URL not set, order confirmations disabled")
		return nil, func() {}
	}

	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal unavailable, sending confirmations inline", slog.String("error", err.Error()))
	} else {
		logger.Info("Temporal confirmation workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
		return ordersworkflows.NewTemporalNotifications(temporalClient), temporalClient.Close
	}

	mailerClient, err := mailer.NewClient(cfg.NotifyBaseURL, nil)
	if err != nil {
		logger.Warn("failed to build mailer client, order confirmations disabled", slog.String("error", err.Error()))
		return nil, func() {}
	}
	return ordersworkflows.NewInlineNotifications(mailerClient), func() {}
}

// buildPaymentRegistry registers every provider whose credentials are
// present. A partially configured registry still serves; requests for the
// missing providers fail with a 422 instead of at boot.
func buildPaymentRegistry(cfg Config, logger *slog.Logger) *paymentsapp.Registry {
	registry := paymentsapp.NewRegistry()
	httpClient := &http.Client{Timeout: 15 * time.Second}

	if gateway, err := buildPaystack(cfg.Paystack, httpClient); err != nil {
		logger.Warn("paystack not configured", slog.String("error", err.Error()))
	} else {
		registry.Register(paymentsdomain.ProviderPaystack, gateway, paystack.NewWebhook(cfg.Paystack.SecretKey))
	}
	if gateway, err := buildMonnify(cfg.Monnify, httpClient); err != nil {
		logger.Warn("monnify not configured", slog.String("error", err.Error()))
	} else {
		registry.Register(paymentsdomain.ProviderMonnify, gateway, monnify.NewWebhook(cfg.Monnify.SecretKey))
	}
	if gateway, err := buildOPay(cfg.OPay, httpClient); err != nil {
		logger.Warn("opay not configured", slog.String("error", err.Error()))
	} else {
		registry.Register(paymentsdomain.ProviderOPay, gateway, opay.NewWebhook(cfg.OPay.PrivateKey))
	}

	if err := registry.Validate(); err != nil {
		logger.Warn("payment registry incomplete", slog.String("error", err.Error()))
	}
	return registry
}

func buildPaystack(cfg PaystackConfig, httpClient *http.Client) (*paystack.Gateway, error) {
	restClient, err := rest.New(cfg.BaseURL, httpClient)
	if err != nil {
		return nil, err
	}
	return paystack.NewGateway(restClient, cfg.SecretKey)
}

func buildMonnify(cfg MonnifyConfig, httpClient *http.Client) (*monnify.Gateway, error) {
	restClient, err := rest.New(cfg.BaseURL, httpClient)
	if err != nil {
		return nil, err
	}
	return monnify.NewGateway(restClient, cfg.APIKey, cfg.SecretKey, cfg.ContractCode)
}

func buildOPay(cfg OPayConfig, httpClient *http.Client) (*opay.Gateway, error) {
	restClient, err := rest.New(cfg.BaseURL, httpClient)
	if err != nil {
		return nil, err
	}
	return opay.NewGateway(restClient, cfg.PublicKey, cfg.MerchantID)
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
