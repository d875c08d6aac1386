package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/yonasbekele/serenity-backend/api/routes"
	"github.com/yonasbekele/serenity-backend/internal/auth"
	"github.com/yonasbekele/serenity-backend/internal/bookings"
	"github.com/yonasbekele/serenity-backend/internal/engagement"
	"github.com/yonasbekele/serenity-backend/internal/payments"
	"github.com/yonasbekele/serenity-backend/internal/transactions"
	"github.com/yonasbekele/serenity-backend/internal/users"
	chapawebhook "github.com/yonasbekele/serenity-backend/internal/webhooks/chapa"
	"github.com/yonasbekele/serenity-backend/pkg/amountcipher"
	"github.com/yonasbekele/serenity-backend/pkg/chapa"
	"github.com/yonasbekele/serenity-backend/pkg/config"
	"github.com/yonasbekele/serenity-backend/pkg/db"
	"github.com/yonasbekele/serenity-backend/pkg/logger"
	"github.com/yonasbekele/serenity-backend/pkg/metrics"
	"github.com/yonasbekele/serenity-backend/pkg/migrate"
	"github.com/yonasbekele/serenity-backend/pkg/redis"
)

const webhookGuardScope = "chapa-webhook"

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	paymentMetrics := metrics.NewPaymentMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	usersRepo := users.NewRepository(dbClient.DB())
	bookingsRepo := bookings.NewRepository(dbClient.DB())
	paymentsRepo := payments.NewRepository(dbClient.DB())
	transactionsRepo := transactions.NewRepository(dbClient.DB())
	engagementRepo := engagement.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  usersRepo,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	bookingService, err := bookings.NewService(bookingsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}

	transactionService, err := transactions.NewService(transactionsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create transaction service", err)
		os.Exit(1)
	}

	engagementService, err := engagement.NewService(engagementRepo, usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create engagement service", err)
		os.Exit(1)
	}

	chapaClient, err := chapa.NewClient(cfg.Chapa, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway client", err)
		os.Exit(1)
	}

	decrypter, err := amountcipher.New(cfg.Cipher)
	if err != nil {
		logg.Error(context.Background(), "failed to create amount cipher", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(
		paymentsRepo,
		bookingsRepo,
		chapaClient,
		decrypter,
		transactionService,
		engagementService,
		dbClient,
		cfg.Payments,
		cfg.Chapa,
		paymentMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	webhookService, err := chapawebhook.NewService(chapawebhook.ServiceParams{
		Gateway:    chapaClient,
		Reconciler: paymentService,
		Metrics:    paymentMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := chapawebhook.NewIdempotencyGuard(redisClient, cfg.Eventing.WebhookIdempotencyTTL, webhookGuardScope)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Registry:     registry,
			HTTPMetrics:  httpMetrics,
			AuthService:  authService,
			Bookings:     bookingService,
			Payments:     paymentService,
			Transactions: transactionService,
			UsersRepo:    usersRepo,
			ChapaClient:  chapaClient,
			WebhookSvc:   webhookService,
			WebhookGuard: webhookGuard,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := server.Shutdown(timeoutCtx)
		if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			err = multierr.Append(err, serveErr)
		}
		if err != nil {
			logg.Error(ctx, "api server shutdown error", err)
			os.Exit(1)
		}
	}
	logg.Info(ctx, "api server stopped")
}
