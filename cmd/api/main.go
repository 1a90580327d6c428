package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/ashcorp/wishlist-backend/api/controllers"
	"github.com/ashcorp/wishlist-backend/api/routes"
	"github.com/ashcorp/wishlist-backend/internal/dashboard"
	"github.com/ashcorp/wishlist-backend/internal/media"
	"github.com/ashcorp/wishlist-backend/internal/storefront"
	"github.com/ashcorp/wishlist-backend/internal/webhooks"
	"github.com/ashcorp/wishlist-backend/internal/wishlist"
	"github.com/ashcorp/wishlist-backend/pkg/config"
	"github.com/ashcorp/wishlist-backend/pkg/db"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
	"github.com/ashcorp/wishlist-backend/pkg/metrics"
	"github.com/ashcorp/wishlist-backend/pkg/migrate"
	"github.com/ashcorp/wishlist-backend/pkg/redis"
	"github.com/ashcorp/wishlist-backend/pkg/secrets"
	"github.com/ashcorp/wishlist-backend/pkg/storage/s3"
)

const (
	shutdownTimeout   = 15 * time.Second
	webhookGuardScope = "shopify-webhook"
	readHeaderTimeout = 10 * time.Second
)

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
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	secretLoader, err := secrets.New(ctx, cfg.Secrets, logg)
	if err != nil {
		return err
	}
	secretLoader.Load(ctx)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	s3Client, err := s3.NewClient(ctx, cfg.Storage, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, s3Client.Close()) }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	credentials := storefront.NewCredentialResolver(secretLoader, cfg.Shopify)
	wishlistRepo := wishlist.NewRepository(dbClient.DB())

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Repo:   wishlistRepo,
		Tx:     dbClient,
		Images: s3Client,
		Logger: logg,
	})
	if err != nil {
		return err
	}

	mediaService, err := media.NewService(media.ServiceParams{
		Wishlists: wishlistRepo,
		Presenter: wishlistService,
		Store:     s3Client,
		Config:    cfg.Media,
		Logger:    logg,
	})
	if err != nil {
		return err
	}

	webhookService, err := webhooks.NewService(webhooks.ServiceParams{
		Repo:    webhooks.NewRepository(dbClient.DB()),
		Tx:      dbClient,
		Metrics: webhookMetrics,
		Logger:  logg,
	})
	if err != nil {
		return err
	}

	guard, err := webhooks.NewIdempotencyGuard(redisClient, cfg.Shopify.WebhookGuardTTL, webhookGuardScope)
	if err != nil {
		return err
	}

	location, err := cfg.Dashboard.Location()
	if err != nil {
		return err
	}
	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
		Repo:           dashboard.NewRepository(dbClient.DB()),
		Credentials:    credentials,
		Fetchers:       dashboard.ShopifyFetchers(cfg.Shopify.APIVersion, cfg.Shopify.Timeout),
		TotalCustomers: cfg.Dashboard.TotalCustomers,
		Location:       location,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		Wishlist:     wishlistService,
		Media:        mediaService,
		Webhooks:     webhookService,
		Dashboard:    dashboardService,
		Credentials:  credentials,
		WebhookGuard: guard,
		Pingers: map[string]controllers.Pinger{
			"db":    dbClient,
			"redis": redisClient,
			"s3":    s3Client,
		},
		Gatherer:       registry,
		HTTPMetrics:    metrics.NewHTTPMetrics(registry),
		WebhookMetrics: webhookMetrics,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
