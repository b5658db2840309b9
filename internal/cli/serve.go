package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/freshbuy/internal/audit"
	"github.com/fjod/freshbuy/internal/auth"
	"github.com/fjod/freshbuy/internal/cache"
	"github.com/fjod/freshbuy/internal/config"
	"github.com/fjod/freshbuy/internal/describer"
	h "github.com/fjod/freshbuy/internal/http"
	"github.com/fjod/freshbuy/internal/metrics"
	"github.com/fjod/freshbuy/internal/paystack"
	"github.com/fjod/freshbuy/internal/publisher"
	"github.com/fjod/freshbuy/internal/service"
	"github.com/fjod/freshbuy/internal/telemetry"
)

const serviceName = "freshbuy"

func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := cfg.RequireServing(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	telemetry.InitLogger(os.Stderr, cfg.LogLevel)

	shutdownTracer, err := telemetry.SetupTracer(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracer(sctx); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}()

	repo, err := openRepository(cfg.DB)
	if err != nil {
		return err
	}
	defer repo.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	cartCache := cache.NewRedisCache(redisClient)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	checkoutOpts := []service.CheckoutOption{
		service.WithCartCache(cartCache),
		service.WithCheckoutMetrics(m.Checkout),
	}

	// The audit log and order events are best effort; checkout runs without them.
	if db, err := audit.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); err != nil {
		slog.Warn("payment audit log disabled", "error", err)
	} else {
		defer db.Client().Disconnect(context.Background())
		paymentLog := audit.NewMongoPaymentLog(db)
		if err := paymentLog.CreateIndexes(ctx); err != nil {
			slog.Warn("payment audit indexes not created", "error", err)
		}
		checkoutOpts = append(checkoutOpts, service.WithPaymentLog(paymentLog))
	}

	if len(cfg.KafkaBrokers) > 0 {
		events := publisher.NewKafkaPublisher(cfg.KafkaBrokers...)
		defer events.Close()
		checkoutOpts = append(checkoutOpts, service.WithOrderEvents(events))
	}

	var describe service.DescriptionGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := describer.NewGemini(ctx, cfg.GeminiAPIKey)
		if err != nil {
			slog.Warn("description generator disabled", "error", err)
		} else {
			describe = gemini
		}
	}

	provider := paystack.NewClient(paystack.Config{
		BaseURL:   cfg.PaystackBaseURL,
		SecretKey: cfg.PaystackSecretKey,
		Timeout:   cfg.PaystackTimeout,
	})
	tokens := auth.NewTokens(cfg.JWTSecret)

	authSvc := service.NewAuthService(repo, tokens)
	catalogSvc := service.NewCatalogService(repo, describe)
	cartSvc := service.NewCartService(repo, cartCache)
	shippingSvc := service.NewShippingService(repo)
	checkoutSvc := service.NewCheckoutService(repo, provider, cfg.Pricing, cfg.PaymentCallbackURL(), checkoutOpts...)
	orderSvc := service.NewOrderService(repo)
	analyticsSvc := service.NewAnalyticsService(repo)

	router := h.NewRouter(h.Handlers{
		Auth:      h.NewAuthHandler(authSvc, cfg.RequestTimeout),
		Products:  h.NewProductHandler(catalogSvc, cfg.RequestTimeout),
		Carts:     h.NewCartHandler(cartSvc, cfg.RequestTimeout),
		Shipping:  h.NewShippingHandler(shippingSvc, cfg.RequestTimeout),
		Checkout:  h.NewCheckoutHandler(checkoutSvc, cfg.RequestTimeout),
		Orders:    h.NewOrdersHandler(orderSvc, cfg.RequestTimeout),
		Analytics: h.NewAnalyticsHandler(analyticsSvc, cfg.RequestTimeout),
	}, h.RouterConfig{
		Tokens:         tokens,
		Admins:         authSvc,
		Metrics:        m,
		RequestTimeout: cfg.RequestTimeout,
		Health: func(ctx context.Context) error {
			if err := repo.Ping(ctx); err != nil {
				return fmt.Errorf("database unreachable: %w", err)
			}
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("cache unreachable: %w", err)
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("freshbuy starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}

	slog.Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server exited")
	return nil
}
