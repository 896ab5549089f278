package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/reddynasty/booking-widget/internal/config"
	"github.com/reddynasty/booking-widget/internal/observability/metrics"
	"github.com/reddynasty/booking-widget/internal/payments"
	"github.com/reddynasty/booking-widget/internal/proxy"
	"github.com/reddynasty/booking-widget/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-widget proxy",
		"env", cfg.Env,
		"port", cfg.Port,
		"mock_mode", cfg.MockMode(),
	)

	store := buildSessionStore(cfg, logger)

	var upstream *proxy.Upstream
	if !cfg.MockMode() {
		upstream = proxy.NewUpstream(cfg.CheckfrontHost, cfg.CheckfrontTokenID, cfg.CheckfrontTokenSecret, logger)
		logger.Info("forwarding to checkfront", "host", cfg.CheckfrontHost)
	}

	var razorpayClient *payments.RazorpayClient
	if cfg.RazorpayKeySecret != "" {
		razorpayClient = payments.NewRazorpayClient(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret, logger)
	}

	proxyMetrics := metrics.NewProxyMetrics(nil)
	handler := proxy.NewHandler(cfg, store, proxy.NewMockBackend(), upstream, razorpayClient, proxyMetrics, logger)

	router := proxy.NewRouter(&proxy.RouterConfig{
		Handler:            handler,
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MetricsHandler:     promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildSessionStore(cfg *config.Config, logger *logging.Logger) proxy.SessionStore {
	if cfg.RedisAddr == "" {
		logger.Info("no redis configured, sessions held in memory")
		return proxy.NewMemorySessionStore(cfg.SessionTTL)
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, falling back to in-memory sessions", "addr", cfg.RedisAddr, "error", err)
		return proxy.NewMemorySessionStore(cfg.SessionTTL)
	}

	logger.Info("sessions stored in redis", "addr", cfg.RedisAddr)
	return proxy.NewRedisSessionStore(client, cfg.SessionTTL)
}
