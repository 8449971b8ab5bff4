package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/raushankrgupta/price-list-crawler/api"
	"github.com/raushankrgupta/price-list-crawler/config"
	"github.com/raushankrgupta/price-list-crawler/crawl"
	"github.com/raushankrgupta/price-list-crawler/logger"
	"github.com/raushankrgupta/price-list-crawler/metrics"
	"github.com/raushankrgupta/price-list-crawler/utils"
)

func main() {
	cfg, found := config.Load()
	log := logger.Must(cfg.LogLevel)
	defer log.Sync()
	if !found {
		log.Debug("no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	opts := crawl.Options{
		Upload: cfg.AWSBucketName != "",
		Notify: cfg.SendGridAPIKey != "" && cfg.ReportEmail != "",
	}
	svc, err := crawl.NewService(ctx, cfg, log, m, opts)
	if err != nil {
		log.Fatal("failed to set up crawl service", zap.Error(err))
	}
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set, crawl endpoint is disabled")
	}

	srv := &api.Server{
		Crawler:   svc,
		OutputDir: cfg.OutputDir,
		JWTSecret: cfg.JWTSecret,
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Log:       log,
	}
	if up, ok := svc.Uploader.(*utils.S3Uploader); ok {
		srv.Presigner = up
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("server starting", zap.String("port", cfg.Port), zap.String("output_dir", cfg.OutputDir))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed to start", zap.Error(err))
	}
	log.Info("server stopped")
}
