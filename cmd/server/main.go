// FootScan API server
// Serves footwear listing extraction and live analysis over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marcosevegrand/footwear-promo/internal/api"
	"github.com/marcosevegrand/footwear-promo/internal/config"
	"github.com/marcosevegrand/footwear-promo/internal/extractor"
	"github.com/marcosevegrand/footwear-promo/internal/logging"
	"github.com/marcosevegrand/footwear-promo/internal/scraper"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configFile := flag.String("config", "", "Path to configuration file (YAML or JSON)")
	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		log.Fatalf("❌ Failed to load .env: %v", err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("❌ Failed to configure logging: %v", err)
	}

	fetcher, err := scraper.NewFetcher(cfg.Scraping, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create fetcher")
	}
	analyzer := scraper.NewAnalyzer(fetcher, extractor.NewExtractor(cfg.Extraction.ToOptions(), logger), logger)
	defer analyzer.Close()

	handler := api.NewHandler(analyzer, cfg.Scraping.MaxPages, logger)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(handler, cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.WithFields(logrus.Fields{
		"addr":     addr,
		"renderer": cfg.Scraping.Renderer,
		"origins":  cfg.Server.AllowedOrigins,
	}).Info("Server starting")
	logger.Info("   GET  /health - Health check")
	logger.Info("   POST /api/v1/extract - Extract products from supplied HTML")
	logger.Info("   POST /api/v1/analyze - Fetch and analyze a listing URL")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("Server failed")
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Graceful shutdown failed")
	}
}
