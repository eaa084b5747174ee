// Package main is the entry point for the SKU simulator HTTP service.
//
// The service computes incremental revenue and gross profit for SKU growth scenarios
// and serves them as JSON, msgpack, CSV/XLSX downloads and a live WebSocket feed.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/skusim/internal/config"
	"github.com/aristath/skusim/internal/modules/export"
	"github.com/aristath/skusim/internal/server"
	"github.com/aristath/skusim/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Pretty:  cfg.DevMode,
		Service: "skusim",
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting SKU simulator")

	sink, exportDir, err := newSink(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize export storage")
	}

	srv := server.New(server.Config{
		Log:            log,
		Port:           cfg.Port,
		DevMode:        cfg.DevMode,
		AllowedOrigins: cfg.AllowedOrigins,
		Sink:           sink,
		ExportDir:      exportDir,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// In-flight requests get up to 10 seconds
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// newSink picks S3 when a bucket is configured and the local export directory otherwise.
// The returned directory is empty for S3.
func newSink(cfg *config.Config, log zerolog.Logger) (export.Sink, string, error) {
	if cfg.UsesS3() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		sink, err := export.NewS3SinkFromEnv(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, "", err
		}
		log.Info().Str("bucket", cfg.S3Bucket).Str("prefix", cfg.S3Prefix).Msg("Exports stored in S3")
		return sink, "", nil
	}

	sink, err := export.NewFileSink(cfg.ExportDir)
	if err != nil {
		return nil, "", err
	}
	log.Info().Str("dir", cfg.ExportDir).Msg("Exports stored on local disk")
	return sink, cfg.ExportDir, nil
}
