// Package main provides the chatbot server entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/freshLiver/SuperStudent/internal/activity"
	"github.com/freshLiver/SuperStudent/internal/bot"
	"github.com/freshLiver/SuperStudent/internal/buildinfo"
	"github.com/freshLiver/SuperStudent/internal/config"
	"github.com/freshLiver/SuperStudent/internal/logger"
	"github.com/freshLiver/SuperStudent/internal/metrics"
	"github.com/freshLiver/SuperStudent/internal/ner"
	"github.com/freshLiver/SuperStudent/internal/news"
	"github.com/freshLiver/SuperStudent/internal/nlu"
	"github.com/freshLiver/SuperStudent/internal/r2client"
	"github.com/freshLiver/SuperStudent/internal/scraper"
	"github.com/freshLiver/SuperStudent/internal/sentry"
	"github.com/freshLiver/SuperStudent/internal/snapshot"
	"github.com/freshLiver/SuperStudent/internal/storage"
	"github.com/freshLiver/SuperStudent/internal/temporal"
	"github.com/freshLiver/SuperStudent/internal/webhook"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger, fanning out to an optional log file
	var logWriters []io.Writer
	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer logFile.Close()
		logWriters = append(logWriters, logFile)
	}
	log, flushLogs := logger.NewProduction(cfg.LogLevel, logWriters...)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = flushLogs(flushCtx)
	}()
	log.WithField("version", buildinfo.Version).Info("Starting SuperStudent server")

	// Initialize Sentry error tracking (no-op without a DSN)
	if cfg.Sentry.Enabled {
		if err := sentry.Initialize(sentry.Config{
			DSN:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			Release:          cfg.Sentry.Release,
			SampleRate:       cfg.Sentry.SampleRate,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			log.WithError(err).Error("Failed to initialize Sentry")
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
		log.Info("Sentry initialized")
	}

	// Resolve the timezone used for all temporal resolution
	loc, err := cfg.Location()
	if err != nil {
		log.WithError(err).Error("Failed to load timezone")
		os.Exit(1)
	}

	// Optional R2 snapshot manager for activity database durability
	var snapshotMgr *snapshot.Manager
	if cfg.R2.Enabled {
		r2, err := r2client.New(context.Background(), r2client.Config{
			Endpoint:    fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2.AccountID),
			AccessKeyID: cfg.R2.AccessKeyID,
			SecretKey:   cfg.R2.SecretAccessKey,
			BucketName:  cfg.R2.BucketName,
		})
		if err != nil {
			log.WithError(err).Error("Failed to create R2 client")
			os.Exit(1)
		}

		snapshotMgr = snapshot.New(r2, snapshot.Config{
			SnapshotKey: cfg.R2.SnapshotKey,
			LockKey:     cfg.R2.LockKey,
			LockTTL:     cfg.R2.LockTTL,
			TempDir:     cfg.DataDir,
		}, log)

		// A fresh instance restores the activity database from the latest
		// snapshot; an existing local database always wins.
		if _, statErr := os.Stat(cfg.SQLitePath()); os.IsNotExist(statErr) {
			restoreCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			etag, err := snapshotMgr.DownloadSnapshot(restoreCtx, cfg.SQLitePath())
			cancel()
			switch {
			case err == snapshot.ErrNotFound:
				log.Info("No remote snapshot found, starting with empty database")
			case err != nil:
				log.WithError(err).Warn("Snapshot restore failed, starting with empty database")
			default:
				log.WithField("etag", etag).Info("Activity database restored from snapshot")
			}
		}
	}

	// Connect to the activity database
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	// Create Prometheus registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Create scraper client with per-outlet failover URLs
	scraperClient := scraper.NewClient(
		cfg.ScraperTimeout,
		cfg.ScraperMaxRetries,
		cfg.ScraperBaseURLs,
	)
	log.Info("Scraper client created")

	// Domain services
	newsService := news.NewService(scraperClient, loc, m, log)
	activityService := activity.NewService(db, loc, m, log)

	// NER collaborator
	nerClient := ner.NewClient(cfg.NERURL, cfg.NERTimeout, cfg.NERCustomWords, log)
	log.WithField("url", cfg.NERURL).Info("NER client created")

	// Temporal resolution pipeline and intent classification
	grammar := temporal.NewGrammar()
	processor := bot.NewProcessor(bot.ProcessorConfig{
		Standardizer: temporal.NewStandardizer(grammar),
		Extractor:    temporal.NewExtractor(grammar, loc),
		NERParser:    nerClient,
		Classifier:   nlu.NewClassifier(),
		Router:       bot.NewRouter(newsService, activityService, log),
		BotConfig:    &cfg.Bot,
		Location:     loc,
		Logger:       log,
		Metrics:      m,
	})
	defer processor.Stop()

	// Create webhook handler
	webhookHandler, err := webhook.NewHandler(webhook.HandlerConfig{
		ChannelSecret: cfg.LineChannelSecret,
		ChannelToken:  cfg.LineChannelToken,
		BotConfig:     &cfg.Bot,
		Metrics:       m,
		Logger:        log,
		Processor:     processor,
	})
	if err != nil {
		log.WithError(err).Error("Failed to create webhook handler")
		os.Exit(1)
	}
	log.Info("Webhook handler created")

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	if cfg.Sentry.Enabled {
		router.Use(sentryMiddleware())
	}
	router.Use(loggingMiddleware(log))

	// Setup routes
	setupRoutes(router, webhookHandler, db, registry, cfg)

	// Create HTTP server with timeouts sized for async webhook handling
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.WebhookHTTPRead,
		WriteTimeout: config.WebhookHTTPWrite,
		IdleTimeout:  config.WebhookHTTPIdle,
	}

	// Start background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	// Periodic snapshot upload, guarded by the distributed leader lock
	if snapshotMgr != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithField("panic", r).Error("Panic in snapshot upload goroutine")
				}
			}()
			runSnapshotUploads(ctx, snapshotMgr, db, cfg.R2.SnapshotInterval, m, log)
		}()
	}

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Failed to start server")
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Stop background goroutines
	cancel()

	goDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(goDone)
	}()

	select {
	case <-goDone:
		log.Info("All background goroutines stopped")
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for goroutines to stop")
	}

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown server gracefully, then drain in-flight webhook events
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if err := webhookHandler.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Timed out draining webhook events")
	}

	// Final snapshot so activities created since the last upload survive
	if snapshotMgr != nil {
		finalizeSnapshot(shutdownCtx, snapshotMgr, db, m, log)
	}

	// Close database connection
	if err := db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}

	log.Info("Server stopped")
}
