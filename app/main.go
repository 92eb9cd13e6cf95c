package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thopica/basketball-lobster/app/api"
	"github.com/thopica/basketball-lobster/app/cfg"
	"github.com/thopica/basketball-lobster/app/config"
	"github.com/thopica/basketball-lobster/app/crawler"
	"github.com/thopica/basketball-lobster/app/curator"
	"github.com/thopica/basketball-lobster/app/database"
	"github.com/thopica/basketball-lobster/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Basketball Lobster server", "version", appCfg.Version)

	db, err := database.NewConnection(
		appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "migration_version", version, "dirty", dirty)

	loader := config.NewLoader(appCfg.SourcesDir)
	sourceConfigs, err := loader.LoadAll()
	if err != nil {
		slog.Error("Failed to load source definitions", "error", err)
		os.Exit(1)
	}
	slog.Info("Source definitions loaded", "count", len(sourceConfigs))

	sourceRepo := database.NewSourceRepository(db)
	contentRepo := database.NewContentRepository(db)
	commentRepo := database.NewCommentRepository(db)
	crawlLogRepo := database.NewCrawlLogRepository(db)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	sourceCrawler := crawler.NewCrawler(httpClient, appCfg.UserAgent, appCfg.YouTubeAPIKey)

	classifier := curator.NewOpenAIClassifier(appCfg.OpenAIAPIKey, appCfg.OpenAIModel)
	contentCurator := curator.NewCurator(classifier)
	if appCfg.OpenAIAPIKey == "" {
		slog.Warn("OPENAI_API_KEY not set, all candidates will receive the fallback score")
	}

	scheduler := tasks.NewScheduler(sourceConfigs, sourceRepo, contentRepo, crawlLogRepo, sourceCrawler, contentCurator)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.SchedulerInterval)

	handler := api.NewHandler(sourceRepo, contentRepo, commentRepo, crawlLogRepo, sourceCrawler, contentCurator, scheduler)
	server := api.NewServer(handler, appCfg.AdminAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
