package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"staymap/internal/api"
	"staymap/internal/api/handlers"
	"staymap/internal/config"
	"staymap/internal/loader"
	"staymap/internal/obs"
	"staymap/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("dev").Error("config load failed", "error", err)
		os.Exit(1)
	}

	logger := obs.NewLogger(cfg.Env)

	// Load the dataset once at startup; everything downstream is
	// read-only against this snapshot.
	start := time.Now()
	snapshot, err := loader.LoadSnapshot(cfg.Dataset.ListingsCSV, cfg.Dataset.CalendarCSV)
	if err != nil {
		logger.Error("dataset load failed", "error", err)
		os.Exit(1)
	}

	queryService := services.NewQueryService(snapshot)

	listings, calendarEntries, indexed := queryService.Stats(context.Background())
	logger.Info("dataset loaded",
		"listings", listings,
		"calendar_entries", calendarEntries,
		"indexed", indexed,
		"duration", time.Since(start),
	)

	queryHandler := handlers.NewQueryHandler(queryService, logger, cfg.Query.ListingsCap, cfg.Query.RectangleCap)
	router := api.NewRouter(queryHandler, logger)

	if cfg.Env != "dev" && cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	router.Setup(engine)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// SIGHUP re-runs the loader and swaps the snapshot atomically;
	// in-flight queries keep reading the old dataset.
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	go func() {
		for range reload {
			snap, err := loader.LoadSnapshot(cfg.Dataset.ListingsCSV, cfg.Dataset.CalendarCSV)
			if err != nil {
				logger.Error("dataset reload failed, keeping current snapshot", "error", err)
				continue
			}
			queryService.Swap(snap)
			listings, calendarEntries, indexed := queryService.Stats(context.Background())
			logger.Info("dataset reloaded",
				"listings", listings,
				"calendar_entries", calendarEntries,
				"indexed", indexed,
			)
		}
	}()

	go func() {
		logger.Info("starting server", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
