package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eprescription-dashboard/config"
	"eprescription-dashboard/internal/api"
	"eprescription-dashboard/internal/daterange"
	"eprescription-dashboard/internal/db"
	"eprescription-dashboard/internal/export"
	"eprescription-dashboard/internal/generator"
	"eprescription-dashboard/internal/metrics"
	"eprescription-dashboard/internal/model"
	"eprescription-dashboard/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "eprescription-dashboard ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	loc, err := time.LoadLocation(cfg.Dataset.Timezone)
	if err != nil {
		logger.Fatalf("invalid dataset timezone %q: %v", cfg.Dataset.Timezone, err)
	}

	// Generate the dataset once; it is read-only from here on.
	snap := generator.Generate(time.Now(), generator.Options{
		Doctors:     cfg.Dataset.Doctors,
		DaysHistory: cfg.Dataset.DaysHistory,
		DaysFuture:  cfg.Dataset.DaysFuture,
		Location:    loc,
		Rand:        generator.NewRand(cfg.Dataset.Seed),
	})
	logger.Printf("snapshot %s generated", snap.ID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore, closeStore, err := openStore(ctx, &cfg.Storage, snap)
	if err != nil {
		logger.Fatalf("failed to initialize %s store: %v", cfg.Storage.Driver, err)
	}
	defer closeStore()
	logger.Printf("data store initialized (driver=%s)", cfg.Storage.Driver)

	autoAssign, err := metrics.NewAutoAssigner(cfg.Dashboard.AutoAssignPolicy, generator.NewRand(cfg.Dataset.Seed+1))
	if err != nil {
		logger.Fatalf("invalid dashboard configuration: %v", err)
	}
	if _, err := export.Lookup(cfg.Dashboard.ExportProfile); err != nil {
		logger.Fatalf("invalid dashboard configuration: %v", err)
	}

	aggregator := metrics.NewAggregator(appStore,
		metrics.WithWorkers(cfg.WorkerPool.Size),
		metrics.WithAutoAssigner(autoAssign),
		metrics.WithLocation(loc),
	)
	handler := api.NewHandler(appStore, aggregator, api.Options{
		Policy: daterange.Policy{
			LookbackDays: cfg.Dashboard.LookbackDays,
			MaxSpanDays:  cfg.Dashboard.MaxSpanDays,
			Location:     loc,
		},
		PageSize:      cfg.Dashboard.PageSize,
		ExportProfile: cfg.Dashboard.ExportProfile,
		AutoAssign:    autoAssign,
	})

	// Initialize router
	router := api.NewRouter(handler, cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}

// openStore serves the snapshot from memory, or seeds it into the configured
// database and queries it through GORM.
func openStore(ctx context.Context, cfg *config.StorageConfig, snap *model.Snapshot) (store.Store, func(), error) {
	if cfg.Driver == "memory" {
		return store.NewMemoryStore(snap), func() {}, nil
	}

	gormDB, err := db.Init(cfg)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}
	if err := db.Seed(ctx, gormDB, snap, cfg.SeedBatchSize); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to seed database: %w", err)
	}
	return store.NewGormStore(gormDB, snap.Info()), func() { sqlDB.Close() }, nil
}
