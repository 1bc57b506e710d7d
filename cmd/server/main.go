// Package main is the entry point for the PalletPulse reselling tracker.
// It tracks pallet purchases, per-item economics, expenses, and mileage,
// and serves the profit analytics API.
//
// Startup sequence:
//  1. Load configuration from environment variables
//  2. Open the three databases (inventory, config, history) and apply schemas
//  3. Seed setting defaults and fold settings overrides into the config
//  4. Wire repositories, services, and module handlers
//  5. Register background jobs (snapshot, maintenance, sweep, backup)
//  6. Serve HTTP until SIGINT/SIGTERM, then shut down gracefully
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/palletpulse/palletpulse/internal/config"
	"github.com/palletpulse/palletpulse/internal/database"
	"github.com/palletpulse/palletpulse/internal/events"
	"github.com/palletpulse/palletpulse/internal/modules/analytics"
	analyticshandlers "github.com/palletpulse/palletpulse/internal/modules/analytics/handlers"
	"github.com/palletpulse/palletpulse/internal/modules/expenses"
	expensehandlers "github.com/palletpulse/palletpulse/internal/modules/expenses/handlers"
	"github.com/palletpulse/palletpulse/internal/modules/export"
	exporthandlers "github.com/palletpulse/palletpulse/internal/modules/export/handlers"
	"github.com/palletpulse/palletpulse/internal/modules/items"
	itemhandlers "github.com/palletpulse/palletpulse/internal/modules/items/handlers"
	"github.com/palletpulse/palletpulse/internal/modules/mileage"
	mileagehandlers "github.com/palletpulse/palletpulse/internal/modules/mileage/handlers"
	"github.com/palletpulse/palletpulse/internal/modules/pallets"
	pallethandlers "github.com/palletpulse/palletpulse/internal/modules/pallets/handlers"
	"github.com/palletpulse/palletpulse/internal/modules/settings"
	settingshandlers "github.com/palletpulse/palletpulse/internal/modules/settings/handlers"
	"github.com/palletpulse/palletpulse/internal/modules/snapshots"
	snapshothandlers "github.com/palletpulse/palletpulse/internal/modules/snapshots/handlers"
	"github.com/palletpulse/palletpulse/internal/modules/subscriptions"
	subscriptionhandlers "github.com/palletpulse/palletpulse/internal/modules/subscriptions/handlers"
	"github.com/palletpulse/palletpulse/internal/reliability"
	"github.com/palletpulse/palletpulse/internal/scheduler"
	"github.com/palletpulse/palletpulse/internal/server"
	"github.com/palletpulse/palletpulse/internal/storage"
	"github.com/palletpulse/palletpulse/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Msg("Starting PalletPulse")

	// Databases
	inventoryDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "inventory.db"),
		Name: "inventory",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open inventory database")
	}
	defer inventoryDB.Close()

	configDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "config.db"),
		Name: "config",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open config database")
	}
	defer configDB.Close()

	historyDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "history.db"),
		Name:    "history",
		Profile: database.ProfileHistory,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer historyDB.Close()

	allDBs := []*database.DB{inventoryDB, configDB, historyDB}
	for _, db := range allDBs {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("db", db.Name()).Msg("Failed to apply schema")
		}
	}

	// Settings first: everything else reads configuration through them
	settingsRepo := settings.NewRepository(configDB.Conn(), log)
	if err := settingsRepo.SeedDefaults(); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed setting defaults")
	}
	settingsSvc := settings.NewService(settingsRepo, log)

	if err := cfg.UpdateFromSettings(settingsSvc); err != nil {
		log.Warn().Err(err).Msg("Failed to apply settings overrides, using environment values")
	}

	// Events
	eventBus := events.NewBus()
	eventMgr := events.NewManager(eventBus, log)

	// S3 is optional; a nil client disables export mirroring and backup upload
	s3Client, err := storage.NewClient(context.Background(), cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize S3 client, uploads disabled")
		s3Client = nil
	}

	// Repositories and services
	palletRepo := pallets.NewRepository(inventoryDB.Conn(), log)
	itemRepo := items.NewRepository(inventoryDB.Conn(), log)
	expenseRepo := expenses.NewRepository(inventoryDB.Conn(), log)
	mileageRepo := mileage.NewRepository(inventoryDB.Conn(), log)
	subscriptionRepo := subscriptions.NewRepository(configDB.Conn(), log)
	snapshotRepo := snapshots.NewRepository(historyDB.Conn(), log)
	exportRepo := export.NewRepository(historyDB.Conn(), log)

	subscriptionSvc := subscriptions.NewService(subscriptionRepo, eventMgr, log)
	palletSvc := pallets.NewService(palletRepo, itemRepo, expenseRepo, settingsSvc, subscriptionSvc, log)
	itemSvc := items.NewService(itemRepo, palletSvc, settingsSvc, log)
	mileageSvc := mileage.NewService(mileageRepo, settingsSvc, log)
	snapshotSvc := snapshots.NewService(snapshotRepo, palletRepo, palletSvc, eventMgr, log)
	analyticsSvc := analytics.NewService(palletRepo, palletSvc, itemRepo, expenseRepo, log)
	exportSvc := export.NewService(exportRepo, itemRepo, palletRepo, palletSvc, expenseRepo, s3Client, eventMgr, log)
	backupSvc := reliability.NewBackupService(allDBs, cfg.DataDir, s3Client, settingsSvc, eventMgr, log)

	// HTTP server with every module's routes
	srv := server.New(server.Config{
		Log:         log,
		InventoryDB: inventoryDB,
		ConfigDB:    configDB,
		HistoryDB:   historyDB,
		Config:      cfg,
		EventBus:    eventBus,
		Handlers: []server.RouteRegistrar{
			pallethandlers.NewHandler(palletRepo, palletSvc, eventMgr, log),
			itemhandlers.NewHandler(itemRepo, itemSvc, eventMgr, log),
			expensehandlers.NewHandler(expenseRepo, eventMgr, log),
			mileagehandlers.NewHandler(mileageSvc, eventMgr, log),
			settingshandlers.NewHandler(settingsSvc, eventMgr, log),
			subscriptionhandlers.NewHandler(subscriptionSvc, log),
			snapshothandlers.NewHandler(snapshotSvc, log),
			analyticshandlers.NewHandler(analyticsSvc,
				subscriptionSvc.Require(subscriptions.EntitlementAnalytics), log),
			exporthandlers.NewHandler(exportSvc,
				subscriptionSvc.Require(subscriptions.EntitlementExport), log),
		},
	})

	// Background jobs
	sched := scheduler.New(log)

	backupJob := &scheduler.BackupJob{Service: backupSvc}
	maintenanceJob := &scheduler.MaintenanceJob{Databases: allDBs}
	srv.SystemHandlers().SetJobs(backupJob, maintenanceJob)

	jobs := []struct {
		schedule string
		job      scheduler.Job
	}{
		{scheduleSetting(settingsSvc, "snapshot_schedule", "0 0 2 * * *"), &scheduler.SnapshotJob{Service: snapshotSvc}},
		{scheduleSetting(settingsSvc, "subscription_sweep_schedule", "0 0 1 * * *"), &scheduler.SweepJob{Service: subscriptionSvc}},
		{maintenanceSchedule(settingsSvc), maintenanceJob},
		{cfg.BackupSchedule, backupJob},
	}
	for _, j := range jobs {
		if err := sched.AddJob(j.schedule, j.job); err != nil {
			log.Fatal().Err(err).Str("job", j.job.Name()).Msg("Failed to register job")
		}
	}

	sched.Start()

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Fold WAL files into the main databases before closing
	for _, db := range allDBs {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			log.Warn().Err(err).Str("db", db.Name()).Msg("Final WAL checkpoint failed")
		}
	}

	log.Info().Msg("Server stopped")
}

// scheduleSetting reads a cron schedule from settings, falling back when
// unset or unreadable.
func scheduleSetting(svc *settings.Service, key, fallback string) string {
	val, err := svc.GetString(key)
	if err != nil || val == "" {
		return fallback
	}
	return val
}

// maintenanceSchedule derives the nightly maintenance cron from the
// configured hour.
func maintenanceSchedule(svc *settings.Service) string {
	hour, err := svc.GetFloat("job_maintenance_hour")
	if err != nil || hour < 0 || hour > 23 {
		hour = 3
	}
	return fmt.Sprintf("0 0 %d * * *", int(hour))
}
