package scheduler

import (
	"context"
	"time"

	"github.com/palletpulse/palletpulse/internal/database"
	"github.com/palletpulse/palletpulse/internal/modules/snapshots"
	"github.com/palletpulse/palletpulse/internal/modules/subscriptions"
	"github.com/palletpulse/palletpulse/internal/reliability"
)

// SnapshotJob captures the daily inventory valuation.
type SnapshotJob struct {
	Service *snapshots.Service
}

func (j *SnapshotJob) Name() string { return "inventory_snapshot" }

func (j *SnapshotJob) Run() error {
	_, err := j.Service.Capture(time.Now())
	return err
}

// MaintenanceJob checkpoints WAL files so they don't grow unbounded.
type MaintenanceJob struct {
	Databases []*database.DB
}

func (j *MaintenanceJob) Name() string { return "database_maintenance" }

func (j *MaintenanceJob) Run() error {
	for _, db := range j.Databases {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			return err
		}
	}
	return nil
}

// SweepJob downgrades expired subscriptions.
type SweepJob struct {
	Service *subscriptions.Service
}

func (j *SweepJob) Name() string { return "subscription_sweep" }

func (j *SweepJob) Run() error {
	return j.Service.Sweep()
}

// BackupJob archives the databases.
type BackupJob struct {
	Service *reliability.BackupService
}

func (j *BackupJob) Name() string { return "database_backup" }

func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	_, err := j.Service.Run(ctx)
	return err
}
