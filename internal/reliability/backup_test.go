package reliability

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palletpulse/palletpulse/internal/database"
	"github.com/palletpulse/palletpulse/internal/events"
)

type fixedRetention float64

func (r fixedRetention) GetFloat(key string) (float64, error) { return float64(r), nil }

func newTestBackup(t *testing.T) (*BackupService, string) {
	t.Helper()

	dataDir := t.TempDir()
	var dbs []*database.DB
	for _, name := range []string{"inventory", "config"} {
		db, err := database.New(database.Config{
			Path: filepath.Join(dataDir, name+".db"),
			Name: name,
		})
		require.NoError(t, err)
		require.NoError(t, db.Migrate())
		t.Cleanup(func() { _ = db.Close() })
		dbs = append(dbs, db)
	}

	mgr := events.NewManager(events.NewBus(), zerolog.Nop())
	svc := NewBackupService(dbs, dataDir, nil, fixedRetention(90), mgr, zerolog.Nop())
	return svc, dataDir
}

func TestBackupService_RunProducesVerifiableArchive(t *testing.T) {
	svc, dataDir := newTestBackup(t)

	meta, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, meta.Filename)
	assert.Len(t, meta.SHA256, 64)
	assert.Greater(t, meta.SizeBytes, int64(0))
	assert.Contains(t, meta.Databases, "inventory")
	assert.Contains(t, meta.Databases, "config")

	archivePath := filepath.Join(dataDir, "backups", meta.Filename)
	_, err = os.Stat(archivePath)
	require.NoError(t, err, "archive exists on disk")
	_, err = os.Stat(archivePath + ".json")
	require.NoError(t, err, "metadata sidecar exists")

	require.NoError(t, Verify(archivePath))
}

func TestVerify_DetectsCorruption(t *testing.T) {
	svc, dataDir := newTestBackup(t)

	meta, err := svc.Run(context.Background())
	require.NoError(t, err)

	archivePath := filepath.Join(dataDir, "backups", meta.Filename)
	f, err := os.OpenFile(archivePath, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte("tampered"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Error(t, Verify(archivePath))
}

func TestBackupService_PruneKeepsRecentArchives(t *testing.T) {
	svc, dataDir := newTestBackup(t)

	meta, err := svc.Run(context.Background())
	require.NoError(t, err)

	// A just-created archive survives a 90-day retention prune (prune runs
	// inside Run already, so it just needs to still exist).
	_, err = os.Stat(filepath.Join(dataDir, "backups", meta.Filename))
	assert.NoError(t, err)
}

// plantOldArchive drops an archive file into the backup directory with a
// modification time far in the past.
func plantOldArchive(t *testing.T, dataDir string, ageDays int) string {
	t.Helper()

	backupDir := filepath.Join(dataDir, "backups")
	require.NoError(t, os.MkdirAll(backupDir, 0755))

	path := filepath.Join(backupDir, "palletpulse-20250101-000000.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("old archive"), 0644))

	past := time.Now().Add(-time.Duration(ageDays) * 24 * time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))
	return path
}

func TestBackupService_RetentionZeroKeepsEverything(t *testing.T) {
	svc, dataDir := newTestBackup(t)
	svc.retention = fixedRetention(0)

	old := plantOldArchive(t, dataDir, 120)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(old)
	assert.NoError(t, err, "retention 0 disables pruning")
}

func TestBackupService_PruneRemovesExpiredArchives(t *testing.T) {
	svc, dataDir := newTestBackup(t)
	svc.retention = fixedRetention(30)

	old := plantOldArchive(t, dataDir, 120)

	meta, err := svc.Run(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err), "expired archive is removed")

	_, err = os.Stat(filepath.Join(dataDir, "backups", meta.Filename))
	assert.NoError(t, err, "fresh archive survives")
}
