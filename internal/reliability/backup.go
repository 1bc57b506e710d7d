// Package reliability handles database backups: tar.gz archives of every
// database with integrity metadata, mirrored to S3 and pruned by age.
package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/database"
	"github.com/palletpulse/palletpulse/internal/events"
	"github.com/palletpulse/palletpulse/internal/storage"
)

// RetentionProvider resolves the backup retention window from settings.
type RetentionProvider interface {
	GetFloat(key string) (float64, error)
}

// RetentionSettingKey is the settings key holding retention in days.
const RetentionSettingKey = "backup_retention_days"

// Metadata describes one backup archive.
type Metadata struct {
	Filename  string           `json:"filename"`
	SHA256    string           `json:"sha256"`
	SizeBytes int64            `json:"size_bytes"`
	Databases map[string]int64 `json:"databases"` // name -> size at backup time
	CreatedAt time.Time        `json:"created_at"`
}

// BackupService archives the databases on a schedule.
type BackupService struct {
	dbs       []*database.DB
	backupDir string
	s3        *storage.Client // nil when uploads are disabled
	retention RetentionProvider
	eventMgr  *events.Manager
	log       zerolog.Logger
}

// NewBackupService creates a new backup service. s3 may be nil.
func NewBackupService(dbs []*database.DB, dataDir string, s3 *storage.Client,
	retention RetentionProvider, eventMgr *events.Manager, log zerolog.Logger) *BackupService {
	return &BackupService{
		dbs:       dbs,
		backupDir: filepath.Join(dataDir, "backups"),
		s3:        s3,
		retention: retention,
		eventMgr:  eventMgr,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// Run performs one full backup cycle: checkpoint, archive, upload, prune.
func (s *BackupService) Run(ctx context.Context) (Metadata, error) {
	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return Metadata{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	// Fold WAL contents into the main files so the archive is consistent
	for _, db := range s.dbs {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			return Metadata{}, fmt.Errorf("checkpoint before backup failed: %w", err)
		}
	}

	now := time.Now().UTC()
	filename := fmt.Sprintf("palletpulse-%s.tar.gz", now.Format("20060102-150405"))
	archivePath := filepath.Join(s.backupDir, filename)

	meta, err := s.writeArchive(archivePath, now)
	if err != nil {
		_ = os.Remove(archivePath)
		return Metadata{}, err
	}
	meta.Filename = filename

	metaPath := archivePath + ".json"
	if err := writeMetadata(metaPath, meta); err != nil {
		return Metadata{}, err
	}

	if s.s3 != nil {
		if err := s.upload(ctx, archivePath, metaPath, filename); err != nil {
			// Local backup still exists; report but don't fail the cycle.
			s.log.Error().Err(err).Msg("Backup upload failed")
		}
	}

	if err := s.prune(ctx, now); err != nil {
		s.log.Error().Err(err).Msg("Backup pruning failed")
	}

	s.log.Info().
		Str("file", filename).
		Int64("size", meta.SizeBytes).
		Str("sha256", meta.SHA256).
		Msg("Backup completed")

	s.eventMgr.Emit(events.BackupCompleted, "reliability", map[string]interface{}{
		"file": filename,
		"size": meta.SizeBytes,
	})

	return meta, nil
}

func (s *BackupService) writeArchive(path string, now time.Time) (Metadata, error) {
	meta := Metadata{
		Databases: make(map[string]int64),
		CreatedAt: now,
	}

	f, err := os.Create(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to create backup archive: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	gz := gzip.NewWriter(io.MultiWriter(f, hasher))
	tw := tar.NewWriter(gz)

	for _, db := range s.dbs {
		size, err := addFile(tw, db.Path(), db.Name()+".db")
		if err != nil {
			return Metadata{}, fmt.Errorf("failed to archive %s: %w", db.Name(), err)
		}
		meta.Databases[db.Name()] = size
	}

	if err := tw.Close(); err != nil {
		return Metadata{}, fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return Metadata{}, fmt.Errorf("failed to finalize compression: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to stat archive: %w", err)
	}

	meta.SizeBytes = info.Size()
	meta.SHA256 = hex.EncodeToString(hasher.Sum(nil))
	return meta, nil
}

func addFile(tw *tar.Writer, srcPath, name string) (int64, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	header := &tar.Header{
		Name:    name,
		Size:    info.Size(),
		Mode:    0644,
		ModTime: info.ModTime(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return 0, err
	}
	if _, err := io.Copy(tw, f); err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func writeMetadata(path string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup metadata: %w", err)
	}
	return nil
}

func (s *BackupService) upload(ctx context.Context, archivePath, metaPath, filename string) error {
	archive, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer archive.Close()

	if _, err := s.s3.Upload(ctx, "backups/"+filename, archive, "application/gzip"); err != nil {
		return err
	}

	metaFile, err := os.Open(metaPath)
	if err != nil {
		return err
	}
	defer metaFile.Close()

	_, err = s.s3.Upload(ctx, "backups/"+filename+".json", metaFile, "application/json")
	return err
}

// prune removes local and remote backups older than the retention window.
// A retention of zero disables pruning: every backup is kept.
func (s *BackupService) prune(ctx context.Context, now time.Time) error {
	days, err := s.retention.GetFloat(RetentionSettingKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read backup retention, using default")
		days = 90
	}
	if days <= 0 {
		return nil
	}
	cutoff := now.Add(-time.Duration(days*24) * time.Hour)

	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return fmt.Errorf("failed to read backup directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "palletpulse-") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.backupDir, entry.Name())); err != nil {
			s.log.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to remove old backup")
		}
	}

	if s.s3 != nil {
		if _, err := s.s3.PruneOlderThan(ctx, "backups/", cutoff); err != nil {
			return err
		}
	}
	return nil
}

// Verify recomputes a local archive's checksum against its metadata file.
func Verify(archivePath string) error {
	meta, err := readMetadata(archivePath + ".json")
	if err != nil {
		return err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return fmt.Errorf("failed to hash archive: %w", err)
	}

	sum := hex.EncodeToString(hasher.Sum(nil))
	if sum != meta.SHA256 {
		return fmt.Errorf("checksum mismatch for %s: have %s, recorded %s",
			filepath.Base(archivePath), sum, meta.SHA256)
	}
	return nil
}

func readMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read backup metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("failed to decode backup metadata: %w", err)
	}
	return meta, nil
}
