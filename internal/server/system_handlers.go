package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/palletpulse/palletpulse/internal/database"
	"github.com/palletpulse/palletpulse/internal/scheduler"
)

// SystemHandlers serves process and database health endpoints plus manual
// triggers for the background jobs.
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	databases []*database.DB
	startedAt time.Time

	backupJob      scheduler.Job
	maintenanceJob scheduler.Job
}

// NewSystemHandlers creates the system handlers
func NewSystemHandlers(log zerolog.Logger, dataDir string, databases []*database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		dataDir:   dataDir,
		databases: databases,
		startedAt: time.Now().UTC(),
	}
}

// SetJobs registers jobs for manual triggering via the API.
func (h *SystemHandlers) SetJobs(backup, maintenance scheduler.Job) {
	h.backupJob = backup
	h.maintenanceJob = maintenance
}

// RegisterRoutes registers the system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Get("/status", h.HandleStatus)
		r.Get("/databases", h.HandleDatabaseStats)
		r.Post("/backup", h.HandleTriggerBackup)
		r.Post("/maintenance", h.HandleTriggerMaintenance)
	})
}

// StatusResponse is the system status payload.
type StatusResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedMB  float64 `json:"memory_used_mb"`
}

// HandleStatus returns process health: uptime, CPU, and memory.
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
	}

	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		resp.CPUPercent = cpuPercent[0]
	}
	if memStat, err := mem.VirtualMemory(); err == nil {
		resp.MemoryPercent = memStat.UsedPercent
		resp.MemoryUsedMB = float64(memStat.Used) / 1024 / 1024
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// DatabaseStatus is one database's health and size report.
type DatabaseStatus struct {
	Name         string `json:"name"`
	Healthy      bool   `json:"healthy"`
	Error        string `json:"error,omitempty"`
	SizeBytes    int64  `json:"size_bytes"`
	WALSizeBytes int64  `json:"wal_size_bytes"`
	PageCount    int64  `json:"page_count"`
}

// HandleDatabaseStats runs an integrity check and reports sizes for every
// database.
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	statuses := make([]DatabaseStatus, 0, len(h.databases))
	for _, db := range h.databases {
		status := DatabaseStatus{Name: db.Name(), Healthy: true}

		if err := db.HealthCheck(ctx); err != nil {
			status.Healthy = false
			status.Error = err.Error()
		}
		if stats, err := db.GetStats(); err == nil {
			status.SizeBytes = stats.SizeBytes
			status.WALSizeBytes = stats.WALSizeBytes
			status.PageCount = stats.PageCount
		}

		statuses = append(statuses, status)
	}

	h.writeJSON(w, http.StatusOK, statuses)
}

// HandleTriggerBackup runs the backup job immediately.
func (h *SystemHandlers) HandleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, h.backupJob, "backup")
}

// HandleTriggerMaintenance runs the WAL maintenance job immediately.
func (h *SystemHandlers) HandleTriggerMaintenance(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, h.maintenanceJob, "maintenance")
}

func (h *SystemHandlers) triggerJob(w http.ResponseWriter, job scheduler.Job, name string) {
	if job == nil {
		h.writeJSON(w, http.StatusServiceUnavailable,
			map[string]string{"error": name + " job not configured"})
		return
	}

	if err := job.Run(); err != nil {
		h.log.Error().Err(err).Str("job", job.Name()).Msg("Manual job trigger failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "completed", "job": job.Name()})
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
