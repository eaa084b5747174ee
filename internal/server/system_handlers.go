package server

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers serves process and host diagnostics.
type SystemHandlers struct {
	log       zerolog.Logger
	exportDir string
	startedAt time.Time

	// Overridable in tests; sampling real CPU blocks for the interval.
	cpuPercent func(time.Duration, bool) ([]float64, error)
	memPercent func() (float64, error)
}

// SystemStatusResponse represents the system status
type SystemStatusResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	GoVersion     string  `json:"go_version"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	Uptime        string  `json:"uptime"`
	Goroutines    int     `json:"goroutines"`
	CPUPercent    float64 `json:"cpu_percent"`
	RAMPercent    float64 `json:"ram_percent"`
}

// ExportUsageResponse reports how much the local export directory holds.
type ExportUsageResponse struct {
	Enabled bool   `json:"enabled"`
	Dir     string `json:"dir,omitempty"`
	Files   int    `json:"files"`
	Bytes   int64  `json:"bytes"`
	Size    string `json:"size"`
}

// NewSystemHandlers creates system handlers. exportDir may be empty.
func NewSystemHandlers(log zerolog.Logger, exportDir string) *SystemHandlers {
	return &SystemHandlers{
		log:        log.With().Str("handler", "system").Logger(),
		exportDir:  exportDir,
		startedAt:  time.Now(),
		cpuPercent: cpu.Percent,
		memPercent: func() (float64, error) {
			stat, err := mem.VirtualMemory()
			if err != nil {
				return 0, err
			}
			return stat.UsedPercent, nil
		},
	}
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, ramPct := h.getSystemStats()
	uptime := time.Since(h.startedAt)

	h.writeJSON(w, SystemStatusResponse{
		Status:        "healthy",
		Version:       Version,
		GoVersion:     runtime.Version(),
		UptimeSeconds: int64(uptime.Seconds()),
		Uptime:        uptime.Truncate(time.Second).String(),
		Goroutines:    runtime.NumGoroutine(),
		CPUPercent:    cpuPct,
		RAMPercent:    ramPct,
	})
}

// HandleExportUsage handles GET /api/system/exports
func (h *SystemHandlers) HandleExportUsage(w http.ResponseWriter, r *http.Request) {
	if h.exportDir == "" {
		h.writeJSON(w, ExportUsageResponse{Size: humanize.Bytes(0)})
		return
	}

	files, total := h.getDirUsage(h.exportDir)
	h.writeJSON(w, ExportUsageResponse{
		Enabled: true,
		Dir:     h.exportDir,
		Files:   files,
		Bytes:   total,
		Size:    humanize.Bytes(uint64(total)),
	})
}

// getDirUsage counts regular files under dirPath. A missing directory is empty.
func (h *SystemHandlers) getDirUsage(dirPath string) (int, int64) {
	var files int
	var total int64

	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return nil
			}
			files++
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0, 0
	}

	return files, total
}

// getSystemStats calculates CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// 100ms sample keeps the endpoint responsive
	cpuPercent, err := h.cpuPercent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = nil
	}

	ramPercent, err := h.memPercent()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		ramPercent = 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, ramPercent
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
