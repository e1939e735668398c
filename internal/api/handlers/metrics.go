package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/Conceptual-Machines/prdgen-api/internal/config"
	"github.com/gin-gonic/gin"
)

const bytesPerMB = 1 << 20

// MetricsHandler serves process-level runtime statistics for dashboards and
// smoke checks. Request counters live in CloudWatch and Sentry, not here.
type MetricsHandler struct {
	startTime time.Time
	version   string
	cfg       *config.Config
}

func NewMetricsHandler(cfg *config.Config, version string) *MetricsHandler {
	return &MetricsHandler{
		startTime: time.Now(),
		version:   version,
		cfg:       cfg,
	}
}

type MetricsResponse struct {
	Status    string      `json:"status"`
	Uptime    string      `json:"uptime"`
	Timestamp string      `json:"timestamp"`
	Version   string      `json:"version"`
	StartTime string      `json:"start_time"`
	System    SystemStats `json:"system"`
	API       APIInfo     `json:"api"`
}

type SystemStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAllocMB   uint64 `json:"mem_alloc_mb"`
	MemTotalMB   uint64 `json:"mem_total_mb"`
	NumGC        uint32 `json:"num_gc"`
}

type APIInfo struct {
	Service      string `json:"service"`
	DefaultModel string `json:"default_model"`
	Environment  string `json:"environment"`
}

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.JSON(http.StatusOK, MetricsResponse{
		Status:    "healthy",
		Uptime:    formatUptime(time.Since(h.startTime)),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		StartTime: h.startTime.UTC().Format(time.RFC3339),
		System: SystemStats{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAllocMB:   mem.Alloc / bytesPerMB,
			MemTotalMB:   mem.TotalAlloc / bytesPerMB,
			NumGC:        mem.NumGC,
		},
		API: APIInfo{
			Service:      "prdgen-api",
			DefaultModel: h.cfg.Model,
			Environment:  h.cfg.Environment,
		},
	})
}

// formatUptime renders a duration as e.g. "26h3m42.51s", dropping sub-10ms
// noise.
func formatUptime(d time.Duration) string {
	return d.Truncate(10 * time.Millisecond).String()
}
