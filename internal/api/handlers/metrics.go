package handlers

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/Conceptual-Machines/magda-harmony/internal/config"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/hako/durafmt"
)

type MetricsHandler struct {
	startTime time.Time
	version   string
	cfg       *config.Config
}

func NewMetricsHandler(version string, cfg *config.Config) *MetricsHandler {
	return &MetricsHandler{
		startTime: time.Now(),
		version:   version,
		cfg:       cfg,
	}
}

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
)

// formatUptime formats the uptime duration with seconds rounded to 2 decimal places
func formatUptime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % secondsPerMinute
	seconds := d.Seconds() - float64(hours*secondsPerHour) - float64(minutes*secondsPerMinute)

	if hours > 0 {
		return fmt.Sprintf("%dh%dm%.2fs", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm%.2fs", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", seconds)
}

// humanUptime renders the two largest units, e.g. "1 hour 2 minutes"
func humanUptime(d time.Duration) string {
	return durafmt.Parse(d.Round(time.Second)).LimitFirstN(2).String()
}

type MetricsResponse struct {
	Status      string                 `json:"status"`
	Uptime      string                 `json:"uptime"`
	UptimeHuman string                 `json:"uptime_human"`
	Timestamp   string                 `json:"timestamp"`
	Version     string                 `json:"version"`
	StartTime   string                 `json:"start_time"`
	System      SystemMetrics          `json:"system"`
	API         map[string]interface{} `json:"api"`
}

type SystemMetrics struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAllocMB   uint64 `json:"mem_alloc_mb"`
	MemTotalMB   uint64 `json:"mem_total_mb"`
	MemAlloc     string `json:"mem_alloc"`
	MemTotal     string `json:"mem_total"`
	NumGC        uint32 `json:"num_gc"`
}

const (
	bytesToMB = 1024 * 1024
)

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.startTime)

	metrics := MetricsResponse{
		Status:      statusHealthy,
		Uptime:      formatUptime(uptime),
		UptimeHuman: humanUptime(uptime),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Version:     h.version,
		StartTime:   h.startTime.UTC().Format(time.RFC3339),
		System: SystemMetrics{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAllocMB:   m.Alloc / bytesToMB,
			MemTotalMB:   m.TotalAlloc / bytesToMB,
			MemAlloc:     humanize.Bytes(m.Alloc),
			MemTotal:     humanize.Bytes(m.TotalAlloc),
			NumGC:        m.NumGC,
		},
		API: map[string]interface{}{
			"version":     "1.0.0",
			"environment": h.cfg.Environment,
			"auth_mode":   h.cfg.AuthMode,
			"spelling": map[string]interface{}{
				"default_strategy":         h.cfg.SpellingStrategy,
				"max_pitch_classes":        h.cfg.SpellingMaxPitchClasses,
				"max_fifths_pitch_classes": h.cfg.SpellingMaxFifthsPitchClasses,
				"batch_workers":            h.cfg.SpellingBatchWorkers,
				"max_batch_size":           h.cfg.SpellingMaxBatchSize,
			},
			"rate_limit": map[string]interface{}{
				"rps":   h.cfg.RateLimitRPS,
				"burst": h.cfg.RateLimitBurst,
			},
			"cloudwatch": h.cfg.CloudWatchEnabled,
		},
	}

	c.JSON(http.StatusOK, metrics)
}
