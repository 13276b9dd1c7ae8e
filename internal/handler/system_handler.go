package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/config"
)

const statusInterval = 10 * time.Second

// SystemHandler streams runtime and storage status to admins via SSE.
type SystemHandler struct {
	rdb       *redis.Client
	uploadDir string
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		rdb:       rdb,
		uploadDir: cfg.UploadDir,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type systemStatus struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`

	Goroutines  int    `json:"goroutines"`
	HeapAlloc   uint64 `json:"heap_alloc"`
	NumGC       uint32 `json:"num_gc"`
	AppRSSBytes uint64 `json:"app_rss_bytes"`
	GoVersion   string `json:"go_version"`

	// Storage volume holding uploaded files.
	UploadDiskUsedBytes  uint64  `json:"upload_disk_used_bytes"`
	UploadDiskTotalBytes uint64  `json:"upload_disk_total_bytes"`
	UploadDiskPercent    float64 `json:"upload_disk_percent"`

	// Audit entries waiting for the audit worker.
	AuditQueue int64 `json:"audit_queue"`
	RedisOK    bool  `json:"redis_ok"`
}

// StatusSSE godoc
// GET /api/v1/admin/system/status
func (h *SystemHandler) StatusSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	h.writeStatus(c)
	for {
		select {
		case <-reqCtx.Done():
			return
		case <-ticker.C:
			h.writeStatus(c)
		}
	}
}

func (h *SystemHandler) writeStatus(c *gin.Context) {
	data, err := json.Marshal(h.collect(c.Request.Context()))
	if err != nil {
		return
	}
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(data)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

func (h *SystemHandler) collect(ctx context.Context) systemStatus {
	s := systemStatus{
		Timestamp: time.Now().Unix(),
		Uptime:    formatDuration(time.Since(h.startTime)),
		GoVersion: runtime.Version(),
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.Goroutines = runtime.NumGoroutine()
	s.HeapAlloc = ms.HeapAlloc
	s.NumGC = ms.NumGC
	s.AppRSSBytes, _ = readProcessRSS()

	if total, free, err := readDisk(h.uploadDir); err == nil && total > 0 {
		s.UploadDiskTotalBytes = total
		s.UploadDiskUsedBytes = total - free
		s.UploadDiskPercent = float64(s.UploadDiskUsedBytes) / float64(total) * 100
	}

	n, err := h.rdb.LLen(ctx, config.WorkerKey.PersistAuditQueue).Result()
	if err != nil {
		h.log.Warn().Err(err).Msg("Read audit queue length failed")
	} else {
		s.AuditQueue = n
		s.RedisOK = true
	}
	return s
}

// readDisk reports the size and free space of the filesystem holding path.
func readDisk(path string) (total, free uint64, err error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	total = stat.Blocks * uint64(stat.Bsize)
	free = stat.Bavail * uint64(stat.Bsize)
	return total, free, nil
}

// readProcessRSS reads VmRSS from /proc/self/status.
func readProcessRSS() (uint64, error) {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "VmRSS:") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				break
			}
			kb, _ := strconv.ParseUint(fields[1], 10, 64)
			return kb * 1024, nil
		}
	}
	return 0, fmt.Errorf("VmRSS not found")
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
