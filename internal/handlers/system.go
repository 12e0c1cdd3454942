package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/waldiez/waldiez-go/internal/database"
	"github.com/waldiez/waldiez-go/internal/netutil"
)

var startTime = time.Now()

// AppVersion is set from main at startup via ldflags or the VERSION file.
var AppVersion = "dev"

type SystemHandler struct {
	db      *database.DB
	dataDir string
	port    int
}

func NewSystemHandler(db *database.DB, dataDir string, port int) *SystemHandler {
	return &SystemHandler{db: db, dataDir: dataDir, port: port}
}

func (h *SystemHandler) Info(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(startTime)

	dbSize := "unknown"
	dbPath := filepath.Join(h.dataDir, "waldiez.db")
	if info, err := os.Stat(dbPath); err == nil {
		dbSize = formatBytes(info.Size())
	}

	var flowCount, snapshotCount int
	h.db.QueryRow("SELECT COUNT(*) FROM flows").Scan(&flowCount)
	h.db.QueryRow("SELECT COUNT(*) FROM flow_snapshots").Scan(&snapshotCount)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":        AppVersion,
		"go_version":     runtime.Version(),
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
		"uptime":         formatDuration(uptime),
		"db_size":        dbSize,
		"flow_count":     flowCount,
		"snapshot_count": snapshotCount,
		"lan_ip":         netutil.GetLANIP(),
		"tailscale_ip":   netutil.GetTailscaleIP(),
		"port":           h.port,
	})
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case b >= GB:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
