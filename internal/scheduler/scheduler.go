package scheduler

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/waldiez/waldiez-go/internal/database"
	"github.com/waldiez/waldiez-go/internal/logger"
)

// Scheduler snapshots flow documents on a cron cadence so edits can be rolled
// back. Each run copies every flow whose document changed since its latest
// snapshot, then prunes snapshots beyond the retention limit.
type Scheduler struct {
	cron          *cron.Cron
	entries       map[string]cron.EntryID
	mu            sync.Mutex
	db            *database.DB
	keep          int
	retentionStop chan struct{}
}

func New(db *database.DB, keep int) *Scheduler {
	if keep < 1 {
		keep = 1
	}
	return &Scheduler{
		cron:    cron.New(),
		entries: make(map[string]cron.EntryID),
		db:      db,
		keep:    keep,
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Success("Scheduler started")
}

func (s *Scheduler) Stop() {
	if s.retentionStop != nil {
		close(s.retentionStop)
	}
	s.cron.Stop()
	logger.Success("Scheduler stopped")
}

// ScheduleSnapshots registers the periodic snapshot job. Calling it again
// replaces the previous cadence.
func (s *Scheduler) ScheduleSnapshots(cronExpr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, exists := s.entries["snapshots"]; exists {
		s.cron.Remove(entryID)
	}

	entryID, err := s.cron.AddFunc(cronExpr, s.SnapshotAll)
	if err != nil {
		return err
	}

	s.entries["snapshots"] = entryID
	logger.Success("Snapshot job scheduled with cron=%s", cronExpr)
	return nil
}

// SnapshotAll copies every changed flow document into flow_snapshots. Also
// called from the API for an on-demand snapshot pass.
func (s *Scheduler) SnapshotAll() {
	rows, err := s.db.Query("SELECT id, document FROM flows")
	if err != nil {
		logger.Error("Snapshot pass failed: %v", err)
		return
	}
	defer rows.Close()

	type candidate struct{ id, document string }
	var flows []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.id, &c.document); err != nil {
			logger.Error("Failed to scan flow: %v", err)
			continue
		}
		flows = append(flows, c)
	}

	count := 0
	for _, f := range flows {
		if s.snapshotFlow(f.id, f.document) {
			count++
		}
	}
	if count > 0 {
		logger.Info("Snapshot pass: captured %d flow(s)", count)
	}
}

// SnapshotFlow captures one flow immediately, skipping the no-change check.
func (s *Scheduler) SnapshotFlow(flowID, document string) {
	id := uuid.New().String()
	now := time.Now().UTC()
	if _, err := s.db.Exec(
		"INSERT INTO flow_snapshots (id, flow_id, document, created_at) VALUES (?, ?, ?, ?)",
		id, flowID, document, now,
	); err != nil {
		logger.Error("Failed to snapshot flow %s: %v", flowID, err)
		return
	}
	s.pruneSnapshots(flowID)
}

func (s *Scheduler) snapshotFlow(flowID, document string) bool {
	var latest string
	err := s.db.QueryRow(
		"SELECT document FROM flow_snapshots WHERE flow_id = ? ORDER BY created_at DESC LIMIT 1",
		flowID,
	).Scan(&latest)
	if err == nil && latest == document {
		return false
	}

	s.SnapshotFlow(flowID, document)
	return true
}

func (s *Scheduler) pruneSnapshots(flowID string) {
	result, err := s.db.Exec(
		`DELETE FROM flow_snapshots WHERE flow_id = ? AND id NOT IN (
			SELECT id FROM flow_snapshots WHERE flow_id = ? ORDER BY created_at DESC LIMIT ?
		)`,
		flowID, flowID, s.keep,
	)
	if err != nil {
		logger.Error("Failed to prune snapshots for flow %s: %v", flowID, err)
		return
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		logger.Info("Pruned %d old snapshot(s) for flow %s", rows, flowID)
	}
}

// StartDataRetention starts a background goroutine that trims old audit logs daily.
func (s *Scheduler) StartDataRetention() {
	s.retentionStop = make(chan struct{})
	go func() {
		s.cleanupOldAuditLogs()

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-s.retentionStop:
				return
			case <-ticker.C:
				s.cleanupOldAuditLogs()
			}
		}
	}()
}

func (s *Scheduler) cleanupOldAuditLogs() {
	result, err := s.db.Exec("DELETE FROM audit_logs WHERE created_at < datetime('now', '-30 days')")
	if err != nil {
		logger.Error("Data retention cleanup failed: %v", err)
		return
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		logger.Info("Data retention: cleaned up %d old audit entries", rows)
	}
}
