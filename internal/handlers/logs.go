package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/waldiez/waldiez-go/internal/database"
	"github.com/waldiez/waldiez-go/internal/models"
)

type LogsHandler struct {
	db *database.DB
}

func NewLogsHandler(db *database.DB) *LogsHandler {
	return &LogsHandler{db: db}
}

func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	var conditions []string
	args := []interface{}{}

	if action := r.URL.Query().Get("action"); action != "" {
		conditions = append(conditions, "a.action = ?")
		args = append(args, action)
	}
	if category := r.URL.Query().Get("category"); category != "" {
		conditions = append(conditions, "a.category = ?")
		args = append(args, category)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM audit_logs a ` + where
	var total int
	if err := h.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count logs")
		return
	}

	query := `SELECT a.id, a.user_id, COALESCE(u.username, a.user_id), a.action, a.category, a.target, a.target_id, a.details, a.created_at
		FROM audit_logs a LEFT JOIN users u ON a.user_id = u.id
		` + where + ` ORDER BY a.created_at DESC LIMIT ? OFFSET ?`
	queryArgs := append(args, limit, offset)

	rows, err := h.db.Query(query, queryArgs...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list logs")
		return
	}
	defer rows.Close()

	logs := []models.AuditLog{}
	for rows.Next() {
		var l models.AuditLog
		var username sql.NullString
		if err := rows.Scan(&l.ID, &l.UserID, &username, &l.Action, &l.Category, &l.Target, &l.TargetID, &l.Details, &l.CreatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to scan log")
			return
		}
		if username.Valid {
			l.Username = username.String
		} else {
			l.Username = l.UserID
		}
		logs = append(logs, l)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
	})
}

func (h *LogsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var flows, snapshots, activity int
	h.db.QueryRow("SELECT COUNT(*) FROM flows").Scan(&flows)
	h.db.QueryRow("SELECT COUNT(*) FROM flow_snapshots").Scan(&snapshots)
	h.db.QueryRow("SELECT COUNT(*) FROM audit_logs").Scan(&activity)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_flows":     flows,
		"total_snapshots": snapshots,
		"total_activity":  activity,
	})
}

// FlowLogs lists audit entries scoped to one flow.
func (h *LogsHandler) FlowLogs(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "id")

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	rows, err := h.db.Query(
		`SELECT a.id, a.user_id, COALESCE(u.username, a.user_id), a.action, a.category, a.target, a.target_id, a.details, a.created_at
			FROM audit_logs a LEFT JOIN users u ON a.user_id = u.id
			WHERE a.target = 'flow' AND a.target_id = ? ORDER BY a.created_at DESC LIMIT ?`,
		flowID, limit,
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list flow logs")
		return
	}
	defer rows.Close()

	logs := []models.AuditLog{}
	for rows.Next() {
		var l models.AuditLog
		var username sql.NullString
		if err := rows.Scan(&l.ID, &l.UserID, &username, &l.Action, &l.Category, &l.Target, &l.TargetID, &l.Details, &l.CreatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to scan log")
			return
		}
		if username.Valid {
			l.Username = username.String
		} else {
			l.Username = l.UserID
		}
		logs = append(logs, l)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
}
