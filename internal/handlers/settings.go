package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/waldiez/waldiez-go/internal/database"
	"github.com/waldiez/waldiez-go/internal/logger"
	"github.com/waldiez/waldiez-go/internal/middleware"
	"github.com/waldiez/waldiez-go/internal/secrets"
)

// SettingsHandler stores editor preferences as key/value pairs. Keys with a
// "secret_" prefix are encrypted at rest and never returned in the listing.
type SettingsHandler struct {
	db         *database.DB
	secretsMgr *secrets.Manager
}

func NewSettingsHandler(db *database.DB, secretsMgr *secrets.Manager) *SettingsHandler {
	return &SettingsHandler{db: db, secretsMgr: secretsMgr}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query("SELECT key, value FROM settings ORDER BY key ASC")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	defer rows.Close()

	settings := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			logger.Warn("scan setting row: %v", err)
			continue
		}
		if strings.HasPrefix(key, "secret_") {
			continue
		}
		settings[key] = value
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for key, value := range req {
		if strings.HasPrefix(key, "secret_") && h.secretsMgr != nil {
			enc, err := h.secretsMgr.Encrypt(value)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to encrypt setting "+key)
				return
			}
			value = enc
		}
		h.upsertSetting(key, value)
	}

	userID := middleware.GetUserID(r.Context())
	h.db.LogAudit(userID, "settings_updated", "settings", "settings", "", "")

	h.Get(w, r)
}

func (h *SettingsHandler) upsertSetting(key, value string) {
	if _, err := h.db.Exec(
		"INSERT INTO settings (id, key, value) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		uuid.New().String(), key, value,
	); err != nil {
		logger.Error("Failed to upsert setting %s: %v", key, err)
	}
}
