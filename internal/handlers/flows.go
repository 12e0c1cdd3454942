package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/waldiez/waldiez-go/internal/database"
	"github.com/waldiez/waldiez-go/internal/flow"
	"github.com/waldiez/waldiez-go/internal/middleware"
	"github.com/waldiez/waldiez-go/internal/models"
	"github.com/waldiez/waldiez-go/internal/scheduler"
	"github.com/waldiez/waldiez-go/internal/secrets"
	"github.com/waldiez/waldiez-go/internal/websocket"
)

// FlowsHandler persists flow documents. Every document passes through the
// import mapper on the way in, so whatever the client uploads is normalized
// before it hits the database. Tool secrets and model API keys are encrypted
// at rest and decrypted on read.
type FlowsHandler struct {
	db        *database.DB
	secrets   *secrets.Manager
	hub       *websocket.Hub
	scheduler *scheduler.Scheduler
}

func NewFlowsHandler(db *database.DB, secretsMgr *secrets.Manager, hub *websocket.Hub, sched *scheduler.Scheduler) *FlowsHandler {
	return &FlowsHandler{db: db, secrets: secretsMgr, hub: hub, scheduler: sched}
}

type flowListEntry struct {
	ID          string `json:"id"`
	StorageID   string `json:"storage_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// List returns flow metadata without the documents themselves.
func (h *FlowsHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query("SELECT id, storage_id, name, description, created_at, updated_at FROM flows ORDER BY updated_at DESC")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	flows := []flowListEntry{}
	for rows.Next() {
		var e flowListEntry
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&e.ID, &e.StorageID, &e.Name, &e.Description, &createdAt, &updatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		e.CreatedAt = createdAt.Format(time.RFC3339)
		e.UpdatedAt = updatedAt.Format(time.RFC3339)
		flows = append(flows, e)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, flows)
}

// Create imports an uploaded flow document, normalizes it and stores it.
func (h *FlowsHandler) Create(w http.ResponseWriter, r *http.Request) {
	doc, err := readDocument(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f, err := flow.ImportFlow(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid flow document: "+err.Error())
		return
	}

	stored, err := h.persistableDocument(f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode flow")
		return
	}

	now := time.Now().UTC()
	_, err = h.db.Exec(
		"INSERT INTO flows (id, storage_id, name, description, document, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		f.ID, f.StorageID, f.Name, f.Description, stored, now, now,
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	userID := middleware.GetUserID(r.Context())
	h.db.LogAudit(userID, "flow_created", "flows", "flow", f.ID, f.Name)
	h.hub.Broadcast(websocket.Message{Type: "flow_created", Payload: mustJSON(map[string]string{"id": f.ID, "name": f.Name})})

	writeJSON(w, http.StatusCreated, flow.ExportFlow(f, true, true))
}

// Validate runs a document through the mapper without storing anything,
// returning the normalized form plus the link report.
func (h *FlowsHandler) Validate(w http.ResponseWriter, r *http.Request) {
	doc, err := readDocument(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f, err := flow.ImportFlow(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid flow document: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"flow":  flow.ExportFlow(f, true, true),
		"links": flow.LinksOf(f),
	})
}

// Get returns one flow document, redacted unless hide_secrets=false.
func (h *FlowsHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, ok := h.loadFlow(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, flow.ExportFlow(f, queryBool(r, "hide_secrets", true), queryBool(r, "skip_links", true)))
}

// Update replaces a flow's document, snapshotting the previous version first.
func (h *FlowsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var previous string
	if err := h.db.QueryRow("SELECT document FROM flows WHERE id = ?", id).Scan(&previous); err != nil {
		writeError(w, http.StatusNotFound, "flow not found")
		return
	}

	doc, err := readDocument(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f, err := flow.ImportFlow(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid flow document: "+err.Error())
		return
	}

	stored, err := h.persistableDocument(f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode flow")
		return
	}

	if h.scheduler != nil {
		h.scheduler.SnapshotFlow(id, previous)
	}

	now := time.Now().UTC()
	res, err := h.db.Exec(
		"UPDATE flows SET storage_id = ?, name = ?, description = ?, document = ?, updated_at = ? WHERE id = ?",
		f.StorageID, f.Name, f.Description, stored, now, id,
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "flow not found")
		return
	}

	userID := middleware.GetUserID(r.Context())
	h.db.LogAudit(userID, "flow_updated", "flows", "flow", id, f.Name)
	h.hub.BroadcastToTopic(websocket.FlowTopic(id), websocket.Message{
		Type:    "flow_updated",
		Payload: mustJSON(map[string]string{"id": id, "name": f.Name}),
	})

	writeJSON(w, http.StatusOK, flow.ExportFlow(f, true, true))
}

// Delete removes a flow; snapshots go with it via the cascade.
func (h *FlowsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.db.Exec("DELETE FROM flows WHERE id = ?", id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "flow not found")
		return
	}

	userID := middleware.GetUserID(r.Context())
	h.db.LogAudit(userID, "flow_deleted", "flows", "flow", id, "")
	h.hub.Broadcast(websocket.Message{Type: "flow_deleted", Payload: mustJSON(map[string]string{"id": id})})

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Export serves a flow as a downloadable .waldiez file. Secrets stay
// redacted unless hide_secrets=false is passed explicitly.
func (h *FlowsHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, ok := h.loadFlow(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	data, err := flow.MarshalFlow(f, queryBool(r, "hide_secrets", true), queryBool(r, "skip_links", true))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to serialize flow")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.Name+`.waldiez"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Links reports which models and tools each agent uses, and which sit unused.
func (h *FlowsHandler) Links(w http.ResponseWriter, r *http.Request) {
	f, ok := h.loadFlow(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, flow.LinksOf(f))
}

// Graph returns the node/edge projection the canvas renders.
func (h *FlowsHandler) Graph(w http.ResponseWriter, r *http.Request) {
	f, ok := h.loadFlow(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, flow.GraphOf(f))
}

type snapshotEntry struct {
	ID        string `json:"id"`
	FlowID    string `json:"flow_id"`
	CreatedAt string `json:"created_at"`
}

// ListSnapshots returns snapshot metadata for one flow, newest first.
func (h *FlowsHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rows, err := h.db.Query(
		"SELECT id, flow_id, created_at FROM flow_snapshots WHERE flow_id = ? ORDER BY created_at DESC",
		id,
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	snapshots := []snapshotEntry{}
	for rows.Next() {
		var s snapshotEntry
		var createdAt time.Time
		if err := rows.Scan(&s.ID, &s.FlowID, &createdAt); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.CreatedAt = createdAt.Format(time.RFC3339)
		snapshots = append(snapshots, s)
	}

	writeJSON(w, http.StatusOK, snapshots)
}

// CreateSnapshot captures the current document on demand.
func (h *FlowsHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var document string
	if err := h.db.QueryRow("SELECT document FROM flows WHERE id = ?", id).Scan(&document); err != nil {
		writeError(w, http.StatusNotFound, "flow not found")
		return
	}

	h.scheduler.SnapshotFlow(id, document)

	userID := middleware.GetUserID(r.Context())
	h.db.LogAudit(userID, "flow_snapshot", "flows", "flow", id, "")
	writeJSON(w, http.StatusCreated, map[string]string{"status": "snapshotted"})
}

// RestoreSnapshot replaces a flow's document with a stored snapshot.
func (h *FlowsHandler) RestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snapshotID := chi.URLParam(r, "snapshotId")

	var document string
	err := h.db.QueryRow(
		"SELECT document FROM flow_snapshots WHERE id = ? AND flow_id = ?",
		snapshotID, id,
	).Scan(&document)
	if err != nil {
		writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}

	f, err := flow.ImportFlow([]byte(document))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stored snapshot is unreadable")
		return
	}

	now := time.Now().UTC()
	_, err = h.db.Exec(
		"UPDATE flows SET name = ?, description = ?, document = ?, updated_at = ? WHERE id = ?",
		f.Name, f.Description, document, now, id,
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	userID := middleware.GetUserID(r.Context())
	h.db.LogAudit(userID, "flow_restored", "flows", "flow", id, "Restored snapshot "+snapshotID)
	h.hub.BroadcastToTopic(websocket.FlowTopic(id), websocket.Message{
		Type:    "flow_restored",
		Payload: mustJSON(map[string]string{"id": id, "snapshot_id": snapshotID}),
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

// loadFlow reads a stored document, decrypts its credentials and re-imports
// it. A false return means the response has already been written.
func (h *FlowsHandler) loadFlow(w http.ResponseWriter, id string) (*models.Flow, bool) {
	var document string
	if err := h.db.QueryRow("SELECT document FROM flows WHERE id = ?", id).Scan(&document); err != nil {
		writeError(w, http.StatusNotFound, "flow not found")
		return nil, false
	}

	f, err := flow.ImportFlow([]byte(document))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stored flow is unreadable")
		return nil, false
	}

	h.decryptCredentials(f)
	return f, true
}

// persistableDocument encrypts the flow's credentials and serializes it for
// storage. Links are never embedded in the stored form.
func (h *FlowsHandler) persistableDocument(f *models.Flow) (string, error) {
	if err := h.encryptCredentials(f); err != nil {
		return "", err
	}
	data, err := flow.MarshalFlow(f, false, true)
	if err != nil {
		return "", err
	}
	h.decryptCredentials(f)
	return string(data), nil
}

func (h *FlowsHandler) encryptCredentials(f *models.Flow) error {
	if h.secrets == nil {
		return nil
	}
	for i := range f.Data.Tools {
		enc, err := h.secrets.EncryptSecrets(f.Data.Tools[i].Data.Secrets)
		if err != nil {
			return err
		}
		f.Data.Tools[i].Data.Secrets = enc
	}
	for i := range f.Data.Models {
		if f.Data.Models[i].Data.APIKey == "" {
			continue
		}
		enc, err := h.secrets.Encrypt(f.Data.Models[i].Data.APIKey)
		if err != nil {
			return err
		}
		f.Data.Models[i].Data.APIKey = enc
	}
	return nil
}

// decryptCredentials is tolerant: values that fail to decrypt are assumed to
// predate encryption at rest and are left alone.
func (h *FlowsHandler) decryptCredentials(f *models.Flow) {
	if h.secrets == nil {
		return
	}
	for i := range f.Data.Tools {
		for k, v := range f.Data.Tools[i].Data.Secrets {
			if dec, err := h.secrets.Decrypt(v); err == nil {
				f.Data.Tools[i].Data.Secrets[k] = dec
			}
		}
	}
	for i := range f.Data.Models {
		if dec, err := h.secrets.Decrypt(f.Data.Models[i].Data.APIKey); err == nil {
			f.Data.Models[i].Data.APIKey = dec
		}
	}
}

func readDocument(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, 8<<20) // flow documents can be large
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func queryBool(r *http.Request, name string, fallback bool) bool {
	switch r.URL.Query().Get(name) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	return fallback
}

func mustJSON(v interface{}) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
