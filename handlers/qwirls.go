// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/qwirl/auth"
	"github.com/danielhkuo/qwirl/cliparse"
	"github.com/danielhkuo/qwirl/middleware"
	"github.com/danielhkuo/qwirl/models"
)

type QwirlHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewQwirlHandler(db *sql.DB, cfg cliparse.Config) *QwirlHandler {
	return &QwirlHandler{db: db, cfg: cfg}
}

// CreateQwirl handles POST /qwirls
func (h *QwirlHandler) CreateQwirl(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQwirlRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.OwnerUsername == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "owner_username is required")
		return
	}
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	// One qwirl per owner username
	var existing string
	err := h.db.QueryRow("SELECT id FROM qwirl WHERE owner_username = $1", req.OwnerUsername).Scan(&existing)
	if err == nil {
		middleware.ErrorResponse(w, http.StatusConflict, "Username already has a qwirl")
		return
	}
	if err != sql.ErrNoRows {
		slog.Error("failed to query qwirl", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	qwirlID := uuid.NewString()
	ownerKey := auth.GenerateOwnerKey(qwirlID, h.cfg.OwnerKeySalt)

	_, err = h.db.Exec(`
		INSERT INTO qwirl (id, owner_username, title, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, qwirlID, req.OwnerUsername, req.Title, models.StatusDraft, time.Now())

	if err != nil {
		slog.Error("failed to insert qwirl", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create qwirl")
		return
	}

	slog.Info("qwirl created", "qwirl_id", qwirlID, "owner", req.OwnerUsername)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateQwirlResponse{
		QwirlID:  qwirlID,
		OwnerKey: ownerKey,
	})
}

// AddItem handles POST /qwirls/:id/items
func (h *QwirlHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	qwirlID := r.PathValue("id")
	if qwirlID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "qwirl_id is required")
		return
	}

	// Validate owner key
	ownerKey := r.Header.Get("X-Owner-Key")
	if err := auth.ValidateOwnerKey(qwirlID, ownerKey, h.cfg.OwnerKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid owner key")
		return
	}

	var req models.AddItemRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Prompt == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if len(req.Options) < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least 2 options are required")
		return
	}
	if req.Position < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "position must be >= 1")
		return
	}
	ownerAnswerValid := false
	for _, opt := range req.Options {
		if opt == req.OwnerAnswer {
			ownerAnswerValid = true
			break
		}
	}
	if !ownerAnswerValid {
		middleware.ErrorResponse(w, http.StatusBadRequest, "owner_answer must be one of the options")
		return
	}

	// Check qwirl exists and is in draft status
	var status string
	err := h.db.QueryRow("SELECT status FROM qwirl WHERE id = $1", qwirlID).Scan(&status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Qwirl not found")
		return
	}
	if err != nil {
		slog.Error("failed to query qwirl", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.StatusDraft {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot add items to a published qwirl")
		return
	}

	// Position must be free
	var taken int
	err = h.db.QueryRow(`
		SELECT COUNT(*) FROM qwirl_item WHERE qwirl_id = $1 AND position = $2
	`, qwirlID, req.Position).Scan(&taken)
	if err != nil {
		slog.Error("failed to query items", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if taken > 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "position is already taken")
		return
	}

	itemID := uuid.NewString()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO qwirl_item (id, qwirl_id, position, prompt, owner_answer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, itemID, qwirlID, req.Position, req.Prompt, req.OwnerAnswer, time.Now())

	if err != nil {
		slog.Error("failed to insert item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create item")
		return
	}

	for i, label := range req.Options {
		_, err = tx.Exec(`
			INSERT INTO item_option (item_id, idx, label)
			VALUES ($1, $2, $3)
		`, itemID, i, label)
		if err != nil {
			slog.Error("failed to insert option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create item")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create item")
		return
	}

	slog.Info("item added", "qwirl_id", qwirlID, "item_id", itemID, "position", req.Position)

	middleware.JSONResponse(w, http.StatusCreated, models.AddItemResponse{
		ItemID: itemID,
	})
}

// PublishQwirl handles POST /qwirls/:id/publish
func (h *QwirlHandler) PublishQwirl(w http.ResponseWriter, r *http.Request) {
	qwirlID := r.PathValue("id")
	if qwirlID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "qwirl_id is required")
		return
	}

	// Validate owner key
	ownerKey := r.Header.Get("X-Owner-Key")
	if err := auth.ValidateOwnerKey(qwirlID, ownerKey, h.cfg.OwnerKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid owner key")
		return
	}

	// Check qwirl exists and is in draft status
	var status string
	var itemCount int
	err := h.db.QueryRow(`
		SELECT q.status, COUNT(i.id)
		FROM qwirl q
		LEFT JOIN qwirl_item i ON q.id = i.qwirl_id
		WHERE q.id = $1
		GROUP BY q.status
	`, qwirlID).Scan(&status, &itemCount)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Qwirl not found")
		return
	}
	if err != nil {
		slog.Error("failed to query qwirl", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.StatusDraft {
		middleware.ErrorResponse(w, http.StatusConflict, "Qwirl is not in draft status")
		return
	}

	if itemCount < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Qwirl must have at least 1 item")
		return
	}

	_, err = h.db.Exec(`
		UPDATE qwirl SET status = $1 WHERE id = $2
	`, models.StatusOpen, qwirlID)

	if err != nil {
		slog.Error("failed to publish qwirl", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to publish qwirl")
		return
	}

	slog.Info("qwirl published", "qwirl_id", qwirlID, "items", itemCount)

	middleware.JSONResponse(w, http.StatusOK, models.PublishQwirlResponse{
		Status: models.StatusOpen,
	})
}

// GetQwirlAdmin handles GET /qwirls/:id/admin
// Returns qwirl details for owner access using qwirl ID and owner key
func (h *QwirlHandler) GetQwirlAdmin(w http.ResponseWriter, r *http.Request) {
	qwirlID := r.PathValue("id")
	if qwirlID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "qwirl_id is required")
		return
	}

	// Validate owner key
	ownerKey := r.Header.Get("X-Owner-Key")
	if err := auth.ValidateOwnerKey(qwirlID, ownerKey, h.cfg.OwnerKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid owner key")
		return
	}

	var qwirl models.Qwirl
	err := h.db.QueryRow(`
		SELECT id, owner_username, title, status, created_at
		FROM qwirl
		WHERE id = $1
	`, qwirlID).Scan(&qwirl.ID, &qwirl.OwnerUsername, &qwirl.Title, &qwirl.Status, &qwirl.CreatedAt)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Qwirl not found")
		return
	}
	if err != nil {
		slog.Error("failed to query qwirl", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	items, err := loadItems(h.db, qwirl.ID)
	if err != nil {
		slog.Error("failed to load items", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.QwirlAdminView{
		Qwirl: qwirl,
		Items: items,
	})
}

// loadItems returns a qwirl's items with their options and live vote
// statistics, ordered by position.
func loadItems(db *sql.DB, qwirlID string) ([]models.QwirlItem, error) {
	rows, err := db.Query(`
		SELECT id, position, prompt
		FROM qwirl_item
		WHERE qwirl_id = $1
		ORDER BY position
	`, qwirlID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.QwirlItem{}
	index := map[string]int{}
	for rows.Next() {
		var item models.QwirlItem
		if err := rows.Scan(&item.ID, &item.Position, &item.Prompt); err != nil {
			return nil, err
		}
		item.Options = []string{}
		item.Stats = models.OptionStats{Votes: map[string]int{}}
		index[item.ID] = len(items)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	optRows, err := db.Query(`
		SELECT o.item_id, o.label
		FROM item_option o
		JOIN qwirl_item i ON o.item_id = i.id
		WHERE i.qwirl_id = $1
		ORDER BY o.item_id, o.idx
	`, qwirlID)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()

	for optRows.Next() {
		var itemID, label string
		if err := optRows.Scan(&itemID, &label); err != nil {
			return nil, err
		}
		if i, ok := index[itemID]; ok {
			items[i].Options = append(items[i].Options, label)
		}
	}
	if err := optRows.Err(); err != nil {
		return nil, err
	}

	statRows, err := db.Query(`
		SELECT r.item_id, r.selected_answer, COUNT(*)
		FROM item_response r
		JOIN qwirl_item i ON r.item_id = i.id
		WHERE i.qwirl_id = $1 AND r.selected_answer IS NOT NULL
		GROUP BY r.item_id, r.selected_answer
	`, qwirlID)
	if err != nil {
		return nil, err
	}
	defer statRows.Close()

	for statRows.Next() {
		var itemID, answer string
		var count int
		if err := statRows.Scan(&itemID, &answer, &count); err != nil {
			return nil, err
		}
		if i, ok := index[itemID]; ok {
			items[i].Stats.Votes[answer] = count
			items[i].Stats.TotalResponses += count
			items[i].ResponseCount += count
		}
	}
	return items, statRows.Err()
}
