// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/qwirl/cliparse"
	"github.com/danielhkuo/qwirl/middleware"
	"github.com/danielhkuo/qwirl/models"
)

type AggregateHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAggregateHandler(db *sql.DB, cfg cliparse.Config) *AggregateHandler {
	return &AggregateHandler{db: db, cfg: cfg}
}

// GetQwirl handles GET /qwirls/:username
// Returns the questionnaire aggregate for a viewer: items with options and
// live statistics. With a valid X-Viewer-Token, the viewer's session state
// and per-item responses are folded in.
func (h *AggregateHandler) GetQwirl(w http.ResponseWriter, r *http.Request) {
	ownerUsername := r.PathValue("username")
	if ownerUsername == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username is required")
		return
	}

	var qwirlID, title, status string
	err := h.db.QueryRow(`
		SELECT id, title, status FROM qwirl WHERE owner_username = $1
	`, ownerUsername).Scan(&qwirlID, &title, &status)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Qwirl not found")
		return
	}
	if err != nil {
		slog.Error("failed to query qwirl", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Drafts are not visible to viewers
	if status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusNotFound, "Qwirl not found")
		return
	}

	items, err := loadItems(h.db, qwirlID)
	if err != nil {
		slog.Error("failed to load items", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	view := models.SessionView{
		QwirlID:         qwirlID,
		OwnerUsername:   ownerUsername,
		Title:           title,
		Status:          models.SessionNotStarted,
		UnansweredCount: len(items),
		Items:           items,
	}

	if token := r.Header.Get("X-Viewer-Token"); token != "" {
		if err := h.foldInSession(&view, qwirlID, token); err != nil {
			slog.Error("failed to load session", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// foldInSession overlays the viewer's session onto the aggregate. An
// unknown token is treated as no session rather than an error, so a stale
// client token degrades to the logged-out view.
func (h *AggregateHandler) foldInSession(view *models.SessionView, qwirlID, token string) error {
	var sessionID, status string
	var wavelength *float64
	err := h.db.QueryRow(`
		SELECT id, status, wavelength
		FROM response_session
		WHERE qwirl_id = $1 AND viewer_token = $2
	`, qwirlID, token).Scan(&sessionID, &status, &wavelength)

	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	view.SessionID = sessionID
	view.Status = status
	view.Wavelength = wavelength

	rows, err := h.db.Query(`
		SELECT item_id, selected_answer, comment
		FROM item_response
		WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return err
	}
	defer rows.Close()

	responses := map[string]*models.UserResponse{}
	for rows.Next() {
		var itemID string
		resp := &models.UserResponse{}
		if err := rows.Scan(&itemID, &resp.SelectedAnswer, &resp.Comment); err != nil {
			return err
		}
		responses[itemID] = resp
	}
	if err := rows.Err(); err != nil {
		return err
	}

	view.CompletedResponseCount = len(responses)
	view.AnsweredCount = 0
	view.SkippedCount = 0
	for i := range view.Items {
		resp, ok := responses[view.Items[i].ID]
		if !ok {
			continue
		}
		view.Items[i].UserResponse = resp
		if resp.SelectedAnswer != nil {
			view.AnsweredCount++
		} else {
			view.SkippedCount++
		}
	}
	view.UnansweredCount = len(view.Items) - view.AnsweredCount - view.SkippedCount
	if view.UnansweredCount < 0 {
		view.UnansweredCount = 0
	}
	return nil
}
