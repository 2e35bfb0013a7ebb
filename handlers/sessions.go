// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/qwirl/auth"
	"github.com/danielhkuo/qwirl/cliparse"
	"github.com/danielhkuo/qwirl/middleware"
	"github.com/danielhkuo/qwirl/models"
)

type SessionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewSessionHandler(db *sql.DB, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{db: db, cfg: cfg}
}

// StartSession handles POST /qwirls/:username/sessions
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	ownerUsername := r.PathValue("username")
	if ownerUsername == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username is required")
		return
	}

	var req models.StartSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ViewerUsername == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "viewer_username is required")
		return
	}
	if len(req.ViewerUsername) < 2 || len(req.ViewerUsername) > 50 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "viewer_username must be 2-50 characters")
		return
	}

	// Find qwirl by owner username
	var qwirlID, status string
	err := h.db.QueryRow(`
		SELECT id, status FROM qwirl WHERE owner_username = $1
	`, ownerUsername).Scan(&qwirlID, &status)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Qwirl not found")
		return
	}
	if err != nil {
		slog.Error("failed to query qwirl", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Can only respond to published qwirls
	if status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Qwirl is not open for responses")
		return
	}

	// One session per viewer per qwirl
	var existing string
	err = h.db.QueryRow(`
		SELECT id FROM response_session WHERE qwirl_id = $1 AND viewer_username = $2
	`, qwirlID, req.ViewerUsername).Scan(&existing)
	if err == nil {
		middleware.ErrorResponse(w, http.StatusConflict, "Viewer already has a session for this qwirl")
		return
	}
	if err != sql.ErrNoRows {
		slog.Error("failed to query sessions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	viewerToken, err := auth.GenerateViewerToken()
	if err != nil {
		slog.Error("failed to generate viewer token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	sessionID := uuid.NewString()

	// IP hash for abuse tracking, never the raw address
	clientIP := middleware.GetClientIP(r)
	ipHash := auth.HashIP(clientIP, h.cfg.OwnerKeySalt)
	userAgent := r.UserAgent()

	_, err = h.db.Exec(`
		INSERT INTO response_session (id, qwirl_id, viewer_username, viewer_token, status, ip_hash, user_agent, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, sessionID, qwirlID, req.ViewerUsername, viewerToken, models.SessionInProgress, ipHash, userAgent, time.Now())

	if err != nil {
		slog.Error("failed to insert session", "error", err, "qwirl_id", qwirlID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	slog.Info("session started", "qwirl_id", qwirlID, "session_id", sessionID, "viewer", req.ViewerUsername)

	middleware.JSONResponse(w, http.StatusCreated, models.StartSessionResponse{
		SessionID:   sessionID,
		ViewerToken: viewerToken,
	})
}

// sessionRow is the authenticated session loaded by requireSession.
type sessionRow struct {
	ID      string
	QwirlID string
	Status  string
}

// requireSession loads the session and checks the viewer token. Writes the
// error response itself; callers bail out on ok == false.
func (h *SessionHandler) requireSession(w http.ResponseWriter, r *http.Request, sessionID string) (sessionRow, bool) {
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return sessionRow{}, false
	}

	viewerToken := r.Header.Get("X-Viewer-Token")
	if viewerToken == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Viewer-Token header required")
		return sessionRow{}, false
	}

	var s sessionRow
	var token string
	err := h.db.QueryRow(`
		SELECT id, qwirl_id, viewer_token, status FROM response_session WHERE id = $1
	`, sessionID).Scan(&s.ID, &s.QwirlID, &token, &s.Status)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return sessionRow{}, false
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return sessionRow{}, false
	}

	if token != viewerToken {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid viewer token for this session")
		return sessionRow{}, false
	}

	return s, true
}

// SubmitAnswer handles POST /sessions/:session_id/responses
// A null selected_answer records an explicit skip. Re-submitting for the
// same item replaces the previous answer and preserves any comment.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r, r.PathValue("session_id"))
	if !ok {
		return
	}

	var req models.SubmitAnswerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.QwirlItemID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "qwirl_item_id is required")
		return
	}

	// Item must belong to the session's qwirl
	var itemQwirlID string
	err := h.db.QueryRow(`
		SELECT qwirl_id FROM qwirl_item WHERE id = $1
	`, req.QwirlItemID).Scan(&itemQwirlID)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		slog.Error("failed to query item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if itemQwirlID != sess.QwirlID {
		middleware.ErrorResponse(w, http.StatusNotFound, "Item not found")
		return
	}

	// Non-null answers must be one of the item's options
	if req.SelectedAnswer != nil {
		var valid bool
		err = h.db.QueryRow(`
			SELECT EXISTS(
				SELECT 1 FROM item_option
				WHERE item_id = $1 AND label = $2
			)
		`, req.QwirlItemID, *req.SelectedAnswer).Scan(&valid)

		if err != nil {
			slog.Error("failed to verify option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if !valid {
			middleware.ErrorResponse(w, http.StatusBadRequest, "selected_answer is not one of the item's options")
			return
		}
	}

	now := time.Now()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Check if a response already exists
	var hadResponse bool
	var existingComment *string
	err = tx.QueryRow(`
		SELECT comment FROM item_response WHERE session_id = $1 AND item_id = $2
	`, sess.ID, req.QwirlItemID).Scan(&existingComment)

	hadResponse = err != sql.ErrNoRows
	if err != nil && err != sql.ErrNoRows {
		slog.Error("failed to query response", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if hadResponse {
		_, err = tx.Exec(`
			UPDATE item_response
			SET selected_answer = $1, responded_at = $2
			WHERE session_id = $3 AND item_id = $4
		`, req.SelectedAnswer, now, sess.ID, req.QwirlItemID)
	} else {
		_, err = tx.Exec(`
			INSERT INTO item_response (session_id, item_id, selected_answer, responded_at)
			VALUES ($1, $2, $3, $4)
		`, sess.ID, req.QwirlItemID, req.SelectedAnswer, now)
	}

	if err != nil {
		slog.Error("failed to save response", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save response")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save response")
		return
	}

	slog.Info("response submitted",
		"session_id", sess.ID,
		"item_id", req.QwirlItemID,
		"is_skip", req.SelectedAnswer == nil,
		"is_update", hadResponse,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.UserResponseRecord{
		SessionID:      sess.ID,
		QwirlItemID:    req.QwirlItemID,
		SelectedAnswer: req.SelectedAnswer,
		Comment:        existingComment,
		RespondedAt:    now,
	})
}

// SaveComment handles PATCH /sessions/:session_id/items/:qwirl_item_id/comment
// If the viewer has not acted on the item yet, a skip-shaped response record
// is created to carry the comment.
func (h *SessionHandler) SaveComment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r, r.PathValue("session_id"))
	if !ok {
		return
	}

	itemID := r.PathValue("qwirl_item_id")
	if itemID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "qwirl_item_id is required")
		return
	}

	var req models.SaveCommentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Comment) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "comment cannot be empty")
		return
	}

	// Item must belong to the session's qwirl
	var itemQwirlID string
	err := h.db.QueryRow(`
		SELECT qwirl_id FROM qwirl_item WHERE id = $1
	`, itemID).Scan(&itemQwirlID)

	if err == sql.ErrNoRows || (err == nil && itemQwirlID != sess.QwirlID) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		slog.Error("failed to query item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := time.Now()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var selectedAnswer *string
	err = tx.QueryRow(`
		SELECT selected_answer FROM item_response WHERE session_id = $1 AND item_id = $2
	`, sess.ID, itemID).Scan(&selectedAnswer)

	hadResponse := err != sql.ErrNoRows
	if err != nil && err != sql.ErrNoRows {
		slog.Error("failed to query response", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if hadResponse {
		_, err = tx.Exec(`
			UPDATE item_response
			SET comment = $1
			WHERE session_id = $2 AND item_id = $3
		`, req.Comment, sess.ID, itemID)
	} else {
		_, err = tx.Exec(`
			INSERT INTO item_response (session_id, item_id, selected_answer, comment, responded_at)
			VALUES ($1, $2, NULL, $3, $4)
		`, sess.ID, itemID, req.Comment, now)
	}

	if err != nil {
		slog.Error("failed to save comment", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save comment")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save comment")
		return
	}

	slog.Info("comment saved", "session_id", sess.ID, "item_id", itemID)

	comment := req.Comment
	middleware.JSONResponse(w, http.StatusOK, models.UserResponseRecord{
		SessionID:      sess.ID,
		QwirlItemID:    itemID,
		SelectedAnswer: selectedAnswer,
		Comment:        &comment,
		RespondedAt:    now,
	})
}

// FinishSession handles POST /sessions/:session_id/finish
// Marks the session completed and computes the wavelength score: the share
// of non-skip answers that match the owner's own answer. Finishing an
// already-completed session recomputes the score, which is how a returning
// viewer concludes after answering newly added items.
func (h *SessionHandler) FinishSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r, r.PathValue("session_id"))
	if !ok {
		return
	}

	var answered, skipped, matched int
	err := h.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN r.selected_answer IS NOT NULL THEN 1 END),
			COUNT(CASE WHEN r.selected_answer IS NULL THEN 1 END),
			COUNT(CASE WHEN r.selected_answer = i.owner_answer THEN 1 END)
		FROM item_response r
		JOIN qwirl_item i ON r.item_id = i.id
		WHERE r.session_id = $1
	`, sess.ID).Scan(&answered, &skipped, &matched)

	if err != nil {
		slog.Error("failed to compute session counts", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	wavelength := ComputeWavelength(matched, answered)
	finishedAt := time.Now()

	_, err = h.db.Exec(`
		UPDATE response_session
		SET status = $1, wavelength = $2, finished_at = $3
		WHERE id = $4
	`, models.SessionCompleted, wavelength, finishedAt, sess.ID)

	if err != nil {
		slog.Error("failed to finish session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to finish session")
		return
	}

	slog.Info("session finished",
		"session_id", sess.ID,
		"answered", answered,
		"skipped", skipped,
		"wavelength", wavelength,
	)

	middleware.JSONResponse(w, http.StatusOK, models.SessionSummary{
		SessionID:     sess.ID,
		Status:        models.SessionCompleted,
		AnsweredCount: answered,
		SkippedCount:  skipped,
		Wavelength:    wavelength,
		FinishedAt:    &finishedAt,
	})
}
