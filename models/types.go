package models

import "time"

// Qwirl status constants
const (
	StatusDraft = "draft"
	StatusOpen  = "open"
)

// Session status constants
const (
	SessionNotStarted = "not_started"
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
)

// Request types

type CreateQwirlRequest struct {
	OwnerUsername string `json:"owner_username"`
	Title         string `json:"title"`
}

type AddItemRequest struct {
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	OwnerAnswer string   `json:"owner_answer"`
	Position    int      `json:"position"`
}

type StartSessionRequest struct {
	ViewerUsername string `json:"viewer_username"`
}

// selected_answer is null for an explicit skip
type SubmitAnswerRequest struct {
	QwirlItemID    string  `json:"qwirl_item_id"`
	SelectedAnswer *string `json:"selected_answer"`
}

type SaveCommentRequest struct {
	Comment string `json:"comment"`
}

// Response types

type CreateQwirlResponse struct {
	QwirlID  string `json:"qwirl_id"`
	OwnerKey string `json:"owner_key"`
}

type AddItemResponse struct {
	ItemID string `json:"item_id"`
}

type PublishQwirlResponse struct {
	Status string `json:"status"`
}

type StartSessionResponse struct {
	SessionID   string `json:"session_id"`
	ViewerToken string `json:"viewer_token"`
}

// UserResponseRecord is the server's record of one viewer response,
// returned by the answer and comment endpoints.
type UserResponseRecord struct {
	SessionID      string    `json:"session_id"`
	QwirlItemID    string    `json:"qwirl_item_id"`
	SelectedAnswer *string   `json:"selected_answer"`
	Comment        *string   `json:"comment"`
	RespondedAt    time.Time `json:"responded_at"`
}

// SessionSummary is returned by the finish endpoint. Wavelength is the
// server-computed compatibility score; the client never derives it.
type SessionSummary struct {
	SessionID     string     `json:"session_id"`
	Status        string     `json:"status"`
	AnsweredCount int        `json:"answered_count"`
	SkippedCount  int        `json:"skipped_count"`
	Wavelength    float64    `json:"wavelength"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// Domain types

type Qwirl struct {
	ID            string    `json:"id"`
	OwnerUsername string    `json:"owner_username"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserResponse is the viewer's response to one item. A present record with a
// nil SelectedAnswer means the item was explicitly skipped; an absent record
// means the viewer has not acted on the item yet.
type UserResponse struct {
	SelectedAnswer *string `json:"selected_answer"`
	Comment        *string `json:"comment"`
}

// OptionStats holds the live result counts for one item.
type OptionStats struct {
	Votes          map[string]int `json:"votes"`
	TotalResponses int            `json:"total_responses"`
}

type QwirlItem struct {
	ID            string        `json:"id"`
	Position      int           `json:"position"`
	Prompt        string        `json:"prompt"`
	Options       []string      `json:"options"`
	UserResponse  *UserResponse `json:"user_response,omitempty"`
	ResponseCount int           `json:"response_count"`
	Stats         OptionStats   `json:"stats"`
}

// SessionView is the questionnaire+session aggregate the controller reads
// from cache and patches optimistically. Items are ordered by Position.
type SessionView struct {
	QwirlID                string      `json:"qwirl_id"`
	OwnerUsername          string      `json:"owner_username"`
	Title                  string      `json:"title"`
	SessionID              string      `json:"session_id,omitempty"`
	Status                 string      `json:"session_status"`
	CompletedResponseCount int         `json:"completed_response_count"`
	AnsweredCount          int         `json:"answered_count"`
	SkippedCount           int         `json:"skipped_count"`
	UnansweredCount        int         `json:"unanswered_count"`
	Wavelength             *float64    `json:"wavelength,omitempty"`
	Items                  []QwirlItem `json:"items"`
}

// QwirlAdminView is the owner's view of their own qwirl.
type QwirlAdminView struct {
	Qwirl Qwirl       `json:"qwirl"`
	Items []QwirlItem `json:"items"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
