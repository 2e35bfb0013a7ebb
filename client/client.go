// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/danielhkuo/qwirl/models"
)

// APIError is a non-2xx response from the Qwirl API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to the Qwirl API. The zero http.Client is used unless one is
// provided via NewWithHTTPClient.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	viewerToken string
	ownerKey    string
}

func New(baseURL string) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{})
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
	}
}

// SetViewerToken sets the X-Viewer-Token header sent on session operations.
func (c *Client) SetViewerToken(token string) { c.viewerToken = token }

// SetOwnerKey sets the X-Owner-Key header sent on owner operations.
func (c *Client) SetOwnerKey(key string) { c.ownerKey = key }

// GetQwirl fetches the questionnaire+session aggregate for an owner's
// username. If a viewer token is set, the viewer's responses and session
// state are folded into the aggregate.
func (c *Client) GetQwirl(ctx context.Context, ownerUsername string) (*models.SessionView, error) {
	var view models.SessionView
	if err := c.do(ctx, http.MethodGet, "/qwirls/"+ownerUsername, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// StartSession begins a response session against an owner's qwirl and
// returns the session ID plus the viewer token for subsequent calls. The
// token is not retained automatically; call SetViewerToken with it.
func (c *Client) StartSession(ctx context.Context, ownerUsername, viewerUsername string) (*models.StartSessionResponse, error) {
	req := models.StartSessionRequest{ViewerUsername: viewerUsername}
	var resp models.StartSessionResponse
	if err := c.do(ctx, http.MethodPost, "/qwirls/"+ownerUsername+"/sessions", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitAnswer records an answer, or an explicit skip when selected is nil.
// Re-submitting for the same item replaces the previous answer.
func (c *Client) SubmitAnswer(ctx context.Context, sessionID, itemID string, selected *string) (*models.UserResponseRecord, error) {
	req := models.SubmitAnswerRequest{QwirlItemID: itemID, SelectedAnswer: selected}
	var rec models.UserResponseRecord
	if err := c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/responses", req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveComment attaches a comment to the viewer's response for one item.
func (c *Client) SaveComment(ctx context.Context, sessionID, itemID, comment string) (*models.UserResponseRecord, error) {
	req := models.SaveCommentRequest{Comment: comment}
	var rec models.UserResponseRecord
	if err := c.do(ctx, http.MethodPatch, "/sessions/"+sessionID+"/items/"+itemID+"/comment", req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// FinishSession completes the session. The returned summary carries the
// server-computed wavelength score.
func (c *Client) FinishSession(ctx context.Context, sessionID string) (*models.SessionSummary, error) {
	var summary models.SessionSummary
	if err := c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/finish", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Owner operations

func (c *Client) CreateQwirl(ctx context.Context, ownerUsername, title string) (*models.CreateQwirlResponse, error) {
	req := models.CreateQwirlRequest{OwnerUsername: ownerUsername, Title: title}
	var resp models.CreateQwirlResponse
	if err := c.do(ctx, http.MethodPost, "/qwirls", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AddItem(ctx context.Context, qwirlID string, item models.AddItemRequest) (*models.AddItemResponse, error) {
	var resp models.AddItemResponse
	if err := c.do(ctx, http.MethodPost, "/qwirls/"+qwirlID+"/items", item, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) PublishQwirl(ctx context.Context, qwirlID string) (*models.PublishQwirlResponse, error) {
	var resp models.PublishQwirlResponse
	if err := c.do(ctx, http.MethodPost, "/qwirls/"+qwirlID+"/publish", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.viewerToken != "" {
		req.Header.Set("X-Viewer-Token", c.viewerToken)
	}
	if c.ownerKey != "" {
		req.Header.Set("X-Owner-Key", c.ownerKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr models.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		}
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
