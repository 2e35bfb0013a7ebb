// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sessionsync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/danielhkuo/qwirl/cache"
	"github.com/danielhkuo/qwirl/models"
)

var (
	// ErrSubmitFailed carries the user-visible message for a failed answer
	// submission. The optimistic patch has already been rolled back when
	// this is returned.
	ErrSubmitFailed = errors.New("an error occurred while submitting your response")

	// ErrCommentFailed is the user-visible message for a failed comment save.
	ErrCommentFailed = errors.New("couldn't save your comment")
)

// API is the slice of the Qwirl API the mutation layer talks to.
// *client.Client satisfies it.
type API interface {
	SubmitAnswer(ctx context.Context, sessionID, itemID string, selected *string) (*models.UserResponseRecord, error)
	SaveComment(ctx context.Context, sessionID, itemID, comment string) (*models.UserResponseRecord, error)
	FinishSession(ctx context.Context, sessionID string) (*models.SessionSummary, error)
}

// Mutator owns the optimistic-update contract for one session: every
// mutation snapshots the cached aggregate, applies its patch, issues the
// request, restores the snapshot verbatim on failure, and invalidates the
// key on settle either way so server truth supersedes the patch.
//
// Mutations against the same key are serialized: a second call blocks until
// the in-flight one settles.
type Mutator struct {
	store cache.Store
	api   API
	key   string

	mu        sync.Mutex // serializes mutations
	stateMu   sync.Mutex
	sessionID string
	pending   bool
}

func NewMutator(store cache.Store, api API, key, sessionID string) *Mutator {
	return &Mutator{store: store, api: api, key: key, sessionID: sessionID}
}

// SetSessionID updates the session the mutator submits against. Needed when
// a session is started after the aggregate was first fetched.
func (m *Mutator) SetSessionID(id string) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.sessionID = id
}

// Pending reports whether a mutation is in flight. The presentation layer
// uses it to disable controls.
func (m *Mutator) Pending() bool {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.pending
}

func (m *Mutator) currentSession() string {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.sessionID
}

func (m *Mutator) setPending(v bool) {
	m.stateMu.Lock()
	m.pending = v
	m.stateMu.Unlock()
}

// SubmitAnswer records an answer (or a skip, when selected is nil) for the
// item, optimistically patching the cached aggregate first.
func (m *Mutator) SubmitAnswer(ctx context.Context, itemID string, selected *string) error {
	sessionID := m.currentSession()
	if sessionID == "" || itemID == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.setPending(true)
	defer m.setPending(false)

	m.store.CancelInFlight(m.key)
	prev, hadCache := m.store.Snapshot(m.key)
	if hadCache {
		m.store.Write(m.key, ApplyAnswer(prev, itemID, selected))
	}

	_, err := m.api.SubmitAnswer(ctx, sessionID, itemID, selected)
	if err != nil {
		if hadCache {
			m.store.Write(m.key, prev)
		}
		m.store.Invalidate(m.key)
		return fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}

	m.store.Invalidate(m.key)
	return nil
}

// SaveComment sets the comment on the item's response, optimistically
// patching the cached aggregate first.
func (m *Mutator) SaveComment(ctx context.Context, itemID, comment string) error {
	sessionID := m.currentSession()
	if sessionID == "" || itemID == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.setPending(true)
	defer m.setPending(false)

	m.store.CancelInFlight(m.key)
	prev, hadCache := m.store.Snapshot(m.key)
	if hadCache {
		m.store.Write(m.key, ApplyComment(prev, itemID, comment))
	}

	_, err := m.api.SaveComment(ctx, sessionID, itemID, comment)
	if err != nil {
		if hadCache {
			m.store.Write(m.key, prev)
		}
		m.store.Invalidate(m.key)
		return fmt.Errorf("%w: %v", ErrCommentFailed, err)
	}

	m.store.Invalidate(m.key)
	return nil
}

// FinishSession completes the session. No optimistic patch: this is a
// terminal, low-frequency operation, and the wavelength score in the
// returned summary only exists server-side. The caller should refetch the
// aggregate afterwards.
func (m *Mutator) FinishSession(ctx context.Context) (*models.SessionSummary, error) {
	sessionID := m.currentSession()
	if sessionID == "" {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.setPending(true)
	defer m.setPending(false)

	summary, err := m.api.FinishSession(ctx, sessionID)
	m.store.Invalidate(m.key)
	if err != nil {
		return nil, err
	}
	return summary, nil
}
