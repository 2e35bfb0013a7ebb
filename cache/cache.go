// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"sync"

	"github.com/danielhkuo/qwirl/models"
)

// Store is the minimal cache contract the mutation layer needs. Keys are
// owner usernames; values are session aggregates.
//
// The optimistic-update discipline is: CancelInFlight before writing a
// patch, Snapshot before the patch so the exact prior value can be restored
// on error, and Invalidate on settle so a stale optimistic value never
// outlives the request that produced it.
type Store interface {
	// CancelInFlight cancels any fetch currently registered for the key.
	CancelInFlight(key string)

	// Snapshot returns a deep copy of the cached value, even if stale.
	Snapshot(key string) (*models.SessionView, bool)

	// Write stores a deep copy of the value and clears the stale mark.
	Write(key string, view *models.SessionView)

	// Invalidate marks the key stale. The value remains readable until the
	// next Write replaces it.
	Invalidate(key string)
}

// FetchRegistry is the optional extension for stores that track in-flight
// fetches per key, so CancelInFlight can abort them. Memory implements it.
type FetchRegistry interface {
	RegisterFetch(ctx context.Context, key string) context.Context
}

type entry struct {
	view   *models.SessionView
	stale  bool
	cancel context.CancelFunc
}

// Memory is an in-process Store. One instance is shared by everything that
// reads or writes session aggregates in a client process.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*entry)}
}

// RegisterFetch derives a cancellable context for a fetch of key and
// registers its cancel func, replacing (and cancelling) any fetch already
// in flight for the same key.
func (m *Memory) RegisterFetch(ctx context.Context, key string) context.Context {
	fetchCtx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entries[key]
	if e == nil {
		e = &entry{}
		m.entries[key] = e
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.cancel = cancel

	return fetchCtx
}

func (m *Memory) CancelInFlight(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entries[key]
	if e == nil || e.cancel == nil {
		return
	}
	e.cancel()
	e.cancel = nil
}

func (m *Memory) Snapshot(key string) (*models.SessionView, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e := m.entries[key]
	if e == nil || e.view == nil {
		return nil, false
	}
	return e.view.Clone(), true
}

func (m *Memory) Write(key string, view *models.SessionView) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entries[key]
	if e == nil {
		e = &entry{}
		m.entries[key] = e
	}
	e.view = view.Clone()
	e.stale = false
}

func (m *Memory) Invalidate(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e := m.entries[key]; e != nil {
		e.stale = true
	}
}

// Stale reports whether the key has been invalidated since its last Write.
// A missing key counts as stale: it needs a fetch either way.
func (m *Memory) Stale(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e := m.entries[key]
	if e == nil || e.view == nil {
		return true
	}
	return e.stale
}
