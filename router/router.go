// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/qwirl/cliparse"
	"github.com/danielhkuo/qwirl/handlers"
	"github.com/danielhkuo/qwirl/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	qwirlHandler := handlers.NewQwirlHandler(db, cfg)
	sessionHandler := handlers.NewSessionHandler(db, cfg)
	aggregateHandler := handlers.NewAggregateHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Qwirl management (owner operations)
	mux.HandleFunc("POST /qwirls", middleware.WithLogging(qwirlHandler.CreateQwirl))
	mux.HandleFunc("GET /qwirls/{id}/admin", middleware.WithLogging(qwirlHandler.GetQwirlAdmin))
	mux.HandleFunc("POST /qwirls/{id}/items", middleware.WithLogging(qwirlHandler.AddItem))
	mux.HandleFunc("POST /qwirls/{id}/publish", middleware.WithLogging(qwirlHandler.PublishQwirl))

	// Viewer operations (public)
	mux.HandleFunc("GET /qwirls/{username}", middleware.WithLogging(aggregateHandler.GetQwirl))
	mux.HandleFunc("POST /qwirls/{username}/sessions", middleware.WithLogging(sessionHandler.StartSession))
	mux.HandleFunc("POST /sessions/{session_id}/responses", middleware.WithLogging(sessionHandler.SubmitAnswer))
	mux.HandleFunc("PATCH /sessions/{session_id}/items/{qwirl_item_id}/comment", middleware.WithLogging(sessionHandler.SaveComment))
	mux.HandleFunc("POST /sessions/{session_id}/finish", middleware.WithLogging(sessionHandler.FinishSession))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("qwirl API v1"))
	})

	return mux
}
