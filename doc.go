// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Qwirl API server.

Qwirl is a get-to-know-me questionnaire service: an owner publishes a list
of multiple-choice questions, viewers answer them one by one (or skip), and
on finishing receive a "wavelength" score measuring how closely their
answers match the owner's.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=file:qwirl.db OWNER_KEY_SALT=... go run main.go

Or with flags:

	go run main.go -p 3321 -d "postgres://..." -t postgres

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file or PostgreSQL connection string
  - OWNER_KEY_SALT (-owner-salt): Secret for owner key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3321)
  - DATABASE_TYPE (-t): sqlite (default) or postgres

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (qwirls, sessions, aggregate)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types and the session aggregate
  - auth: Token generation and validation
  - db: Schema creation
  - cliparse: Configuration parsing

The repository also contains the client-side response-session controller
used by Qwirl frontends:

  - client: HTTP API client
  - cache: request cache with cancel/snapshot/write/invalidate
  - sessionsync: optimistic mutations with rollback
  - session: the navigate/answer/skip/finish state machine

See package documentation for each component.
*/
package main
