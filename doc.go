// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the bausite server.

bausite runs the site of a construction company: the public homepage with
its request form, the staff panel (adminka) and the client cabinet where
customers follow their requests.

# Starting the Server

	DATABASE_URL=bausite.db JWT_SECRET=... go run .

Or with flags and PostgreSQL:

	go run . serve -p 3318 -t postgres -d "postgres://..." --jwt-secret ...

# Commands

  - serve: HTTP server (default)
  - create-superuser: root/root when no superuser exists yet
  - create-admin --email --username --password: a staff account
  - seed-elements: default inactive element style rows
  - seed-demo: starter request taxonomy, demo projects and support requests

Every command creates the schema first and is safe to run repeatedly.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - JWT_SECRET (--jwt-secret): session signing secret, serve only

Optional settings include PORT, DATABASE_TYPE, REDIS_ADDR, MEDIA_DRIVER with
the S3_* settings, WEBHOOK_URL and LOG_LEVEL. A .env file is read when
present.

# Architecture

  - handlers: HTTP handlers for the site, adminka and cabinet
  - router: Route definitions using Go 1.22+ routing
  - middleware: Sessions, CORS, logging, metrics and JSON helpers
  - store: Persistence over database/sql
  - models, design: Domain types and the stylesheet generator
  - auth: Passwords, session tokens and revocation
  - media: Image storage in the database or S3
  - export: PDF and Excel exports of cabinet requests
  - notify: Webhook for new requests
  - seed: Fixtures and staff accounts
  - db, cliparse, logging: Schema, configuration and logger setup
*/
package main
