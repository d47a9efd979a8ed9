// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

	conn, err := db.Open(ctx, db.SQLite, "bausite.db")
	conn, err := db.Open(ctx, db.Postgres, "postgres://...")

SQLite runs with foreign keys on and a single connection. PostgreSQL uses
lib/pq. Both share the $n placeholder style.

# Schema Creation

	if err := db.CreateSchema(ctx, conn, cfg.DatabaseType); err != nil {
		return err
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Relationships

	users 1──1 user_profiles
	categories 1──* projects                 (SET NULL)
	request_categories 1──* request_subcategories 1──* request_questions
	requests *──1 users, request_categories  (SET NULL)
	requests 1──* request_stages             (CASCADE)

Images live in media_objects keyed by <model>/<id> unless S3 is configured.
*/
package db
