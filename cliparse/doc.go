// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line flags and configuration.

# Configuration

RegisterFlags binds the settings to a flag set, usually the persistent
flags of the root command. ApplyEnv then fills unset fields from the
environment and the defaults:

	cliparse.RegisterFlags(rootCmd.PersistentFlags(), &cfg)
	// after flag parsing
	err := cfg.ApplyEnv()

ParseFlags does all of it at once for a plain argument list.

# Precedence

CLI flags take precedence over environment variables, which take
precedence over defaults. LoadDotEnv reads .env first when it exists.

	PORT           → -p        (3318)
	DATABASE_URL   → -d        (required)
	DATABASE_TYPE  → -t        (sqlite)
	JWT_SECRET     → --jwt-secret
	TOKEN_TTL      → --token-ttl (24h)
	REDIS_ADDR     → --redis-addr
	MEDIA_DRIVER   → --media   (db)
	WEBHOOK_URL    → --webhook-url
	LOG_LEVEL      → --log-level (info)
	LOG_FORMAT     → --log-format (json)

# Validation

ValidateDatabase is enough for the maintenance commands. Validate adds the
session secret and the media driver settings needed by the server.
*/
package cliparse
