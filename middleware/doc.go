// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Sessions

Authenticator reads the session token from the Authorization header or the
session cookie and loads the user:

	authn := middleware.NewAuthenticator(tokens, st, logger)
	mux.HandleFunc("GET /adminka", authn.RequireStaff(admin.Dashboard))

RequireUser answers 401 without a valid session and RequireStaff adds 403
for non-staff. RequireCabinet redirects staff to the given adminka page.
Handlers read the user with UserFromContext.

# Request Logging

	mux.HandleFunc("GET /health", middleware.WithLogging(logger, handler))

Logs request start (method, path, remote) and completion (status,
duration_ms) through zap.

# Recovery, Metrics and CORS

Recover turns a panic into a 500 JSON response. Metrics counts requests and
observes latency per route pattern. CORS allows the frontend origin with
credentials.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Errors use the {success:false, error, message} envelope.
*/
package middleware
