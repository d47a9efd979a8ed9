// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes of the bausite server.

# Route Registration

NewRouter builds every handler from Deps and returns the finished handler
chain:

	h := router.NewRouter(router.Deps{
		Store:    st,
		Media:    objects,
		Tokens:   tokens,
		Notifier: notify.New(cfg.WebhookURL, logger),
		Logger:   logger,
		Config:   cfg,
	})

Requests pass through CORS, metrics and panic recovery before reaching the
mux. Each route is wrapped in request logging and one of the session gates:

  - public: OptionalUser, the signed-in user is attached when present
  - staff: RequireStaff, the adminka
  - cabinet: RequireCabinet, clients only; staff are redirected to the
    matching adminka page

# Endpoints

Operational:

	GET /health
	GET /metrics

Public site and the request form:

	GET  /                          - Homepage content
	GET  /site.css                  - Generated stylesheet
	GET  /dbimg/{model}/{id}        - Stored image
	GET  /api/request-categories    - Cascade level one
	GET  /api/request-subcategories - Cascade level two
	GET  /api/request-questions     - Cascade level three
	POST /api/submit-request        - New construction request
	POST /api/submit-support        - New support request

Sessions live under /auth, the staff panel under /adminka and the client
cabinet under /cabinet. Deletes are POST .../{id}/delete. Unknown paths get
a 404 in the usual JSON envelope.
*/
package router
