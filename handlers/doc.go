// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP request handlers of the bausite server.

# Handler Types

Each handler is a struct holding the store, a zap logger and whatever else
its pages need:

  - SiteHandler: Public homepage, generated stylesheet and stored images
  - APIHandler: Request cascade, request and support submission, legacy listings
  - AuthHandler: Login, registration, logout and the current user
  - ProfileHandler: Own-account pages shared by the adminka and the cabinet
  - AdminHandler: The staff panel (adminka)
  - CabinetHandler: The client cabinet

Handlers are created via constructor functions:

	admin := handlers.NewAdminHandler(st, objects, logger, cfg.MaxUploadBytes)

Access control lives in middleware.Authenticator, applied by the router.
Handlers read the signed-in user from the request context.

# Site Requests

The public form walks a three level taxonomy:

	GET  /api/request-categories
	GET  /api/request-subcategories?category_id=
	GET  /api/request-questions?subcategory_id=
	POST /api/submit-request

Answers to cascade questions arrive as extra_<field_name> and are stored
under field_name. A signed-in submitter is linked to the request.

# Ownership

A cabinet user owns a request when it is linked to them or was submitted
with their email. Viewing or editing someone else's request redirects back
to the list; deleting it answers 403.

# Images

Uploaded images are kept in a media.Store under <model>/<id> and served
from /dbimg/<model>/<id>. An update without a file keeps the stored image.
*/
package handlers
