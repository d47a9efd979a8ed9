// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request and response types for the API.

# Domain Types

  - User, UserProfile: accounts; the profile carries the client or company type
  - Category, AdminProject: projects managed in the adminka
  - RequestCategory, RequestSubcategory, RequestQuestion: the request form taxonomy
  - Request, RequestStage: site requests and their history or order stages
  - ContactRequest: support messages
  - SiteSettings, HeroImage, Service, PortfolioProject: homepage content

Taxonomy names come in three languages through LocalizedName, which falls
back from German to English to the base name.

# Statuses

Request statuses are new, in_progress, approved, rejected and closed.
Support statuses are new, in_progress and closed. Project statuses are
planned, in_progress and completed.

# Request and Response Types

Inputs such as LoginRequest, ProjectInput or AdminRequestUpdate are parsed
from JSON bodies. ActionResponse and ErrorResponse share the success flag
used by every endpoint.
*/
package models
