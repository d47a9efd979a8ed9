// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/danielhkuo/bausite/auth"
	"github.com/danielhkuo/bausite/cliparse"
	"github.com/danielhkuo/bausite/handlers"
	"github.com/danielhkuo/bausite/media"
	"github.com/danielhkuo/bausite/middleware"
	"github.com/danielhkuo/bausite/notify"
	"github.com/danielhkuo/bausite/store"
)

// Deps is everything the router hands to the handlers
type Deps struct {
	Store    *store.Store
	Media    media.Store
	Tokens   *auth.TokenManager
	Notifier notify.Notifier
	Logger   *zap.Logger
	Config   cliparse.Config
}

// Staff who open a cabinet page land on its adminka counterpart
const (
	staffProfileURL = "/adminka/profile"
	staffSupportURL = "/adminka/support"
)

const pageNotFound = "page not found"

func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}
	maxUpload := deps.Config.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = cliparse.DefaultMaxUploadBytes
	}

	mux := http.NewServeMux()
	authn := middleware.NewAuthenticator(deps.Tokens, deps.Store, logger)

	// Initialize handlers
	siteHandler := handlers.NewSiteHandler(deps.Store, deps.Media, logger)
	apiHandler := handlers.NewAPIHandler(deps.Store, notifier, logger)
	authHandler := handlers.NewAuthHandler(deps.Store, deps.Tokens, logger)
	adminHandler := handlers.NewAdminHandler(deps.Store, deps.Media, logger, maxUpload)
	adminProfile := handlers.NewProfileHandler(deps.Store, deps.Tokens, deps.Media, logger, maxUpload, true)
	cabinetHandler := handlers.NewCabinetHandler(deps.Store, logger)
	cabinetProfile := handlers.NewProfileHandler(deps.Store, deps.Tokens, deps.Media, logger, maxUpload, false)

	public := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(logger, authn.OptionalUser(h))
	}
	staff := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(logger, authn.RequireStaff(h))
	}
	user := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(logger, authn.RequireUser(h))
	}
	cabinet := func(staffURL string, h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(logger, authn.RequireCabinet(staffURL, h))
	}

	// Operational
	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(registry)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Public site
	mux.HandleFunc("GET /{$}", public(siteHandler.Home))
	mux.HandleFunc("GET /site.css", public(siteHandler.Stylesheet))
	mux.HandleFunc("GET /dbimg/{model}/{id}", public(siteHandler.Image))

	// Request cascade and submission
	mux.HandleFunc("GET /api/request-categories", public(apiHandler.RequestCategories))
	mux.HandleFunc("GET /api/request-subcategories", public(apiHandler.RequestSubcategories))
	mux.HandleFunc("GET /api/request-questions", public(apiHandler.RequestQuestions))
	mux.HandleFunc("POST /api/submit-request", public(apiHandler.SubmitRequest))
	mux.HandleFunc("POST /api/submit-support", public(apiHandler.SubmitSupport))

	// Legacy mirror
	mux.HandleFunc("GET /api/public/projects", public(apiHandler.PublicProjects))
	mux.HandleFunc("GET /api/public/categories", public(apiHandler.PublicCategories))
	mux.HandleFunc("POST /api/contact/requests", public(apiHandler.SubmitSupport))

	// Sessions
	mux.HandleFunc("POST /auth/login", public(authHandler.Login))
	mux.HandleFunc("POST /auth/register", public(authHandler.Register))
	mux.HandleFunc("POST /auth/logout", public(authHandler.Logout))
	mux.HandleFunc("GET /auth/me", user(authHandler.Me))

	// Adminka
	mux.HandleFunc("GET /adminka", staff(adminHandler.Dashboard))

	mux.HandleFunc("GET /adminka/projects", staff(adminHandler.ListProjects))
	mux.HandleFunc("POST /adminka/projects", staff(adminHandler.CreateProject))
	mux.HandleFunc("GET /adminka/projects/{id}", staff(adminHandler.GetProject))
	mux.HandleFunc("PUT /adminka/projects/{id}", staff(adminHandler.UpdateProject))
	mux.HandleFunc("POST /adminka/projects/{id}/delete", staff(adminHandler.DeleteProject))

	mux.HandleFunc("GET /adminka/categories", staff(adminHandler.ListCategories))
	mux.HandleFunc("POST /adminka/categories", staff(adminHandler.CreateCategory))
	mux.HandleFunc("POST /adminka/categories/{id}/delete", staff(adminHandler.DeleteCategory))

	mux.HandleFunc("GET /adminka/support", staff(adminHandler.ListSupport))
	mux.HandleFunc("GET /adminka/support/{id}", staff(adminHandler.GetSupport))
	mux.HandleFunc("PUT /adminka/support/{id}", staff(adminHandler.UpdateSupport))
	mux.HandleFunc("POST /adminka/support/{id}/delete", staff(adminHandler.DeleteSupport))

	mux.HandleFunc("GET /adminka/requests", staff(adminHandler.ListRequests))
	mux.HandleFunc("GET /adminka/requests/{id}", staff(adminHandler.GetRequest))
	mux.HandleFunc("PUT /adminka/requests/{id}", staff(adminHandler.UpdateRequest))
	mux.HandleFunc("POST /adminka/requests/{id}/delete", staff(adminHandler.DeleteRequest))
	mux.HandleFunc("POST /adminka/requests/{id}/stages", staff(adminHandler.CreateStage))
	mux.HandleFunc("POST /adminka/stages/{id}/delete", staff(adminHandler.DeleteStage))

	mux.HandleFunc("GET /adminka/request-categories", staff(adminHandler.ListTaxonomy))
	mux.HandleFunc("POST /adminka/request-categories", staff(adminHandler.CreateRequestCategory))
	mux.HandleFunc("POST /adminka/request-categories/{id}/delete", staff(adminHandler.DeleteRequestCategory))
	mux.HandleFunc("POST /adminka/request-subcategories", staff(adminHandler.CreateSubcategory))
	mux.HandleFunc("POST /adminka/request-subcategories/{id}/delete", staff(adminHandler.DeleteSubcategory))
	mux.HandleFunc("POST /adminka/request-questions", staff(adminHandler.CreateQuestion))
	mux.HandleFunc("POST /adminka/request-questions/{id}/delete", staff(adminHandler.DeleteQuestion))

	mux.HandleFunc("PUT /adminka/site/logo", staff(adminHandler.UpdateLogo))
	mux.HandleFunc("GET /adminka/site/hero", staff(adminHandler.ListHero))
	mux.HandleFunc("POST /adminka/site/hero", staff(adminHandler.CreateHero))
	mux.HandleFunc("POST /adminka/site/hero/{id}/delete", staff(adminHandler.DeleteHero))
	mux.HandleFunc("GET /adminka/site/services", staff(adminHandler.ListServices))
	mux.HandleFunc("POST /adminka/site/services", staff(adminHandler.CreateService))
	mux.HandleFunc("PUT /adminka/site/services/{id}", staff(adminHandler.UpdateService))
	mux.HandleFunc("POST /adminka/site/services/{id}/delete", staff(adminHandler.DeleteService))
	mux.HandleFunc("GET /adminka/site/projects", staff(adminHandler.ListPortfolio))
	mux.HandleFunc("POST /adminka/site/projects", staff(adminHandler.CreatePortfolio))
	mux.HandleFunc("PUT /adminka/site/projects/{id}", staff(adminHandler.UpdatePortfolio))
	mux.HandleFunc("POST /adminka/site/projects/{id}/delete", staff(adminHandler.DeletePortfolio))

	mux.HandleFunc("GET /adminka/design", staff(adminHandler.GetDesign))
	mux.HandleFunc("PUT /adminka/design", staff(adminHandler.UpdateDesign))
	mux.HandleFunc("GET /adminka/elements", staff(adminHandler.ListElements))
	mux.HandleFunc("POST /adminka/elements", staff(adminHandler.CreateElement))
	mux.HandleFunc("GET /adminka/elements/{id}", staff(adminHandler.GetElement))
	mux.HandleFunc("PUT /adminka/elements/{id}", staff(adminHandler.UpdateElement))
	mux.HandleFunc("POST /adminka/elements/{id}/delete", staff(adminHandler.DeleteElement))

	mux.HandleFunc("GET /adminka/profile", staff(adminProfile.Get))
	mux.HandleFunc("PUT /adminka/profile", staff(adminProfile.Update))
	mux.HandleFunc("POST /adminka/profile/password", staff(adminProfile.ChangePassword))
	mux.HandleFunc("POST /adminka/profile/avatar", staff(adminProfile.UploadAvatar))

	// Cabinet
	home := handlers.StaffHome
	mux.HandleFunc("GET /cabinet", cabinet(home, cabinetHandler.Index))
	mux.HandleFunc("GET /cabinet/requests", cabinet(home, cabinetHandler.Requests))
	mux.HandleFunc("GET /cabinet/requests/{id}", cabinet(home, cabinetHandler.RequestDetail))
	mux.HandleFunc("PUT /cabinet/requests/{id}", cabinet(home, cabinetHandler.UpdateRequest))
	mux.HandleFunc("POST /cabinet/requests/{id}/delete", cabinet(home, cabinetHandler.DeleteRequest))
	mux.HandleFunc("GET /cabinet/orders", cabinet(home, cabinetHandler.Orders))
	mux.HandleFunc("GET /cabinet/orders/{id}", cabinet(home, cabinetHandler.OrderDetail))
	mux.HandleFunc("GET /cabinet/support", cabinet(staffSupportURL, cabinetHandler.Support))
	mux.HandleFunc("GET /cabinet/analytics", cabinet(home, cabinetHandler.Analytics))
	mux.HandleFunc("GET /cabinet/export/pdf", cabinet(home, cabinetHandler.ExportPDF))
	mux.HandleFunc("GET /cabinet/export/excel", cabinet(home, cabinetHandler.ExportExcel))

	mux.HandleFunc("GET /cabinet/profile", cabinet(staffProfileURL, cabinetProfile.Get))
	mux.HandleFunc("PUT /cabinet/profile", cabinet(staffProfileURL, cabinetProfile.Update))
	mux.HandleFunc("POST /cabinet/profile/password", cabinet(staffProfileURL, cabinetProfile.ChangePassword))
	mux.HandleFunc("POST /cabinet/profile/avatar", cabinet(staffProfileURL, cabinetProfile.UploadAvatar))

	// Anything else gets the JSON envelope instead of the plain mux 404
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		middleware.ErrorResponse(w, http.StatusNotFound, pageNotFound)
	})

	var h http.Handler = mux
	h = middleware.Recover(logger, h)
	h = metrics.Instrument(h)
	h = middleware.CORS(h)
	return h
}
