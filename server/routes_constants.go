package server

// Route path constants
const (
	// Auth Routes
	RouteGoogleLogin    = "/auth/google"
	RouteGoogleCallback = "/auth/google/callback"
	RouteLogout         = "/auth/logout"

	// API Routes
	RouteMe             = "/me"
	RouteSheets         = "/sheets"
	RouteSync           = "/sync"
	RouteColumnsPreview = "/columns/preview"

	RouteHealth = "/healthz"
	RouteHome   = "/"
)
