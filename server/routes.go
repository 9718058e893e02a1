package server

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteHandler("GET "+RouteGoogleLogin, ChainMiddleware(s.GoogleLoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteGoogleCallback, ChainMiddleware(s.GoogleCallbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	// API routes (require a session)
	s.RegisterRouteHandler("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteSheets, ChainMiddleware(s.ListSheetsHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteSheets, ChainMiddleware(s.CreateSheetHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteSync, ChainMiddleware(s.SyncHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteColumnsPreview, ChainMiddleware(s.ColumnsPreviewHandler(), s.APIMiddleware(s.RequireSession())...))

	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	// CORS preflight for every route
	s.RegisterRouteHandler("OPTIONS "+RouteHome, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
}
