package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("POST "+RouteAuth, ChainMiddleware(s.AuthHandler(s.auth.Standard), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminAuth, ChainMiddleware(s.AuthHandler(s.auth.Privileged), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
}
