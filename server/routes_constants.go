package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Authentication for the standard user pool
	RouteAuth = "/api/auth"

	// Authentication for the privileged (admin) pool
	RouteAdminAuth = "/api/admin/auth"

	// Liveness probe
	RouteHealth = "/healthz"
)
