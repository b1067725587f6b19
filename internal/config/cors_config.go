package config

import "strings"

type Cors struct{}

var _ CorsConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

// IsAllowedOrigin reports whether the origin is explicitly listed. Only
// listed origins may be echoed back with credentials; an unrestricted
// configuration is answered with a wildcard instead (see Unrestricted).
func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

// Unrestricted reports whether any origin is acceptable: either nothing is
// configured or the list contains "*". Unrestricted mode must never be
// combined with Access-Control-Allow-Credentials.
func (a AllowedOrigins) Unrestricted() bool {
	if len(a) == 0 {
		return true
	}
	_, ok := a["*"]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

// GetAllowedOrigins parses the comma-separated ALLOWED_ORIGINS variable.
// Empty means any origin is accepted.
func (Cors) GetAllowedOrigins() AllowedOrigins {
	raw := GetEnv("ALLOWED_ORIGINS", "")
	origins := AllowedOrigins{}
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins[origin] = nullValue{}
		}
	}
	return origins
}

func (Cors) GetAllowedMethods() string {
	return "GET, POST, OPTIONS"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}
