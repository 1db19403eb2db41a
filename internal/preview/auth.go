package preview

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/Raiwe17/ProektSite/internal/config"
)

// Role represents an authorization role.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// Auth checks basic auth credentials. A nil or disabled Auth grants admin to
// every request.
type Auth struct {
	admin  config.Credentials
	viewer config.Credentials
}

// NewAuth creates an Auth from explicit credentials.
func NewAuth(admin, viewer config.Credentials) *Auth {
	return &Auth{admin: admin, viewer: viewer}
}

// AuthFromEnv loads PROEKTSITE_ADMIN_USER/PASS and PROEKTSITE_VIEWER_USER/PASS,
// honouring the *_FILE convention. Auth is enabled only when admin
// credentials are set.
func AuthFromEnv() (*Auth, error) {
	admin, err := config.ResolveCredentials("PROEKTSITE_ADMIN")
	if err != nil {
		return nil, fmt.Errorf("resolve admin credentials: %w", err)
	}
	viewer, err := config.ResolveCredentials("PROEKTSITE_VIEWER")
	if err != nil {
		return nil, fmt.Errorf("resolve viewer credentials: %w", err)
	}
	return NewAuth(admin, viewer), nil
}

// Enabled returns true if authentication is configured.
func (a *Auth) Enabled() bool {
	return a != nil && a.admin.Set()
}

// authenticate returns the role for the request's credentials, or "" if
// they are invalid.
func (a *Auth) authenticate(r *http.Request) Role {
	if !a.Enabled() {
		return RoleAdmin
	}

	user, pass, ok := r.BasicAuth()
	if !ok {
		return ""
	}
	if secureCompare(user, a.admin.User) && secureCompare(pass, a.admin.Password) {
		return RoleAdmin
	}
	if a.viewer.Set() && secureCompare(user, a.viewer.User) && secureCompare(pass, a.viewer.Password) {
		return RoleViewer
	}
	return ""
}

// secureCompare performs constant-time string comparison.
func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func requireAuth(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="ProektSite"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// Require returns middleware admitting only the given roles.
func (a *Auth) Require(allowed ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := a.authenticate(r)
			if role == "" {
				requireAuth(w)
				return
			}
			for _, ok := range allowed {
				if role == ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}
