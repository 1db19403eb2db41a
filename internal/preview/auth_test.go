package preview

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Raiwe17/ProektSite/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthDisabledAllowsAll(t *testing.T) {
	var a *Auth
	h := a.Require(RoleAdmin)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 without auth configured, got %d", rec.Code)
	}
}

func TestAuthRoles(t *testing.T) {
	a := NewAuth(
		config.Credentials{User: "admin", Password: "secret"},
		config.Credentials{User: "guest", Password: "look"},
	)
	adminOnly := a.Require(RoleAdmin)(okHandler())
	anyone := a.Require(RoleAdmin, RoleViewer)(okHandler())

	tests := []struct {
		name       string
		handler    http.Handler
		user, pass string
		noAuth     bool
		want       int
	}{
		{"no credentials", anyone, "", "", true, http.StatusUnauthorized},
		{"wrong password", anyone, "admin", "nope", false, http.StatusUnauthorized},
		{"admin on admin route", adminOnly, "admin", "secret", false, http.StatusOK},
		{"viewer on shared route", anyone, "guest", "look", false, http.StatusOK},
		{"viewer on admin route", adminOnly, "guest", "look", false, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if !tt.noAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("got %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
		})
	}
}

func TestAuthFromEnv(t *testing.T) {
	t.Setenv("PROEKTSITE_ADMIN_USER", "")
	t.Setenv("PROEKTSITE_ADMIN_PASS", "")
	t.Setenv("PROEKTSITE_VIEWER_USER", "")
	t.Setenv("PROEKTSITE_VIEWER_PASS", "")
	a, err := AuthFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if a.Enabled() {
		t.Error("auth should be disabled without admin credentials")
	}

	t.Setenv("PROEKTSITE_ADMIN_USER", "admin")
	t.Setenv("PROEKTSITE_ADMIN_PASS", "secret")
	a, err = AuthFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if !a.Enabled() {
		t.Error("auth should be enabled with admin credentials")
	}
}
