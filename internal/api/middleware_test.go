package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elabx-org/identify/internal/api"
	"github.com/elabx-org/identify/internal/config"
	"github.com/elabx-org/identify/internal/provider"
)

func newAuthServer(t *testing.T, token string) *api.Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.APIToken = token
	mgr := provider.NewManager([]provider.Provider{
		stubProvider{name: "Gravatar", resp: found("Jane Doe", ""), healthy: true},
	}, nil)
	return api.NewServer(cfg, mgr)
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"identify without token", http.MethodGet, "/v1/identify?email=jane@example.com", "", http.StatusUnauthorized},
		{"identify with wrong token", http.MethodGet, "/v1/identify?email=jane@example.com", "Bearer nope", http.StatusUnauthorized},
		{"identify with token", http.MethodGet, "/v1/identify?email=jane@example.com", "Bearer correct-token", http.StatusOK},
		{"invalid email still needs token", http.MethodGet, "/v1/identify?email=nope", "", http.StatusUnauthorized},
		{"post identify without token", http.MethodPost, "/v1/identify", "", http.StatusUnauthorized},
		{"audit without token", http.MethodGet, "/v1/audit", "", http.StatusUnauthorized},
		{"audit with token", http.MethodGet, "/v1/audit", "Bearer correct-token", http.StatusOK},
		{"health is public", http.MethodGet, "/v1/health", "", http.StatusOK},
		{"metrics skips auth when unset", http.MethodGet, "/metrics", "", http.StatusNotFound},
	}

	srv := newAuthServer(t, "correct-token")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestBearerAuthDisabledWithoutToken(t *testing.T) {
	srv := newAuthServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/v1/identify?email=jane@example.com", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got == "unauthorized\n" {
		t.Errorf("got auth rejection body with auth disabled")
	}
}

func TestBearerAuthPassesEnvelope(t *testing.T) {
	srv := newAuthServer(t, "correct-token")

	req := httptest.NewRequest(http.MethodGet, "/v1/identify?email=jane@example.com", nil)
	req.Header.Set("Authorization", "Bearer correct-token")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	want := `{"success":true,"name":"Jane Doe","profile_picture":"","source":"Gravatar"}` + "\n"
	if got := w.Body.String(); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}
