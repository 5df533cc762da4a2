package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/elabx-org/identify/internal/api"
	"github.com/elabx-org/identify/internal/audit"
	"github.com/elabx-org/identify/internal/config"
)

func TestAuditEndpointFilters(t *testing.T) {
	f, _ := os.CreateTemp("", "identify-api-audit-*.log")
	f.Close()
	defer os.Remove(f.Name())

	auditor, err := audit.New(f.Name())
	if err != nil {
		t.Fatalf("audit.New() error = %v", err)
	}
	defer auditor.Close()
	auditor.Log(audit.Entry{LookupID: "a", Source: "Gravatar", Result: "found"})
	auditor.Log(audit.Entry{LookupID: "b", Source: "Google", Result: "found"})
	auditor.Log(audit.Entry{LookupID: "c", Result: "no_result"})

	srv := api.NewServer(&config.Config{}, nil)
	srv.SetAuditor(auditor)

	req := httptest.NewRequest(http.MethodGet, "/v1/audit?source=google&hours=1", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Entries []audit.Entry `json:"entries"`
		Count   int           `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Count != 1 || resp.Entries[0].LookupID != "b" {
		t.Errorf("entries = %+v, want [b]", resp.Entries)
	}
}

func TestAuditEndpointRejectsBadHours(t *testing.T) {
	srv := api.NewServer(&config.Config{}, nil)
	f, _ := os.CreateTemp("", "identify-api-audit-*.log")
	f.Close()
	defer os.Remove(f.Name())
	auditor, _ := audit.New(f.Name())
	defer auditor.Close()
	srv.SetAuditor(auditor)

	req := httptest.NewRequest(http.MethodGet, "/v1/audit?hours=yesterday", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if got := w.Header().Get("X-Error-Code"); got != api.TextCodeBadRequest {
		t.Errorf("X-Error-Code = %q, want %q", got, api.TextCodeBadRequest)
	}
}
