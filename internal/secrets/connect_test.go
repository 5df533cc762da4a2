package secrets_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elabx-org/identify/internal/secrets"
)

func newConnectServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	// GET /v1/vaults: list vaults
	mux.HandleFunc("/v1/vaults", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "vault-id-123", "name": "HomeLab"},
		})
	})

	// GET /v1/vaults/{vaultID}/items: list items
	mux.HandleFunc("/v1/vaults/vault-id-123/items", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "item-id-456", "title": "google-plus"},
		})
	})

	// GET /v1/vaults/{vaultID}/items/{itemID}: get item fields
	mux.HandleFunc("/v1/vaults/vault-id-123/items/item-id-456", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "item-id-456",
			"title": "google-plus",
			"fields": []map[string]interface{}{
				{"label": "credential", "value": "AIzaSy-test-key"},
			},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestConnectSourceResolve(t *testing.T) {
	srv := newConnectServer(t)
	src := secrets.NewConnectSource(srv.URL, "test-token")

	ref, _ := secrets.ParseRef("op://HomeLab/google-plus/credential")
	val, err := src.Resolve(context.Background(), ref)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if val != "AIzaSy-test-key" {
		t.Errorf("val = %q, want AIzaSy-test-key", val)
	}
}

func TestConnectSourceMissingField(t *testing.T) {
	srv := newConnectServer(t)
	src := secrets.NewConnectSource(srv.URL, "test-token")

	ref, _ := secrets.ParseRef("op://HomeLab/google-plus/password")
	if _, err := src.Resolve(context.Background(), ref); err == nil {
		t.Fatal("expected error for missing field")
	}
}

func TestConnectSourceUnauthorized(t *testing.T) {
	srv := newConnectServer(t)
	src := secrets.NewConnectSource(srv.URL, "wrong-token")

	ref, _ := secrets.ParseRef("op://HomeLab/google-plus/credential")
	if _, err := src.Resolve(context.Background(), ref); err == nil {
		t.Fatal("expected error for rejected token")
	}
}

func TestExpand(t *testing.T) {
	srv := newConnectServer(t)
	src := secrets.NewConnectSource(srv.URL, "test-token")

	got, err := secrets.Expand(context.Background(), src, "op://HomeLab/google-plus/credential")
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got != "AIzaSy-test-key" {
		t.Errorf("Expand() = %q, want AIzaSy-test-key", got)
	}

	plain, err := secrets.Expand(context.Background(), nil, "plain-key")
	if err != nil || plain != "plain-key" {
		t.Errorf("Expand(plain) = %q, %v; want plain-key, nil", plain, err)
	}
}
