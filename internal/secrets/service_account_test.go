package secrets_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/elabx-org/identify/internal/config"
	"github.com/elabx-org/identify/internal/secrets"
)

func TestServiceAccountSourceMissingToken(t *testing.T) {
	if _, err := secrets.NewServiceAccountSource(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestServiceAccountSourceResolve(t *testing.T) {
	token := os.Getenv("OP_SERVICE_ACCOUNT_TOKEN")
	ref := os.Getenv("IDENTIFY_TEST_OP_REF")
	if token == "" || ref == "" {
		t.Skip("OP_SERVICE_ACCOUNT_TOKEN or IDENTIFY_TEST_OP_REF not set, skipping integration test")
	}
	src, err := secrets.NewServiceAccountSource(context.Background(), token)
	if err != nil {
		t.Fatalf("NewServiceAccountSource() error = %v", err)
	}
	if _, err := secrets.Expand(context.Background(), src, ref); err != nil {
		t.Errorf("Expand(%q) error = %v", ref, err)
	}
}

func TestFromConfig(t *testing.T) {
	src, err := secrets.FromConfig(context.Background(), config.OnePasswordConfig{})
	if err != nil || src != nil {
		t.Errorf("FromConfig(empty) = %v, %v; want nil, nil", src, err)
	}

	src, err = secrets.FromConfig(context.Background(), config.OnePasswordConfig{
		ConnectURL:   "http://connect:8080",
		ConnectToken: "token",
	})
	if err != nil {
		t.Fatalf("FromConfig(connect) error = %v", err)
	}
	if src.Name() != "connect" {
		t.Errorf("Name() = %q, want connect", src.Name())
	}

	if _, err := secrets.FromConfig(context.Background(), config.OnePasswordConfig{ConnectURL: "http://connect:8080"}); err == nil {
		t.Error("expected error for connect url without token")
	}
}

func TestExpandNoSourceSentinel(t *testing.T) {
	_, err := secrets.Expand(context.Background(), nil, "op://v/i/f")
	if !errors.Is(err, secrets.ErrNoSource) {
		t.Errorf("Expand() error = %v, want ErrNoSource", err)
	}
}

// Verify the sources satisfy the Source interface at compile time
func TestSourcesImplementSource(t *testing.T) {
	var _ secrets.Source = (*secrets.ServiceAccountSource)(nil)
	var _ secrets.Source = (*secrets.ConnectSource)(nil)
}
