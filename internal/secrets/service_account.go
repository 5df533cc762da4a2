package secrets

import (
	"context"
	"fmt"

	onepassword "github.com/1password/onepassword-sdk-go"
)

// ServiceAccountSource resolves references with the 1Password SDK.
type ServiceAccountSource struct {
	client *onepassword.Client
}

func NewServiceAccountSource(ctx context.Context, token string) (*ServiceAccountSource, error) {
	if token == "" {
		return nil, fmt.Errorf("service account token is required")
	}
	client, err := onepassword.NewClient(
		ctx,
		onepassword.WithServiceAccountToken(token),
		onepassword.WithIntegrationInfo("identify", "1.0.0"),
	)
	if err != nil {
		return nil, fmt.Errorf("create 1password client: %w", err)
	}
	return &ServiceAccountSource{client: client}, nil
}

func (s *ServiceAccountSource) Name() string { return "service_account" }

func (s *ServiceAccountSource) Resolve(ctx context.Context, ref *Ref) (string, error) {
	val, err := s.client.Secrets().Resolve(ctx, ref.Raw)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", ref.Raw, err)
	}
	return val, nil
}
