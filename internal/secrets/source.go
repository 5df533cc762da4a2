package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/elabx-org/identify/internal/config"
)

// ErrNoSource is returned when a value needs resolving but no 1Password
// backend is configured.
var ErrNoSource = errors.New("secrets: no 1password source configured")

// Source resolves op:// references.
type Source interface {
	Name() string
	Resolve(ctx context.Context, ref *Ref) (string, error)
}

// FromConfig picks Connect when configured, else a service account, else nil.
func FromConfig(ctx context.Context, cfg config.OnePasswordConfig) (Source, error) {
	if cfg.ConnectURL != "" {
		if cfg.ConnectToken == "" {
			return nil, fmt.Errorf("connect url %q set without a token", cfg.ConnectURL)
		}
		return NewConnectSource(cfg.ConnectURL, cfg.ConnectToken), nil
	}
	if cfg.ServiceAccountToken != "" {
		src, err := NewServiceAccountSource(ctx, cfg.ServiceAccountToken)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	return nil, nil
}

// Expand returns value unchanged unless it is an op:// reference, in which
// case it is resolved through src.
func Expand(ctx context.Context, src Source, value string) (string, error) {
	if !IsRef(value) {
		return value, nil
	}
	ref, err := ParseRef(value)
	if err != nil {
		return "", err
	}
	if src == nil {
		return "", fmt.Errorf("%w: cannot resolve %s", ErrNoSource, ref.Raw)
	}
	return src.Resolve(ctx, ref)
}
