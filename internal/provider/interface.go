package provider

import "context"

// Provider looks up an identity by email address.
type Provider interface {
	// Name returns the source name reported in results.
	Name() string
	// Lookup probes the backend. It never fails: a missing record, a transport
	// fault or an unreadable body all come back as a Response with OutcomeNoAnswer.
	Lookup(ctx context.Context, email string) Response
	// Healthy checks if the provider is reachable. Returns (ok, latencyMs, error).
	Healthy(ctx context.Context) (bool, int64, error)
}

// Enricher looks up an identity by an identifier that an earlier Provider
// discovered. It is only ever probed after that Provider answered.
type Enricher interface {
	Name() string
	Enrich(ctx context.Context, identifier string) Response
	Healthy(ctx context.Context) (bool, int64, error)
}
