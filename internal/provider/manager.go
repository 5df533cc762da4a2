package provider

import (
	"context"
	"time"

	"github.com/elabx-org/identify/internal/email"
	"github.com/rs/zerolog/log"
)

// Observer receives the outcome of every provider probe.
type Observer interface {
	ObserveProbe(source string, outcome Outcome, d time.Duration)
}

// Manager holds the ordered provider chain and implements fallback resolution.
// It carries only read-only configuration and is safe for concurrent use.
type Manager struct {
	lookups  []Provider
	enricher Enricher
	observer Observer
}

// NewManager probes lookups in the given order. enricher may be nil.
func NewManager(lookups []Provider, enricher Enricher) *Manager {
	return &Manager{lookups: lookups, enricher: enricher}
}

// WithObserver returns a copy of m that reports probes to o.
func (m *Manager) WithObserver(o Observer) *Manager {
	cp := *m
	cp.observer = o
	return &cp
}

// Identify resolves addr to a name and picture. Providers are probed one at a
// time and the first sufficient answer wins. When a provider returns an
// identifier, the enricher is probed with it and its sufficient answer
// replaces that provider's answer entirely.
func (m *Manager) Identify(ctx context.Context, addr string) Result {
	if !email.Valid(addr) {
		return fail(ErrInvalidEmail)
	}

	for _, p := range m.lookups {
		r := m.probe(p.Name(), func() Response { return p.Lookup(ctx, addr) })

		if r.Identifier != "" && m.enricher != nil {
			e := m.probe(m.enricher.Name(), func() Response { return m.enricher.Enrich(ctx, r.Identifier) })
			if e.Success {
				return e.Result()
			}
		}
		if r.Success {
			return r.Result()
		}
	}
	return fail(ErrNoResult)
}

func (m *Manager) probe(source string, fn func() Response) Response {
	start := time.Now()
	r := fn()
	d := time.Since(start)
	log.Debug().
		Str("provider", source).
		Str("outcome", string(r.Outcome)).
		Dur("duration", d).
		Msg("probe complete")
	if m.observer != nil {
		m.observer.ObserveProbe(source, r.Outcome, d)
	}
	return r
}

// Health returns the status of all providers, enricher last.
func (m *Manager) Health(ctx context.Context) []ProviderHealth {
	type checker interface {
		Name() string
		Healthy(ctx context.Context) (bool, int64, error)
	}
	checks := make([]checker, 0, len(m.lookups)+1)
	for _, p := range m.lookups {
		checks = append(checks, p)
	}
	if m.enricher != nil {
		checks = append(checks, m.enricher)
	}

	results := make([]ProviderHealth, len(checks))
	for i, c := range checks {
		h := ProviderHealth{Name: c.Name(), Enabled: true}
		if e, ok := c.(interface{ Enabled() bool }); ok && !e.Enabled() {
			h.Enabled = false
			results[i] = h
			continue
		}
		ok, latency, err := c.Healthy(ctx)
		h.Healthy, h.LatencyMs = ok, latency
		if err != nil {
			h.Error = err.Error()
		}
		results[i] = h
	}
	return results
}

// Names returns the names of all configured providers in probe order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.lookups)+1)
	for _, p := range m.lookups {
		names = append(names, p.Name())
	}
	if m.enricher != nil {
		names = append(names, m.enricher.Name())
	}
	return names
}

type ProviderHealth struct {
	Name      string
	Enabled   bool
	Healthy   bool
	LatencyMs int64
	Error     string
}
