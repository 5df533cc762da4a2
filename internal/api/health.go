package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status    string           `json:"status"`
	Providers []ProviderStatus `json:"providers"`
	Uptime    int64            `json:"uptime_seconds"`
}

type ProviderStatus struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := s.health(r.Context())
	resp.Uptime = int64(time.Since(startTime).Seconds())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// health probes providers at most once per healthCacheTTL.
func (s *Server) health(ctx context.Context) HealthResponse {
	s.healthMu.RLock()
	if s.healthCached != nil && time.Since(s.healthCheckedAt) < healthCacheTTL {
		cached := *s.healthCached
		s.healthMu.RUnlock()
		return cached
	}
	s.healthMu.RUnlock()

	resp := HealthResponse{Status: "ok", Providers: []ProviderStatus{}}
	if s.resolver == nil {
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	for _, h := range s.resolver.Health(ctx) {
		ps := ProviderStatus{Name: h.Name, LatencyMs: h.LatencyMs, Error: h.Error}
		switch {
		case !h.Enabled:
			ps.Status = "disabled"
		case h.Healthy:
			ps.Status = "ok"
		default:
			ps.Status = "unreachable"
			resp.Status = "degraded"
		}
		resp.Providers = append(resp.Providers, ps)
	}

	s.healthMu.Lock()
	s.healthCached = &resp
	s.healthCheckedAt = time.Now()
	s.healthMu.Unlock()
	return resp
}
