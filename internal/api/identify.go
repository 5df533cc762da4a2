package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/elabx-org/identify/internal/audit"
	"github.com/elabx-org/identify/internal/email"
	"github.com/elabx-org/identify/internal/metrics"
	"github.com/elabx-org/identify/internal/provider"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const lookupTimeout = 40 * time.Second

type identifyRequest struct {
	Email string `json:"email"`
}

// handleIdentify resolves one address. GET takes ?email=, POST takes a JSON
// body. Failed lookups keep the result envelope and map to 400 or 404.
func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	addr := r.URL.Query().Get("email")
	if r.Method == http.MethodPost {
		var req identifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, badRequest("invalid request body"))
			return
		}
		addr = req.Email
	}
	if s.resolver == nil {
		writeError(w, unavailable("no identity providers configured"))
		return
	}

	lookupID := uuid.NewString()
	ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
	defer cancel()

	start := time.Now()
	result := s.resolver.Identify(ctx, addr)
	elapsed := time.Since(start)

	label := metrics.ResultLabel(result)
	if s.metrics != nil {
		s.metrics.ObserveLookup(result)
	}
	log.Info().
		Str("lookup_id", lookupID).
		Str("source", result.Source).
		Str("result", label).
		Dur("duration", elapsed).
		Msg("lookup")

	if s.auditor != nil {
		entry := audit.Entry{
			LookupID:    lookupID,
			EmailHash:   provider.MD5Hasher{}.Sum([]byte(email.Normalize(addr))),
			Source:      result.Source,
			Result:      label,
			DurationMs:  elapsed.Milliseconds(),
			TriggeredBy: r.Header.Get("X-Triggered-By"),
		}
		if e := resultError(result); e != nil {
			entry.Error = e.TextCode
		}
		if err := s.auditor.Log(entry); err != nil {
			log.Warn().Err(err).Str("lookup_id", lookupID).Msg("audit write failed")
		}
	}

	w.Header().Set("X-Lookup-ID", lookupID)
	status := http.StatusOK
	if e := resultError(result); e != nil {
		status = e.Code
		w.Header().Set("X-Error-Code", e.TextCode)
	}
	writeJSON(w, status, result)
}
