package api

import (
	"net/http"
	"strconv"

	"github.com/elabx-org/identify/internal/audit"
)

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if s.auditor == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"entries": []audit.Entry{}, "count": 0})
		return
	}

	opts := audit.QueryOptions{
		Source: r.URL.Query().Get("source"),
		Result: r.URL.Query().Get("result"),
	}
	if h := r.URL.Query().Get("hours"); h != "" {
		hours, err := strconv.Atoi(h)
		if err != nil || hours < 0 {
			writeError(w, badRequest("hours must be a non-negative integer"))
			return
		}
		opts.Hours = hours
	}

	entries, err := s.auditor.Query(opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}
