package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/elabx-org/identify/internal/provider"
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidEmail = "INVALID_EMAIL"
	TextCodeNoResult     = "NO_RESULT"
	TextCodeBadRequest   = "BAD_REQUEST"
	TextCodeUnavailable  = "UNAVAILABLE"
)

// resultError maps a failed lookup onto an HTTP-aware error. It returns nil
// for successful results.
func resultError(r provider.Result) *goerrors.Error {
	if r.Success {
		return nil
	}
	switch err := r.Err(); {
	case errors.Is(err, provider.ErrInvalidEmail):
		return goerrors.New(r.Error, goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(TextCodeInvalidEmail)
	case errors.Is(err, provider.ErrNoResult):
		return goerrors.New(r.Error, goerrors.CategoryNotFound).
			WithCode(http.StatusNotFound).
			WithTextCode(TextCodeNoResult)
	default:
		return goerrors.New(r.Error, goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError)
	}
}

func badRequest(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(TextCodeBadRequest)
}

func unavailable(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryExternal).
		WithCode(http.StatusServiceUnavailable).
		WithTextCode(TextCodeUnavailable)
}

// writeError renders request-level failures in the same shape as a failed
// lookup so clients only parse one envelope.
func writeError(w http.ResponseWriter, e *goerrors.Error) {
	if e.TextCode != "" {
		w.Header().Set("X-Error-Code", e.TextCode)
	}
	writeJSON(w, e.Code, map[string]any{
		"success": false,
		"error":   e.Message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
