package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alfredjeanlab/adcl/internal/changelog"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *ChangelogServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/projects", s.handleListProjects)
	mux.HandleFunc("POST /v1/projects", s.handleCreateProject)
	mux.HandleFunc("GET /v1/projects/{project}/versions", s.handleListVersions)
	mux.HandleFunc("POST /v1/projects/{project}/versions/{version}/changes", s.handleImportChanges)
	mux.HandleFunc("GET /v1/projects/{project}/events", s.handleListEvents)
	mux.HandleFunc("POST /v1/changelog", s.handleLoadChangelog)
	mux.HandleFunc("GET /v1/changelog", s.handleGetChangelog)
	mux.HandleFunc("GET /v1/changelog/records", s.handleGetRecords)
	mux.HandleFunc("GET /v1/tree", s.handleGetTree)
	mux.HandleFunc("GET /v1/graph", s.handleGetGraph)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *ChangelogServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServerError maps an error returned by the shared server methods to
// an HTTP status.
func writeServerError(w http.ResponseWriter, err error) {
	var ie inputError
	var nf notFoundError
	switch {
	case errors.As(err, &ie):
		writeError(w, http.StatusBadRequest, ie.Error())
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, nf.Error())
	case errors.Is(err, changelog.ErrSuperseded):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
