package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/adcl/internal/model"
)

// handleListProjects handles GET /v1/projects.
func (s *ChangelogServer) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.listProjects(r.Context())
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// handleCreateProject handles POST /v1/projects.
func (s *ChangelogServer) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in createProjectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := s.createProject(r.Context(), in)
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleListVersions handles GET /v1/projects/{project}/versions.
func (s *ChangelogServer) handleListVersions(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")
	versions, err := s.listVersions(r.Context(), project)
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"project": project, "versions": versions})
}

// handleImportChanges handles POST /v1/projects/{project}/versions/{version}/changes.
func (s *ChangelogServer) handleImportChanges(w http.ResponseWriter, r *http.Request) {
	var cs model.ChangeSet
	if err := json.NewDecoder(r.Body).Decode(&cs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := s.importChanges(r.Context(), r.PathValue("project"), r.PathValue("version"), &cs)
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// handleListEvents handles GET /v1/projects/{project}/events.
func (s *ChangelogServer) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	evts, err := s.store.ListEvents(r.Context(), r.PathValue("project"), limit)
	if err != nil {
		writeServerError(w, err)
		return
	}
	if evts == nil {
		evts = []*model.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": evts})
}

// handleLoadChangelog handles POST /v1/changelog. It responds once the
// selected changelog has replaced the dataset.
func (s *ChangelogServer) handleLoadChangelog(w http.ResponseWriter, r *http.Request) {
	var sel model.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	summary, err := s.loadChangelog(r.Context(), sel)
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleGetChangelog handles GET /v1/changelog.
func (s *ChangelogServer) handleGetChangelog(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.snapshot()
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Summary())
}

// handleGetRecords handles GET /v1/changelog/records.
func (s *ChangelogServer) handleGetRecords(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.snapshot()
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"load_id": snap.LoadID,
		"records": snap.Records,
	})
}

// handleGetTree handles GET /v1/tree?display=&filter=.
func (s *ChangelogServer) handleGetTree(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.tree(q.Get("display"), q.Get("filter"))
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetGraph handles GET /v1/graph?filter=.
func (s *ChangelogServer) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	resp, err := s.graph(r.URL.Query().Get("filter"))
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
