package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
)

func (s *Server) groupsHandler(w http.ResponseWriter, r *http.Request) {
	groups, err := s.uc.Analytics.CategoryGroups(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"groups": toGroupResponses(groups)})
}

func (s *Server) candidatesHandler(w http.ResponseWriter, r *http.Request) {
	pairs, err := s.uc.Analytics.MergeCandidates(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"candidates": toCandidateResponses(pairs)})
}

func (s *Server) allHealthHandler(w http.ResponseWriter, r *http.Request) {
	all, err := s.uc.Analytics.AllDepartmentHealth(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := make([]healthResponse, len(all))
	for i, h := range all {
		resp[i] = toHealthResponse(h)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"departments": resp})
}

func (s *Server) departmentHealthHandler(w http.ResponseWriter, r *http.Request) {
	department := types.Department(chi.URLParam(r, "department"))
	health, err := s.uc.Analytics.DepartmentHealth(r.Context(), department)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toHealthResponse(health))
}
