package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
	"github.com/secmon-lab/riskscope/pkg/usecase"
)

func (s *Server) now() time.Time {
	return s.uc.Now()
}

func (s *Server) rateHandler(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	inputs, err := toAssessmentInputs(req.Assessments)
	if err != nil {
		handleError(w, r, err)
		return
	}

	preview, err := s.uc.Report.Rate(r.Context(), inputs, req.ControlEffectiveness)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toRateResponse(preview))
}

func (s *Server) listReportsHandler(w http.ResponseWriter, r *http.Request) {
	department := types.Department(strings.TrimSpace(r.URL.Query().Get("department")))
	reports, err := s.uc.Report.ListReports(r.Context(), department)
	if err != nil {
		handleError(w, r, err)
		return
	}

	now := s.now()
	resp := make([]*reportResponse, len(reports))
	for i, report := range reports {
		resp[i] = toReportResponse(report, now)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"reports": resp})
}

func (s *Server) submitReportHandler(w http.ResponseWriter, r *http.Request) {
	var req submitReportRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		handleError(w, r, err)
		return
	}

	created, err := s.uc.Report.SubmitReport(r.Context(), input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toReportResponse(created, s.now()))
}

func (s *Server) getReportHandler(w http.ResponseWriter, r *http.Request) {
	report, err := s.uc.Report.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toReportResponse(report, s.now()))
}

func (s *Server) deleteReportHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Report.DeleteReport(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateAssessmentsHandler(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	inputs, err := toAssessmentInputs(req.Assessments)
	if err != nil {
		handleError(w, r, err)
		return
	}

	updated, err := s.uc.Report.UpdateAssessments(r.Context(), chi.URLParam(r, "id"), inputs, req.ControlEffectiveness)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toReportResponse(updated, s.now()))
}

func (s *Server) updateStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	status := types.ReportStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	updated, err := s.uc.Report.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toReportResponse(updated, s.now()))
}

func (s *Server) mergeHandler(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	merged, err := s.uc.Report.MergeReports(r.Context(), req.ReportIDs, req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toReportResponse(merged, s.now()))
}

func (s *Server) resolveCompositeHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		handleError(w, r, goerr.Wrap(usecase.ErrValidation, "id query parameter is required"))
		return
	}

	res, err := s.uc.Report.ResolveComposite(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCompositeResponse(res, s.now()))
}
