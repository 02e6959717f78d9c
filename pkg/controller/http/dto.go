package http

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
	"github.com/secmon-lab/riskscope/pkg/usecase"
)

// scale accepts a likelihood or impact either as a JSON number or as a
// string holding the number or the label
type scale string

func (s *scale) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = scale(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = scale(n.String())
	return nil
}

type assessmentRequest struct {
	Category   string `json:"category"`
	Likelihood scale  `json:"likelihood"`
	Impact     scale  `json:"impact"`
}

func toAssessmentInputs(reqs []assessmentRequest) ([]usecase.AssessmentInput, error) {
	inputs := make([]usecase.AssessmentInput, len(reqs))
	for i, req := range reqs {
		l, err := types.ParseLikelihood(string(req.Likelihood))
		if err != nil {
			return nil, goerr.Wrap(usecase.ErrValidation, "invalid likelihood",
				goerr.V("index", i), goerr.V("likelihood", req.Likelihood))
		}
		im, err := types.ParseImpact(string(req.Impact))
		if err != nil {
			return nil, goerr.Wrap(usecase.ErrValidation, "invalid impact",
				goerr.V("index", i), goerr.V("impact", req.Impact))
		}
		inputs[i] = usecase.AssessmentInput{
			Category:   req.Category,
			Likelihood: l,
			Impact:     im,
		}
	}
	return inputs, nil
}

type rateRequest struct {
	Assessments          []assessmentRequest `json:"assessments"`
	ControlEffectiveness float64             `json:"control_effectiveness"`
}

type submitReportRequest struct {
	CompositeID          string              `json:"composite_id"`
	Name                 string              `json:"name"`
	Description          string              `json:"description"`
	Department           string              `json:"department"`
	Status               string              `json:"status"`
	Assessments          []assessmentRequest `json:"assessments"`
	ControlEffectiveness float64             `json:"control_effectiveness"`
	DueDate              *time.Time          `json:"due_date"`
}

func (req *submitReportRequest) toInput() (usecase.SubmitReportInput, error) {
	assessments, err := toAssessmentInputs(req.Assessments)
	if err != nil {
		return usecase.SubmitReportInput{}, err
	}
	var status types.ReportStatus
	if req.Status != "" {
		status, err = types.ParseReportStatus(strings.ToUpper(req.Status))
		if err != nil {
			return usecase.SubmitReportInput{}, goerr.Wrap(usecase.ErrValidation, "invalid status", goerr.V("status", req.Status))
		}
	}

	return usecase.SubmitReportInput{
		CompositeID:          strings.TrimSpace(req.CompositeID),
		Name:                 req.Name,
		Description:          req.Description,
		Department:           types.Department(strings.TrimSpace(req.Department)),
		Status:               status,
		Assessments:          assessments,
		ControlEffectiveness: req.ControlEffectiveness,
		DueDate:              req.DueDate,
	}, nil
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type mergeRequest struct {
	ReportIDs []string `json:"report_ids"`
	Name      string   `json:"name"`
}

type assessmentResponse struct {
	Category        string `json:"category"`
	Likelihood      int    `json:"likelihood"`
	LikelihoodLabel string `json:"likelihood_label,omitempty"`
	Impact          int    `json:"impact"`
	ImpactLabel     string `json:"impact_label,omitempty"`
	InherentRating  int    `json:"inherent_rating"`
	ResidualRating  int    `json:"residual_rating"`
	Level           string `json:"level"`
	ResidualLevel   string `json:"residual_level"`
}

func toAssessmentResponses(assessments []model.RiskCategoryAssessment) []assessmentResponse {
	resp := make([]assessmentResponse, len(assessments))
	for i, a := range assessments {
		resp[i] = assessmentResponse{
			Category:       a.Category,
			Likelihood:     int(a.Likelihood),
			Impact:         int(a.Impact),
			InherentRating: a.InherentRating,
			ResidualRating: a.ResidualRating,
			Level:          a.Level.String(),
			ResidualLevel:  a.ResidualLevel.String(),
		}
		if a.Likelihood.IsSet() {
			resp[i].LikelihoodLabel = a.Likelihood.String()
		}
		if a.Impact.IsSet() {
			resp[i].ImpactLabel = a.Impact.String()
		}
	}
	return resp
}

type reportResponse struct {
	ID                   string               `json:"id"`
	CompositeID          string               `json:"composite_id"`
	Name                 string               `json:"name"`
	Description          string               `json:"description"`
	Department           string               `json:"department"`
	Status               string               `json:"status"`
	Assessments          []assessmentResponse `json:"assessments"`
	ControlEffectiveness float64              `json:"control_effectiveness"`
	GeneralInherentScore float64              `json:"general_inherent_score"`
	GeneralResidualScore float64              `json:"general_residual_score"`
	DueDate              *time.Time           `json:"due_date,omitempty"`
	Overdue              bool                 `json:"overdue"`
	ConsolidatedInto     string               `json:"consolidated_into,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

func toReportResponse(r *model.RiskReport, now time.Time) *reportResponse {
	if r == nil {
		return nil
	}
	return &reportResponse{
		ID:                   r.ID,
		CompositeID:          r.CompositeID,
		Name:                 r.Name,
		Description:          r.Description,
		Department:           r.Department.String(),
		Status:               r.Status.String(),
		Assessments:          toAssessmentResponses(r.Assessments),
		ControlEffectiveness: r.ControlEffectiveness,
		GeneralInherentScore: r.GeneralInherentScore,
		GeneralResidualScore: r.GeneralResidualScore,
		DueDate:              r.DueDate,
		Overdue:              r.IsOverdue(now),
		ConsolidatedInto:     r.ConsolidatedInto,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

type rateResponse struct {
	Assessments          []assessmentResponse `json:"assessments"`
	ControlEffectiveness float64              `json:"control_effectiveness"`
	GeneralInherentScore float64              `json:"general_inherent_score"`
	GeneralResidualScore float64              `json:"general_residual_score"`
	ValidCount           int                  `json:"valid_count"`
	AverageRating        float64              `json:"average_rating"`
	AverageLevel         string               `json:"average_level"`
}

func toRateResponse(p *usecase.RatingPreview) *rateResponse {
	return &rateResponse{
		Assessments:          toAssessmentResponses(p.Assessments),
		ControlEffectiveness: p.ControlEffectiveness,
		GeneralInherentScore: p.Aggregate.GeneralInherentScore,
		GeneralResidualScore: p.Aggregate.GeneralResidualScore,
		ValidCount:           p.Aggregate.ValidCount,
		AverageRating:        p.Aggregate.AverageRating,
		AverageLevel:         p.Aggregate.AverageLevel.String(),
	}
}

type memberResponse struct {
	Member  string          `json:"member"`
	PlainID string          `json:"plain_id"`
	Found   bool            `json:"found"`
	Report  *reportResponse `json:"report,omitempty"`
}

type compositeResponse struct {
	CompositeID string           `json:"composite_id"`
	Prefix      string           `json:"prefix"`
	Merged      bool             `json:"merged"`
	Report      *reportResponse  `json:"report,omitempty"`
	Members     []memberResponse `json:"members"`
}

func toCompositeResponse(res *usecase.CompositeResolution, now time.Time) *compositeResponse {
	resp := &compositeResponse{
		CompositeID: res.ID.String(),
		Prefix:      res.ID.Prefix,
		Merged:      res.ID.IsMerged(),
		Report:      toReportResponse(res.Report, now),
		Members:     make([]memberResponse, len(res.Members)),
	}
	for i, m := range res.Members {
		resp.Members[i] = memberResponse{
			Member:  m.Member,
			PlainID: m.PlainID,
			Found:   m.Found,
			Report:  toReportResponse(m.Report, now),
		}
	}
	return resp
}

type reportRef struct {
	ID          string `json:"id"`
	CompositeID string `json:"composite_id"`
	Name        string `json:"name"`
}

func toReportRef(r *model.RiskReport) reportRef {
	return reportRef{ID: r.ID, CompositeID: r.CompositeID, Name: r.Name}
}

type groupResponse struct {
	ID          string      `json:"id"`
	CategoryKey string      `json:"category_key"`
	Categories  []string    `json:"categories"`
	Reports     []reportRef `json:"reports"`
	ReportCount int         `json:"report_count"`
	Duplicate   bool        `json:"duplicate"`
}

func toGroupResponses(groups []*model.RiskGroup) []groupResponse {
	resp := make([]groupResponse, len(groups))
	for i, g := range groups {
		refs := make([]reportRef, len(g.Members))
		for j, m := range g.Members {
			refs[j] = toReportRef(m)
		}
		resp[i] = groupResponse{
			ID:          g.ID,
			CategoryKey: g.CategoryKey,
			Categories:  g.Categories,
			Reports:     refs,
			ReportCount: g.ReportCount,
			Duplicate:   g.IsDuplicate(),
		}
	}
	return resp
}

type candidateResponse struct {
	ReportA        reportRef `json:"report_a"`
	ReportB        reportRef `json:"report_b"`
	Score          int       `json:"score"`
	MatchedSignals []string  `json:"matched_signals"`
	NameSimilarity float64   `json:"name_similarity"`
}

func toCandidateResponses(pairs []*model.MergeCandidatePair) []candidateResponse {
	resp := make([]candidateResponse, len(pairs))
	for i, p := range pairs {
		signals := make([]string, len(p.MatchedSignals))
		for j, s := range p.MatchedSignals {
			signals[j] = string(s)
		}
		resp[i] = candidateResponse{
			ReportA:        toReportRef(p.ReportA),
			ReportB:        toReportRef(p.ReportB),
			Score:          p.Score,
			MatchedSignals: signals,
			NameSimilarity: p.NameSimilarity,
		}
	}
	return resp
}

type healthResponse struct {
	Department            string  `json:"department"`
	TotalRisks            int     `json:"total_risks"`
	ClosedRisks           int     `json:"closed_risks"`
	OverdueCount          int     `json:"overdue_count"`
	AverageResidualRating float64 `json:"average_residual_rating"`
	HealthScore           float64 `json:"health_score"`
	Band                  string  `json:"band"`
	Color                 string  `json:"color"`
}

func toHealthResponse(h *model.DepartmentHealth) healthResponse {
	return healthResponse{
		Department:            h.Department.String(),
		TotalRisks:            h.TotalRisks,
		ClosedRisks:           h.ClosedRisks,
		OverdueCount:          h.OverdueCount,
		AverageResidualRating: h.AverageResidualRating,
		HealthScore:           h.HealthScore,
		Band:                  h.Band.String(),
		Color:                 h.Band.Color(),
	}
}
