package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/domain/interfaces"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/model/config"
	"github.com/secmon-lab/riskscope/pkg/domain/scoring"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
	"github.com/secmon-lab/riskscope/pkg/utils/logging"
)

// AssessmentInput is one category assessment as submitted by a caller
type AssessmentInput struct {
	Category   string
	Likelihood types.Likelihood
	Impact     types.Impact
}

// SubmitReportInput carries a new report. CompositeID is generated when
// empty. ControlEffectiveness 0 selects the policy default.
type SubmitReportInput struct {
	CompositeID          string
	Name                 string
	Description          string
	Department           types.Department
	Status               types.ReportStatus
	Assessments          []AssessmentInput
	ControlEffectiveness float64
	DueDate              *time.Time
}

// RatingPreview is the scoring result of assessments that are not stored
type RatingPreview struct {
	Assessments          []model.RiskCategoryAssessment
	ControlEffectiveness float64
	Aggregate            scoring.AggregateResult
}

type ReportUseCase struct {
	repo       interfaces.Repository
	riskConfig *config.RiskConfig
	codec      *scoring.CompositeCodec
	clock      func() time.Time
}

func NewReportUseCase(repo interfaces.Repository, cfg *config.RiskConfig, clock func() time.Time) *ReportUseCase {
	codec, err := scoring.NewCompositeCodec(cfg.EffectivePrefixSegments())
	if err != nil {
		codec = scoring.DefaultCompositeCodec()
	}
	if clock == nil {
		clock = time.Now
	}

	return &ReportUseCase{
		repo:       repo,
		riskConfig: cfg,
		codec:      codec,
		clock:      clock,
	}
}

// Codec returns the composite id codec configured by the policy
func (uc *ReportUseCase) Codec() *scoring.CompositeCodec {
	return uc.codec
}

func (uc *ReportUseCase) validateAssessments(inputs []AssessmentInput) ([]model.RiskCategoryAssessment, error) {
	if len(inputs) == 0 {
		return nil, goerr.Wrap(ErrValidation, "at least one category assessment is required")
	}

	seen := make(map[string]struct{}, len(inputs))
	assessments := make([]model.RiskCategoryAssessment, len(inputs))
	for i, in := range inputs {
		category := strings.TrimSpace(in.Category)
		if category == "" {
			return nil, goerr.Wrap(ErrValidation, "category is required", goerr.V("index", i))
		}
		if _, dup := seen[category]; dup {
			return nil, goerr.Wrap(ErrValidation, "category is assessed twice", goerr.V(CategoryKey, category))
		}
		seen[category] = struct{}{}

		if !uc.riskConfig.HasCategory(category) {
			return nil, goerr.Wrap(ErrValidation, "unknown category", goerr.V(CategoryKey, category))
		}
		if err := in.Likelihood.Validate(); err != nil {
			return nil, goerr.Wrap(ErrValidation, "invalid likelihood",
				goerr.V(CategoryKey, category), goerr.V("likelihood", int(in.Likelihood)))
		}
		if err := in.Impact.Validate(); err != nil {
			return nil, goerr.Wrap(ErrValidation, "invalid impact",
				goerr.V(CategoryKey, category), goerr.V("impact", int(in.Impact)))
		}

		assessments[i] = model.RiskCategoryAssessment{
			Category:   category,
			Likelihood: in.Likelihood,
			Impact:     in.Impact,
		}
	}
	return assessments, nil
}

func (uc *ReportUseCase) controlEffectiveness(ce float64) (float64, error) {
	if ce == 0 {
		ce = uc.riskConfig.EffectiveControlEffectiveness()
	}
	if _, err := scoring.NormalizeControlEffectiveness(ce); err != nil {
		return 0, goerr.Wrap(ErrValidation, "control effectiveness must be within (0, 1]",
			goerr.V("control_effectiveness", ce))
	}
	return ce, nil
}

// Rate scores assessments without storing anything
func (uc *ReportUseCase) Rate(ctx context.Context, inputs []AssessmentInput, ce float64) (*RatingPreview, error) {
	assessments, err := uc.validateAssessments(inputs)
	if err != nil {
		return nil, err
	}
	ce, err = uc.controlEffectiveness(ce)
	if err != nil {
		return nil, err
	}

	rated, err := scoring.RateAssessments(assessments, ce)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to rate assessments")
	}
	agg, err := scoring.Aggregate(rated, ce)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to aggregate assessments")
	}

	return &RatingPreview{
		Assessments:          rated,
		ControlEffectiveness: ce,
		Aggregate:            agg,
	}, nil
}

// SubmitReport validates, scores and stores a new report
func (uc *ReportUseCase) SubmitReport(ctx context.Context, input SubmitReportInput) (*model.RiskReport, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, goerr.Wrap(ErrValidation, "report name is required")
	}
	if err := input.Department.Validate(); err != nil {
		return nil, goerr.Wrap(ErrValidation, "invalid department", goerr.V(DepartmentKey, input.Department))
	}
	if !uc.riskConfig.HasDepartment(string(input.Department)) {
		return nil, goerr.Wrap(ErrValidation, "unknown department", goerr.V(DepartmentKey, input.Department))
	}

	status := input.Status.Normalize()
	if !status.IsValid() || status == types.ReportStatusConsolidated {
		return nil, goerr.Wrap(ErrValidation, "invalid initial status", goerr.V("status", input.Status))
	}

	assessments, err := uc.validateAssessments(input.Assessments)
	if err != nil {
		return nil, err
	}
	ce, err := uc.controlEffectiveness(input.ControlEffectiveness)
	if err != nil {
		return nil, err
	}

	compositeID, err := uc.assignCompositeID(ctx, input.CompositeID, input.Department)
	if err != nil {
		return nil, err
	}

	report := &model.RiskReport{
		CompositeID:          compositeID,
		Name:                 name,
		Description:          input.Description,
		Department:           input.Department,
		Status:               status,
		Assessments:          assessments,
		ControlEffectiveness: ce,
		DueDate:              input.DueDate,
	}
	if err := scoring.Apply(report); err != nil {
		return nil, goerr.Wrap(err, "failed to score report")
	}

	created, err := uc.repo.RiskReport().Create(ctx, report)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk report")
	}

	logging.From(ctx).Info("risk report submitted",
		"id", created.ID,
		"composite_id", created.CompositeID,
		"general_residual_score", created.GeneralResidualScore)
	return created, nil
}

// assignCompositeID accepts a caller supplied plain id or allocates the
// next DEPT/YEAR/NNN id
func (uc *ReportUseCase) assignCompositeID(ctx context.Context, requested string, department types.Department) (string, error) {
	if requested != "" {
		decoded, err := uc.codec.Decode(requested)
		if err != nil {
			return "", goerr.Wrap(ErrValidation, "malformed composite id", goerr.V(CompositeIDKey, requested))
		}
		if decoded.IsMerged() {
			return "", goerr.Wrap(ErrValidation, "a new report cannot carry a merged composite id",
				goerr.V(CompositeIDKey, requested))
		}
		if err := uc.ensureCompositeIDFree(ctx, requested); err != nil {
			return "", err
		}
		return requested, nil
	}

	if uc.codec.PrefixSegments() != config.DefaultPrefixSegments {
		return "", goerr.Wrap(ErrValidation, "composite id is required when the prefix is not DEPARTMENT/YEAR",
			goerr.V("prefix_segments", uc.codec.PrefixSegments()))
	}

	year := uc.clock().Year()
	seq, err := uc.repo.RiskReport().NextSequence(ctx, department, year)
	if err != nil {
		return "", goerr.Wrap(err, "failed to allocate sequence", goerr.V(DepartmentKey, department))
	}

	prefix := string(department) + scoring.Separator + strconv.Itoa(year)
	id, err := uc.codec.PlainID(prefix, fmt.Sprintf("%03d", seq))
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode composite id")
	}
	return id, nil
}

func (uc *ReportUseCase) ensureCompositeIDFree(ctx context.Context, compositeID string) error {
	_, err := uc.repo.RiskReport().GetByCompositeID(ctx, compositeID)
	if err == nil {
		return goerr.Wrap(ErrDuplicateCompositeID, "composite id is already used", goerr.V(CompositeIDKey, compositeID))
	}
	if !errors.Is(err, interfaces.ErrReportNotFound) {
		return goerr.Wrap(err, "failed to check composite id", goerr.V(CompositeIDKey, compositeID))
	}
	return nil
}

// UpdateAssessments replaces the assessments of a report and rescores it.
// A zero control effectiveness keeps the report's current value.
func (uc *ReportUseCase) UpdateAssessments(ctx context.Context, id string, inputs []AssessmentInput, ce float64) (*model.RiskReport, error) {
	report, err := uc.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Status == types.ReportStatusConsolidated {
		return nil, goerr.Wrap(ErrReportConsolidated, "consolidated report cannot be edited", goerr.V(ReportIDKey, id))
	}

	assessments, err := uc.validateAssessments(inputs)
	if err != nil {
		return nil, err
	}
	if ce == 0 {
		ce = report.ControlEffectiveness
	}
	ce, err = uc.controlEffectiveness(ce)
	if err != nil {
		return nil, err
	}

	report.Assessments = assessments
	report.ControlEffectiveness = ce
	if err := scoring.Apply(report); err != nil {
		return nil, goerr.Wrap(err, "failed to score report", goerr.V(ReportIDKey, id))
	}

	updated, err := uc.repo.RiskReport().Update(ctx, report)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk report", goerr.V(ReportIDKey, id))
	}
	return updated, nil
}

// UpdateStatus moves a report to another lifecycle status. CONSOLIDATED is
// only reachable through MergeReports.
func (uc *ReportUseCase) UpdateStatus(ctx context.Context, id string, status types.ReportStatus) (*model.RiskReport, error) {
	if !status.IsValid() || status == types.ReportStatusConsolidated {
		return nil, goerr.Wrap(ErrValidation, "invalid status", goerr.V("status", status))
	}

	report, err := uc.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Status == types.ReportStatusConsolidated {
		return nil, goerr.Wrap(ErrReportConsolidated, "consolidated report cannot change status", goerr.V(ReportIDKey, id))
	}

	report.Status = status.Normalize()
	updated, err := uc.repo.RiskReport().Update(ctx, report)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk report", goerr.V(ReportIDKey, id))
	}
	return updated, nil
}

func (uc *ReportUseCase) GetReport(ctx context.Context, id string) (*model.RiskReport, error) {
	report, err := uc.repo.RiskReport().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk report", goerr.V(ReportIDKey, id))
	}
	return report, nil
}

// ListReports returns all reports, or those of one department when given
func (uc *ReportUseCase) ListReports(ctx context.Context, department types.Department) ([]*model.RiskReport, error) {
	if department == "" {
		reports, err := uc.repo.RiskReport().List(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list risk reports")
		}
		return reports, nil
	}

	if err := department.Validate(); err != nil {
		return nil, goerr.Wrap(ErrValidation, "invalid department", goerr.V(DepartmentKey, department))
	}
	reports, err := uc.repo.RiskReport().ListByDepartment(ctx, department)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk reports", goerr.V(DepartmentKey, department))
	}
	return reports, nil
}

func (uc *ReportUseCase) DeleteReport(ctx context.Context, id string) error {
	if err := uc.repo.RiskReport().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete risk report", goerr.V(ReportIDKey, id))
	}
	return nil
}
