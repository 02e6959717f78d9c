package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/domain/interfaces"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/scoring"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
	"github.com/secmon-lab/riskscope/pkg/utils/logging"
)

// CompositeResolution is a decoded composite id with its stored reports
type CompositeResolution struct {
	ID      scoring.CompositeID
	Report  *model.RiskReport
	Members []scoring.MemberResolution
}

// MergeReports consolidates active plain reports sharing one prefix into a
// new report. Members are encoded in the given order. An empty name keeps
// the first report's name.
func (uc *ReportUseCase) MergeReports(ctx context.Context, ids []string, name string) (*model.RiskReport, error) {
	if len(ids) < 2 {
		return nil, goerr.Wrap(ErrNotMergeable, "at least two reports are required", goerr.V("count", len(ids)))
	}

	seen := make(map[string]struct{}, len(ids))
	originals := make([]*model.RiskReport, 0, len(ids))
	members := make([]string, 0, len(ids))
	var prefix string

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, goerr.Wrap(ErrNotMergeable, "report is listed twice", goerr.V(ReportIDKey, id))
		}
		seen[id] = struct{}{}

		report, err := uc.GetReport(ctx, id)
		if err != nil {
			return nil, err
		}
		if !report.Status.IsActive() {
			return nil, goerr.Wrap(ErrNotMergeable, "only active reports can be merged",
				goerr.V(ReportIDKey, id), goerr.V("status", report.Status))
		}

		decoded, err := uc.codec.Decode(report.CompositeID)
		if err != nil {
			return nil, goerr.Wrap(ErrNotMergeable, "report has no valid composite id",
				goerr.V(ReportIDKey, id), goerr.V(CompositeIDKey, report.CompositeID))
		}
		if decoded.IsMerged() {
			return nil, goerr.Wrap(ErrNotMergeable, "report is already a merged report",
				goerr.V(ReportIDKey, id), goerr.V(CompositeIDKey, report.CompositeID))
		}
		if prefix == "" {
			prefix = decoded.Prefix
		} else if decoded.Prefix != prefix {
			return nil, goerr.Wrap(ErrNotMergeable, "reports do not share a composite prefix",
				goerr.V("prefix", prefix), goerr.V(CompositeIDKey, report.CompositeID))
		}

		originals = append(originals, report)
		members = append(members, decoded.Members[0])
	}

	compositeID, err := uc.codec.Encode(prefix, members)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode composite id")
	}
	if err := uc.ensureCompositeIDFree(ctx, compositeID); err != nil {
		return nil, err
	}

	consolidated := consolidate(originals, strings.TrimSpace(name))
	consolidated.CompositeID = compositeID
	if err := scoring.Apply(consolidated); err != nil {
		return nil, goerr.Wrap(err, "failed to score consolidated report")
	}

	created, err := uc.repo.RiskReport().CommitMerge(ctx, consolidated, ids)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to commit merge", goerr.V(CompositeIDKey, compositeID))
	}

	logging.From(ctx).Info("risk reports merged",
		"composite_id", created.CompositeID,
		"originals", len(originals))
	return created, nil
}

// consolidate builds the merged report body. Assessments are the union by
// category in report order, first occurrence wins. The earliest due date is
// kept.
func consolidate(originals []*model.RiskReport, name string) *model.RiskReport {
	first := originals[0]
	if name == "" {
		name = first.Name
	}

	merged := &model.RiskReport{
		Name:                 name,
		Description:          first.Description,
		Department:           first.Department,
		Status:               types.ReportStatusOpen,
		ControlEffectiveness: first.ControlEffectiveness,
	}

	seen := make(map[string]struct{})
	for _, r := range originals {
		for _, a := range r.Assessments {
			category := strings.TrimSpace(a.Category)
			if category == "" {
				continue
			}
			if _, ok := seen[category]; ok {
				continue
			}
			seen[category] = struct{}{}
			merged.Assessments = append(merged.Assessments, model.RiskCategoryAssessment{
				Category:   category,
				Likelihood: a.Likelihood,
				Impact:     a.Impact,
			})
		}

		if r.DueDate != nil && (merged.DueDate == nil || r.DueDate.Before(*merged.DueDate)) {
			due := *r.DueDate
			merged.DueDate = &due
		}
	}

	return merged
}

// ResolveComposite decodes a composite id and looks up every member.
// Missing members are reported as not found rather than failing.
func (uc *ReportUseCase) ResolveComposite(ctx context.Context, compositeID string) (*CompositeResolution, error) {
	decoded, err := uc.codec.Decode(compositeID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode composite id", goerr.V(CompositeIDKey, compositeID))
	}

	found := make(map[string]*model.RiskReport, len(decoded.Members))
	for _, plainID := range decoded.PlainIDs() {
		report, err := uc.repo.RiskReport().GetByCompositeID(ctx, plainID)
		if err != nil {
			if errors.Is(err, interfaces.ErrReportNotFound) {
				continue
			}
			return nil, goerr.Wrap(err, "failed to look up member", goerr.V(CompositeIDKey, plainID))
		}
		found[plainID] = report
	}

	resolution := &CompositeResolution{
		ID: decoded,
		Members: scoring.ResolveMembers(decoded, func(plainID string) (*model.RiskReport, bool) {
			report, ok := found[plainID]
			return report, ok
		}),
	}

	if decoded.IsMerged() {
		report, err := uc.repo.RiskReport().GetByCompositeID(ctx, compositeID)
		switch {
		case err == nil:
			resolution.Report = report
		case !errors.Is(err, interfaces.ErrReportNotFound):
			return nil, goerr.Wrap(err, "failed to get consolidated report", goerr.V(CompositeIDKey, compositeID))
		}
	}

	return resolution, nil
}
