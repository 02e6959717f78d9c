package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
	"github.com/secmon-lab/riskscope/pkg/usecase"
)

func submit(t *testing.T, uc *usecase.UseCases, input usecase.SubmitReportInput) *model.RiskReport {
	t.Helper()
	created, err := uc.Report.SubmitReport(context.Background(), input)
	gt.NoError(t, err).Required()
	return created
}

func TestReportUseCase_MergeReports(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCases(t, testPolicy())

	early := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

	first := financialInput("Vendor payment fraud", types.LikelihoodLikely, types.ImpactMajor)
	first.DueDate = &late
	first.Assessments = append(first.Assessments, usecase.AssessmentInput{
		Category: "Compliance", Likelihood: types.LikelihoodPossible, Impact: types.ImpactModerate,
	})
	second := financialInput("Vendor payment fraud risk", types.LikelihoodAlmostCertain, types.ImpactExtreme)
	second.DueDate = &early
	second.Assessments = append(second.Assessments, usecase.AssessmentInput{
		Category: "Operational", Likelihood: types.LikelihoodUnlikely, Impact: types.ImpactMinor,
	})

	a := submit(t, uc, first)
	b := submit(t, uc, second)
	gt.V(t, a.CompositeID).Equal("FIN/2024/001")
	gt.V(t, b.CompositeID).Equal("FIN/2024/002")

	merged, err := uc.Report.MergeReports(ctx, []string{a.ID, b.ID}, "")
	gt.NoError(t, err).Required()

	gt.V(t, merged.CompositeID).Equal("FIN/2024/001/002")
	gt.V(t, merged.Name).Equal("Vendor payment fraud")
	gt.V(t, merged.Department).Equal(types.Department("FIN"))
	gt.V(t, merged.Status).Equal(types.ReportStatusOpen)
	gt.B(t, merged.DueDate.Equal(early)).True()

	// Financial comes from the first report, Operational from the second
	gt.A(t, merged.Assessments).Length(3).Required()
	gt.V(t, merged.Assessments[0].Category).Equal("Financial")
	gt.V(t, merged.Assessments[0].InherentRating).Equal(9)
	gt.V(t, merged.Assessments[1].Category).Equal("Compliance")
	gt.V(t, merged.Assessments[2].Category).Equal("Operational")
	gt.V(t, merged.GeneralInherentScore).Equal(14.0)

	for _, id := range []string{a.ID, b.ID} {
		original, err := uc.Report.GetReport(ctx, id)
		gt.NoError(t, err).Required()
		gt.V(t, original.Status).Equal(types.ReportStatusConsolidated)
		gt.V(t, original.ConsolidatedInto).Equal("FIN/2024/001/002")
	}

	// originals are no longer mergeable
	_, err = uc.Report.MergeReports(ctx, []string{a.ID, b.ID}, "again")
	gt.B(t, errors.Is(err, usecase.ErrNotMergeable)).True()

	// consolidated originals cannot be edited
	_, err = uc.Report.UpdateStatus(ctx, a.ID, types.ReportStatusClosed)
	gt.B(t, errors.Is(err, usecase.ErrReportConsolidated)).True()
	_, err = uc.Report.UpdateAssessments(ctx, a.ID, []usecase.AssessmentInput{{Category: "Financial"}}, 0)
	gt.B(t, errors.Is(err, usecase.ErrReportConsolidated)).True()
}

func TestReportUseCase_MergeReportsRejects(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(t *testing.T, uc *usecase.UseCases) []string
	}{
		{
			name: "single report",
			setup: func(t *testing.T, uc *usecase.UseCases) []string {
				a := submit(t, uc, financialInput("A", types.LikelihoodLikely, types.ImpactMajor))
				return []string{a.ID}
			},
		},
		{
			name: "same report twice",
			setup: func(t *testing.T, uc *usecase.UseCases) []string {
				a := submit(t, uc, financialInput("A", types.LikelihoodLikely, types.ImpactMajor))
				return []string{a.ID, a.ID}
			},
		},
		{
			name: "different prefix",
			setup: func(t *testing.T, uc *usecase.UseCases) []string {
				a := submit(t, uc, financialInput("A", types.LikelihoodLikely, types.ImpactMajor))
				in := financialInput("B", types.LikelihoodLikely, types.ImpactMajor)
				in.Department = "OPS"
				b := submit(t, uc, in)
				return []string{a.ID, b.ID}
			},
		},
		{
			name: "closed report",
			setup: func(t *testing.T, uc *usecase.UseCases) []string {
				a := submit(t, uc, financialInput("A", types.LikelihoodLikely, types.ImpactMajor))
				b := submit(t, uc, financialInput("B", types.LikelihoodLikely, types.ImpactMajor))
				_, err := uc.Report.UpdateStatus(context.Background(), b.ID, types.ReportStatusClosed)
				gt.NoError(t, err).Required()
				return []string{a.ID, b.ID}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uc := newTestUseCases(t, testPolicy())
			ids := tc.setup(t, uc)

			_, err := uc.Report.MergeReports(context.Background(), ids, "merged")
			gt.B(t, errors.Is(err, usecase.ErrNotMergeable)).True()
		})
	}
}

func TestReportUseCase_MergeReportsUnknownID(t *testing.T) {
	uc := newTestUseCases(t, testPolicy())
	a := submit(t, uc, financialInput("A", types.LikelihoodLikely, types.ImpactMajor))

	_, err := uc.Report.MergeReports(context.Background(), []string{a.ID, "missing"}, "")
	gt.B(t, usecase.IsNotFoundError(err)).True()

	original, err := uc.Report.GetReport(context.Background(), a.ID)
	gt.NoError(t, err).Required()
	gt.V(t, original.Status).Equal(types.ReportStatusOpen)
}

func TestReportUseCase_ResolveComposite(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCases(t, testPolicy())

	a := submit(t, uc, financialInput("A", types.LikelihoodLikely, types.ImpactMajor))
	b := submit(t, uc, financialInput("B", types.LikelihoodLikely, types.ImpactMajor))
	merged, err := uc.Report.MergeReports(ctx, []string{a.ID, b.ID}, "A and B")
	gt.NoError(t, err).Required()

	t.Run("merged id resolves report and members", func(t *testing.T) {
		res, err := uc.Report.ResolveComposite(ctx, merged.CompositeID)
		gt.NoError(t, err).Required()

		gt.V(t, res.ID.Prefix).Equal("FIN/2024")
		gt.B(t, res.ID.IsMerged()).True()
		gt.V(t, res.Report).NotNil()
		gt.V(t, res.Report.ID).Equal(merged.ID)

		gt.A(t, res.Members).Length(2).Required()
		gt.V(t, res.Members[0].PlainID).Equal("FIN/2024/001")
		gt.B(t, res.Members[0].Found).True()
		gt.V(t, res.Members[0].Report.ID).Equal(a.ID)
		gt.V(t, res.Members[1].Report.ID).Equal(b.ID)
	})

	t.Run("unknown members are marked not found", func(t *testing.T) {
		res, err := uc.Report.ResolveComposite(ctx, "FIN/2024/001/999")
		gt.NoError(t, err).Required()

		gt.V(t, res.Report).Nil()
		gt.A(t, res.Members).Length(2).Required()
		gt.B(t, res.Members[0].Found).True()
		gt.B(t, res.Members[1].Found).False()
		gt.V(t, res.Members[1].Member).Equal("999")
	})

	t.Run("plain id resolves itself", func(t *testing.T) {
		res, err := uc.Report.ResolveComposite(ctx, "FIN/2024/002")
		gt.NoError(t, err).Required()
		gt.B(t, res.ID.IsMerged()).False()
		gt.A(t, res.Members).Length(1).Required()
		gt.V(t, res.Members[0].Report.ID).Equal(b.ID)
	})

	t.Run("malformed id fails", func(t *testing.T) {
		_, err := uc.Report.ResolveComposite(ctx, "FIN")
		gt.B(t, usecase.IsValidationError(err)).True()
	})
}
