package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
)

func TestRiskReport_Primary(t *testing.T) {
	var nilReport *model.RiskReport
	_, ok := nilReport.Primary()
	gt.B(t, ok).False()

	r := &model.RiskReport{
		Assessments: []model.RiskCategoryAssessment{
			{Category: "Fraud", Likelihood: 3, Impact: 3},
			{Category: "Compliance", Likelihood: 1, Impact: 2},
		},
	}
	primary, ok := r.Primary()
	gt.B(t, ok).True()
	gt.S(t, primary.Category).Equal("Fraud")
}

func TestRiskReport_CategoryNames(t *testing.T) {
	r := &model.RiskReport{
		Assessments: []model.RiskCategoryAssessment{
			{Category: " Fraud "},
			{Category: ""},
			{Category: "Compliance"},
		},
	}
	gt.V(t, r.CategoryNames()).Equal([]string{"Fraud", "Compliance"})
}

func TestRiskReport_IsOverdue(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name   string
		report *model.RiskReport
		want   bool
	}{
		{"open and past due", &model.RiskReport{Status: types.ReportStatusOpen, DueDate: &past}, true},
		{"in progress and past due", &model.RiskReport{Status: types.ReportStatusInProgress, DueDate: &past}, true},
		{"closed and past due", &model.RiskReport{Status: types.ReportStatusClosed, DueDate: &past}, false},
		{"open and not yet due", &model.RiskReport{Status: types.ReportStatusOpen, DueDate: &future}, false},
		{"no due date", &model.RiskReport{Status: types.ReportStatusOpen}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.V(t, tt.report.IsOverdue(now)).Equal(tt.want)
		})
	}
}

func TestRiskReport_Clone(t *testing.T) {
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	original := &model.RiskReport{
		ID:          "r-1",
		Assessments: []model.RiskCategoryAssessment{{Category: "Fraud"}},
		DueDate:     &due,
	}

	c := original.Clone()
	c.Assessments[0].Category = "Changed"
	*c.DueDate = due.Add(time.Hour)

	gt.S(t, original.Assessments[0].Category).Equal("Fraud")
	gt.B(t, original.DueDate.Equal(due)).True()
}

func TestMergeCandidatePair_HasSignal(t *testing.T) {
	p := &model.MergeCandidatePair{
		MatchedSignals: []types.MatchSignal{types.MatchSignalCategoryOverlap},
	}
	gt.B(t, p.HasSignal(types.MatchSignalCategoryOverlap)).True()
	gt.B(t, p.HasSignal(types.MatchSignalNameSimilarity)).False()
}
