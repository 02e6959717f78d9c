package scoring_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/scoring"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
)

func TestParseLegacyAssessments(t *testing.T) {
	got, err := scoring.ParseLegacyAssessments(`["Fraud","Compliance"]`, "3,2", "4")
	gt.NoError(t, err).Required()
	gt.V(t, got).Equal([]model.RiskCategoryAssessment{
		{Category: "Fraud", Likelihood: types.LikelihoodLikely, Impact: types.ImpactExtreme},
		{Category: "Compliance", Likelihood: types.LikelihoodPossible},
	})

	got, err = scoring.ParseLegacyAssessments(`["Fraud"]`, "", "")
	gt.NoError(t, err)
	gt.B(t, got[0].IsComplete()).False()
}

func TestParseLegacyAssessments_Errors(t *testing.T) {
	tests := []struct {
		name       string
		categories string
		likelihood string
		impact     string
	}{
		{"not json", "Fraud,Compliance", "1,2", "1,2"},
		{"more likelihoods than categories", `["Fraud"]`, "1,2", "1"},
		{"more impacts than categories", `["Fraud"]`, "1", "1,2"},
		{"likelihood out of range", `["Fraud"]`, "7", "1"},
		{"unknown impact", `["Fraud"]`, "1", "huge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scoring.ParseLegacyAssessments(tt.categories, tt.likelihood, tt.impact)
			gt.Error(t, err)
		})
	}
}
