package scoring_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/scoring"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
)

func TestClassifyLevel(t *testing.T) {
	tests := []struct {
		rating int
		want   types.RiskLevel
	}{
		{0, types.RiskLevelLow},
		{1, types.RiskLevelLow},
		{3, types.RiskLevelLow},
		{4, types.RiskLevelMedium},
		{7, types.RiskLevelMedium},
		{8, types.RiskLevelHigh},
		{11, types.RiskLevelHigh},
		{12, types.RiskLevelCritical},
		{16, types.RiskLevelCritical},
	}

	for _, tt := range tests {
		gt.V(t, scoring.ClassifyLevel(tt.rating)).Equal(tt.want)
	}
}

func TestRate_AllCombinations(t *testing.T) {
	for _, l := range types.AllLikelihoods() {
		for _, i := range types.AllImpacts() {
			r, err := scoring.Rate(l, i, 1)
			gt.NoError(t, err).Required()

			want := int(l) * int(i)
			gt.V(t, r.Rating).Equal(want)
			gt.V(t, r.ResidualRating).Equal(want)
			gt.B(t, r.IsAssessed()).True()

			var level types.RiskLevel
			switch {
			case want >= 12:
				level = types.RiskLevelCritical
			case want >= 8:
				level = types.RiskLevelHigh
			case want >= 4:
				level = types.RiskLevelMedium
			default:
				level = types.RiskLevelLow
			}
			gt.V(t, r.Level).Equal(level)
			gt.V(t, r.ResidualLevel).Equal(level)
		}
	}
}

func TestRate(t *testing.T) {
	tests := []struct {
		name       string
		likelihood types.Likelihood
		impact     types.Impact
		ce         float64
		want       scoring.Rating
		wantErr    bool
	}{
		{
			name:       "almost certain and extreme is critical",
			likelihood: 4, impact: 4, ce: 1,
			want: scoring.Rating{Rating: 16, Level: types.RiskLevelCritical, ResidualRating: 16, ResidualLevel: types.RiskLevelCritical},
		},
		{
			name:       "unset control effectiveness defaults to 1",
			likelihood: 2, impact: 2, ce: 0,
			want: scoring.Rating{Rating: 4, Level: types.RiskLevelMedium, ResidualRating: 4, ResidualLevel: types.RiskLevelMedium},
		},
		{
			name:       "half effective control",
			likelihood: 4, impact: 4, ce: 0.5,
			want: scoring.Rating{Rating: 16, Level: types.RiskLevelCritical, ResidualRating: 8, ResidualLevel: types.RiskLevelHigh},
		},
		{
			name:       "residual rounds half away from zero",
			likelihood: 3, impact: 3, ce: 0.5,
			want: scoring.Rating{Rating: 9, Level: types.RiskLevelHigh, ResidualRating: 5, ResidualLevel: types.RiskLevelMedium},
		},
		{
			name:       "missing likelihood is not assessed",
			likelihood: 0, impact: 3, ce: 1,
			want: scoring.Rating{},
		},
		{
			name:       "missing impact is not assessed",
			likelihood: 2, impact: 0, ce: 1,
			want: scoring.Rating{},
		},
		{
			name:       "likelihood out of range",
			likelihood: 5, impact: 1, ce: 1,
			wantErr: true,
		},
		{
			name:       "negative impact",
			likelihood: 1, impact: -1, ce: 1,
			wantErr: true,
		},
		{
			name:       "control effectiveness above 1",
			likelihood: 1, impact: 1, ce: 1.5,
			wantErr: true,
		},
		{
			name:       "negative control effectiveness",
			likelihood: 1, impact: 1, ce: -0.1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scoring.Rate(tt.likelihood, tt.impact, tt.ce)
			if tt.wantErr {
				gt.Error(t, err)
				gt.B(t, errors.Is(err, scoring.ErrInvalidInput)).True()
				return
			}
			gt.NoError(t, err)
			gt.V(t, got).Equal(tt.want)
		})
	}
}

func TestRate_NotAssessedHasNoLevel(t *testing.T) {
	r, err := scoring.Rate(0, 0, 1)
	gt.NoError(t, err)
	gt.B(t, r.IsAssessed()).False()
	gt.V(t, r.Level).Equal(types.RiskLevelNone)
}

func TestRateAssessments(t *testing.T) {
	rated, err := scoring.RateAssessments([]model.RiskCategoryAssessment{
		{Category: "Fraud", Likelihood: 3, Impact: 4},
		{Category: "Compliance", Likelihood: 1, Impact: 2},
		{Category: "Liquidity"},
	}, 0.5)
	gt.NoError(t, err).Required()
	gt.A(t, rated).Length(3)

	gt.V(t, rated[0].InherentRating).Equal(12)
	gt.V(t, rated[0].Level).Equal(types.RiskLevelCritical)
	gt.V(t, rated[0].ResidualRating).Equal(6)
	gt.V(t, rated[0].ResidualLevel).Equal(types.RiskLevelMedium)

	gt.V(t, rated[1].InherentRating).Equal(2)
	gt.V(t, rated[1].ResidualRating).Equal(1)
	gt.V(t, rated[1].Level).Equal(types.RiskLevelLow)

	gt.V(t, rated[2].InherentRating).Equal(0)
	gt.V(t, rated[2].Level).Equal(types.RiskLevelNone)

	_, err = scoring.RateAssessments([]model.RiskCategoryAssessment{{Category: "Fraud", Likelihood: 9, Impact: 1}}, 1)
	gt.Error(t, err)
}

func TestNormalizeControlEffectiveness(t *testing.T) {
	v, err := scoring.NormalizeControlEffectiveness(0)
	gt.NoError(t, err)
	gt.V(t, v).Equal(1.0)

	v, err = scoring.NormalizeControlEffectiveness(0.25)
	gt.NoError(t, err)
	gt.V(t, v).Equal(0.25)

	_, err = scoring.NormalizeControlEffectiveness(1.01)
	gt.Error(t, err)
}
