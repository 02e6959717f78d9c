package model

import "github.com/secmon-lab/riskscope/pkg/domain/types"

// RiskCategoryAssessment is the likelihood/impact selection of one category
// attached to a risk report, together with its computed ratings.
type RiskCategoryAssessment struct {
	Category       string
	Likelihood     types.Likelihood
	Impact         types.Impact
	InherentRating int
	ResidualRating int
	Level          types.RiskLevel
	ResidualLevel  types.RiskLevel
}

// IsComplete is true when both likelihood and impact were selected
func (a RiskCategoryAssessment) IsComplete() bool {
	return a.Likelihood.IsSet() && a.Impact.IsSet()
}
