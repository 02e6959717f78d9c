// Package scoring holds the risk scoring and consolidation rules. Every
// function is pure: inputs are plain data snapshots and nothing here reads
// or writes storage.
package scoring

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
)

// Level boundaries. Each bound is inclusive.
const (
	criticalThreshold = 12
	highThreshold     = 8
	mediumThreshold   = 4
)

// Rating is the result of rating one likelihood/impact selection. A zero
// Rating means the selection was incomplete and the risk is not assessed.
type Rating struct {
	Rating         int
	Level          types.RiskLevel
	ResidualRating int
	ResidualLevel  types.RiskLevel
}

// IsAssessed is false when likelihood or impact was missing
func (r Rating) IsAssessed() bool {
	return r.Level.IsAssessed()
}

// ClassifyLevel maps a rating to its level. It is the only place the
// 4/8/12 bands are defined. Whether a risk is assessed at all is decided by
// its selections, not by the rating, so 0 is Low.
func ClassifyLevel(rating int) types.RiskLevel {
	switch {
	case rating >= criticalThreshold:
		return types.RiskLevelCritical
	case rating >= highThreshold:
		return types.RiskLevelHigh
	case rating >= mediumThreshold:
		return types.RiskLevelMedium
	default:
		return types.RiskLevelLow
	}
}

// NormalizeControlEffectiveness resolves the unset value 0 to 1 and rejects
// factors outside (0,1].
func NormalizeControlEffectiveness(ce float64) (float64, error) {
	if ce == 0 {
		return 1, nil
	}
	if math.IsNaN(ce) || ce < 0 || ce > 1 {
		return 0, goerr.Wrap(ErrInvalidInput, "control effectiveness must be in (0,1]", goerr.V("control_effectiveness", ce))
	}
	return ce, nil
}

// Residual applies a normalized control effectiveness factor to an inherent
// rating, rounding half away from zero.
func Residual(inherent int, ce float64) int {
	return int(math.Round(float64(inherent) * ce))
}

// Rate converts a likelihood/impact pair into inherent and residual ratings.
// A missing likelihood or impact yields a zero Rating without error.
func Rate(likelihood types.Likelihood, impact types.Impact, ce float64) (Rating, error) {
	if !likelihood.IsValid() {
		return Rating{}, goerr.Wrap(ErrInvalidInput, "likelihood must be between 1 and 4", goerr.V("likelihood", int(likelihood)))
	}
	if !impact.IsValid() {
		return Rating{}, goerr.Wrap(ErrInvalidInput, "impact must be between 1 and 4", goerr.V("impact", int(impact)))
	}
	factor, err := NormalizeControlEffectiveness(ce)
	if err != nil {
		return Rating{}, err
	}

	if !likelihood.IsSet() || !impact.IsSet() {
		return Rating{}, nil
	}

	inherent := int(likelihood) * int(impact)
	residual := Residual(inherent, factor)
	return Rating{
		Rating:         inherent,
		Level:          ClassifyLevel(inherent),
		ResidualRating: residual,
		ResidualLevel:  ClassifyLevel(residual),
	}, nil
}

// RateAssessments rates every category assessment independently and returns
// a new slice with the computed fields filled in.
func RateAssessments(assessments []model.RiskCategoryAssessment, ce float64) ([]model.RiskCategoryAssessment, error) {
	rated := make([]model.RiskCategoryAssessment, len(assessments))
	for i, a := range assessments {
		r, err := Rate(a.Likelihood, a.Impact, ce)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to rate assessment", goerr.V("category", a.Category), goerr.V("index", i))
		}
		a.InherentRating = r.Rating
		a.ResidualRating = r.ResidualRating
		a.Level = r.Level
		a.ResidualLevel = r.ResidualLevel
		rated[i] = a
	}
	return rated, nil
}
