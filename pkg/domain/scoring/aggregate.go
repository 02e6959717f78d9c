package scoring

import (
	"math"

	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
)

// AggregateResult is the general score of one report across its categories
type AggregateResult struct {
	GeneralInherentScore float64
	GeneralResidualScore float64
	ValidCount           int
	AverageRating        float64
	AverageLevel         types.RiskLevel
}

// Aggregate combines the category assessments of one report. The inherent
// score is the sum of valid ratings, so it grows with the breadth of
// impact. The residual score applies the control effectiveness once to that
// sum. Incomplete assessments are ignored.
func Aggregate(assessments []model.RiskCategoryAssessment, ce float64) (AggregateResult, error) {
	factor, err := NormalizeControlEffectiveness(ce)
	if err != nil {
		return AggregateResult{}, err
	}

	var result AggregateResult
	sum := 0
	for _, a := range assessments {
		if !a.IsComplete() {
			continue
		}
		sum += int(a.Likelihood) * int(a.Impact)
		result.ValidCount++
	}

	if result.ValidCount == 0 {
		return result, nil
	}

	result.GeneralInherentScore = float64(sum)
	result.GeneralResidualScore = result.GeneralInherentScore * factor
	result.AverageRating = float64(sum) / float64(result.ValidCount)
	result.AverageLevel = ClassifyLevel(int(math.Round(result.AverageRating)))
	return result, nil
}

// Apply rates the report's assessments and stores the aggregate scores on it
func Apply(report *model.RiskReport) error {
	rated, err := RateAssessments(report.Assessments, report.ControlEffectiveness)
	if err != nil {
		return err
	}
	agg, err := Aggregate(rated, report.ControlEffectiveness)
	if err != nil {
		return err
	}

	report.Assessments = rated
	report.GeneralInherentScore = agg.GeneralInherentScore
	report.GeneralResidualScore = agg.GeneralResidualScore
	return nil
}
