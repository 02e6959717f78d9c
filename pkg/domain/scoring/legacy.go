package scoring

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
)

// ParseLegacyAssessments converts the positional storage format (a JSON
// array of categories plus comma separated likelihood and impact values
// aligned by index) into structured assessments. Positions missing from the
// value lists are left unset.
func ParseLegacyAssessments(categoriesJSON, likelihoods, impacts string) ([]model.RiskCategoryAssessment, error) {
	categories, err := ParseCategoryList(categoriesJSON)
	if err != nil {
		return nil, err
	}

	likelihoodValues := splitValues(likelihoods)
	impactValues := splitValues(impacts)
	if len(likelihoodValues) > len(categories) || len(impactValues) > len(categories) {
		return nil, goerr.Wrap(ErrInvalidInput, "more values than categories",
			goerr.V("categories", len(categories)),
			goerr.V("likelihoods", len(likelihoodValues)),
			goerr.V("impacts", len(impactValues)))
	}

	assessments := make([]model.RiskCategoryAssessment, len(categories))
	for i, category := range categories {
		a := model.RiskCategoryAssessment{Category: strings.TrimSpace(category)}
		if i < len(likelihoodValues) {
			l, err := types.ParseLikelihood(likelihoodValues[i])
			if err != nil {
				return nil, goerr.Wrap(ErrInvalidInput, "invalid likelihood value", goerr.V("index", i), goerr.V("value", likelihoodValues[i]))
			}
			a.Likelihood = l
		}
		if i < len(impactValues) {
			imp, err := types.ParseImpact(impactValues[i])
			if err != nil {
				return nil, goerr.Wrap(ErrInvalidInput, "invalid impact value", goerr.V("index", i), goerr.V("value", impactValues[i]))
			}
			a.Impact = imp
		}
		assessments[i] = a
	}
	return assessments, nil
}

func splitValues(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
