package types

import (
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Likelihood is the probability selection of a risk, 1 (Unlikely) to 4
// (Almost Certain). Zero means no selection was made.
type Likelihood int

const (
	LikelihoodUnset         Likelihood = 0
	LikelihoodUnlikely      Likelihood = 1
	LikelihoodPossible      Likelihood = 2
	LikelihoodLikely        Likelihood = 3
	LikelihoodAlmostCertain Likelihood = 4
)

var likelihoodLabels = map[Likelihood]string{
	LikelihoodUnlikely:      "Unlikely",
	LikelihoodPossible:      "Possible",
	LikelihoodLikely:        "Likely",
	LikelihoodAlmostCertain: "Almost Certain",
}

// AllLikelihoods returns all selectable likelihood values
func AllLikelihoods() []Likelihood {
	return []Likelihood{
		LikelihoodUnlikely,
		LikelihoodPossible,
		LikelihoodLikely,
		LikelihoodAlmostCertain,
	}
}

// IsSet reports whether a selection was made
func (l Likelihood) IsSet() bool {
	return l != LikelihoodUnset
}

// IsValid checks if the likelihood is unset or within 1..4
func (l Likelihood) IsValid() bool {
	return l >= LikelihoodUnset && l <= LikelihoodAlmostCertain
}

// Validate returns an error if the likelihood is out of range
func (l Likelihood) Validate() error {
	if !l.IsValid() {
		return goerr.New("likelihood must be between 1 and 4", goerr.V("likelihood", int(l)))
	}
	return nil
}

// String returns the label of the likelihood
func (l Likelihood) String() string {
	if label, ok := likelihoodLabels[l]; ok {
		return label
	}
	return strconv.Itoa(int(l))
}

// ParseLikelihood accepts either the numeric score or the label
func ParseLikelihood(s string) (Likelihood, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LikelihoodUnset, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		l := Likelihood(n)
		if err := l.Validate(); err != nil {
			return LikelihoodUnset, err
		}
		return l, nil
	}
	for l, label := range likelihoodLabels {
		if strings.EqualFold(label, s) {
			return l, nil
		}
	}
	return LikelihoodUnset, goerr.New("invalid likelihood", goerr.V("likelihood", s))
}
