package types

// MatchSignal names one of the evidence signals that contributed to a merge
// candidate score
type MatchSignal string

const (
	MatchSignalCategoryOverlap MatchSignal = "CATEGORY_OVERLAP"
	MatchSignalLevelMatch      MatchSignal = "LEVEL_MATCH"
	MatchSignalNameSimilarity  MatchSignal = "NAME_SIMILARITY"
)

// Weight returns the fixed score contribution of the signal
func (s MatchSignal) Weight() int {
	switch s {
	case MatchSignalCategoryOverlap:
		return 40
	case MatchSignalLevelMatch, MatchSignalNameSimilarity:
		return 30
	default:
		return 0
	}
}

func (s MatchSignal) String() string {
	return string(s)
}
