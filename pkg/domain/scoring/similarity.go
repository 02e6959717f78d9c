package scoring

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
)

// NameSimilarityThreshold is the similarity percentage a pair of names has
// to exceed to count as a signal
const NameSimilarityThreshold = 50.0

// SimilarityResult is the merge candidacy of two reports
type SimilarityResult struct {
	Score          int
	MatchedSignals []types.MatchSignal
	NameSimilarity float64
}

// NameSimilarity returns the case-insensitive normalized edit distance of
// two names as a percentage. Two empty names have no similarity.
func NameSimilarity(a, b string) float64 {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)

	maxLen := max(utf8.RuneCountInString(la), utf8.RuneCountInString(lb))
	if maxLen == 0 {
		return 0
	}

	distance := levenshtein.ComputeDistance(la, lb)
	return (1 - float64(distance)/float64(maxLen)) * 100
}

// ScoreSimilarity scores two reports from three fixed signals. The result
// does not depend on argument order. Status and merged filtering is the
// caller's job.
func ScoreSimilarity(a, b *model.RiskReport) SimilarityResult {
	var result SimilarityResult

	if categoriesOverlap(a.CategoryNames(), b.CategoryNames()) {
		result.add(types.MatchSignalCategoryOverlap)
	}

	levelA := primaryLevel(a)
	if levelA.IsAssessed() && levelA == primaryLevel(b) {
		result.add(types.MatchSignalLevelMatch)
	}

	result.NameSimilarity = NameSimilarity(a.Name, b.Name)
	if result.NameSimilarity > NameSimilarityThreshold {
		result.add(types.MatchSignalNameSimilarity)
	}

	return result
}

// ScorePair wraps ScoreSimilarity into a candidate pair
func ScorePair(a, b *model.RiskReport) *model.MergeCandidatePair {
	r := ScoreSimilarity(a, b)
	return &model.MergeCandidatePair{
		ReportA:        a,
		ReportB:        b,
		Score:          r.Score,
		MatchedSignals: r.MatchedSignals,
		NameSimilarity: r.NameSimilarity,
	}
}

// SortCandidates orders pairs by score, highest first. Ties are broken by
// the report ids so the order is reproducible.
func SortCandidates(pairs []*model.MergeCandidatePair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Score != pairs[j].Score {
			return pairs[i].Score > pairs[j].Score
		}
		if pairs[i].ReportA.ID != pairs[j].ReportA.ID {
			return pairs[i].ReportA.ID < pairs[j].ReportA.ID
		}
		return pairs[i].ReportB.ID < pairs[j].ReportB.ID
	})
}

func (r *SimilarityResult) add(signal types.MatchSignal) {
	r.Score += signal.Weight()
	r.MatchedSignals = append(r.MatchedSignals, signal)
}

func categoriesOverlap(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, name := range a {
		set[name] = struct{}{}
	}
	for _, name := range b {
		if _, ok := set[name]; ok {
			return true
		}
	}
	return false
}

func primaryLevel(r *model.RiskReport) types.RiskLevel {
	primary, ok := r.Primary()
	if !ok {
		return types.RiskLevelNone
	}
	if primary.IsComplete() {
		return ClassifyLevel(int(primary.Likelihood) * int(primary.Impact))
	}
	return primary.Level
}
