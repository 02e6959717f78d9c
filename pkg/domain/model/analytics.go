package model

import "github.com/secmon-lab/riskscope/pkg/domain/types"

// RiskGroup is a transient cluster of reports sharing one category set
type RiskGroup struct {
	ID          string
	CategoryKey string
	Categories  []string
	Members     []*RiskReport
	ReportCount int
}

// IsDuplicate is true when more than one report shares the category set
func (g *RiskGroup) IsDuplicate() bool {
	return g.ReportCount > 1
}

// MergeCandidatePair is a pair of active reports scored for consolidation
type MergeCandidatePair struct {
	ReportA        *RiskReport
	ReportB        *RiskReport
	Score          int
	MatchedSignals []types.MatchSignal
	NameSimilarity float64
}

// HasSignal reports whether the given signal contributed to the score
func (p *MergeCandidatePair) HasSignal(signal types.MatchSignal) bool {
	for _, s := range p.MatchedSignals {
		if s == signal {
			return true
		}
	}
	return false
}

// DepartmentHealth is the derived compliance health of one department
type DepartmentHealth struct {
	Department            types.Department
	TotalRisks            int
	ClosedRisks           int
	OverdueCount          int
	AverageResidualRating float64
	HealthScore           float64
	Band                  types.HealthBand
}
