package scoring

import (
	"math"
	"time"

	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
)

// Weights of the three health terms
const (
	closedWeight   = 40
	residualWeight = 30
	overdueWeight  = 30
)

// DepartmentHealth computes the compliance health of one department from
// all of its reports. now decides which reports are overdue. A department
// without reports scores 0.
func DepartmentHealth(department types.Department, reports []*model.RiskReport, now time.Time) model.DepartmentHealth {
	health := model.DepartmentHealth{
		Department: department,
		Band:       types.BandForScore(0),
	}

	var residualSum float64
	for _, r := range reports {
		if r == nil {
			continue
		}
		health.TotalRisks++
		if r.Status == types.ReportStatusClosed {
			health.ClosedRisks++
		}
		if r.IsOverdue(now) {
			health.OverdueCount++
		}
		residualSum += r.GeneralResidualScore
	}

	if health.TotalRisks == 0 {
		return health
	}

	total := float64(health.TotalRisks)
	health.AverageResidualRating = residualSum / total
	overdueRatio := float64(health.OverdueCount) / total

	raw := (float64(health.ClosedRisks)*closedWeight +
		(100-health.AverageResidualRating)*residualWeight +
		(100-overdueRatio*100)*overdueWeight) / 100

	health.HealthScore = round2(clamp(raw, 0, 100))
	health.Band = types.BandForScore(health.HealthScore)
	return health
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
