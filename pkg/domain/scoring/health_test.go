package scoring_test

import (
	"math"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/scoring"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
)

var healthNow = time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

func healthReport(status types.ReportStatus, residual float64, due *time.Time) *model.RiskReport {
	return &model.RiskReport{
		Department:           "FIN",
		Status:               status,
		GeneralResidualScore: residual,
		DueDate:              due,
	}
}

func TestDepartmentHealth_Empty(t *testing.T) {
	got := scoring.DepartmentHealth("FIN", nil, healthNow)
	gt.V(t, got.HealthScore).Equal(0.0)
	gt.V(t, got.TotalRisks).Equal(0)
	gt.V(t, got.Band).Equal(types.HealthBandNeedsAttention)
	gt.B(t, math.IsNaN(got.HealthScore)).False()
	gt.B(t, math.IsNaN(got.AverageResidualRating)).False()
}

func TestDepartmentHealth(t *testing.T) {
	past := healthNow.Add(-48 * time.Hour)
	future := healthNow.Add(48 * time.Hour)

	tests := []struct {
		name    string
		reports []*model.RiskReport
		score   float64
		band    types.HealthBand
		closed  int
		overdue int
	}{
		{
			name: "mixed department",
			reports: []*model.RiskReport{
				healthReport(types.ReportStatusClosed, 4, nil),
				healthReport(types.ReportStatusOpen, 8, &past),
				healthReport(types.ReportStatusOpen, 12, &future),
				healthReport(types.ReportStatusInProgress, 0, nil),
			},
			// (1*40 + (100-6)*30 + (100-25)*30) / 100
			score:   51.1,
			band:    types.HealthBandNeedsAttention,
			closed:  1,
			overdue: 1,
		},
		{
			name: "all closed without residual",
			reports: []*model.RiskReport{
				healthReport(types.ReportStatusClosed, 0, &past),
				healthReport(types.ReportStatusClosed, 0, nil),
			},
			score:  60.8,
			band:   types.HealthBandGood,
			closed: 2,
		},
		{
			name: "rounded to two decimals",
			reports: []*model.RiskReport{
				healthReport(types.ReportStatusOpen, 1, nil),
				healthReport(types.ReportStatusOpen, 0, nil),
				healthReport(types.ReportStatusOpen, 0, nil),
			},
			score: 59.9,
			band:  types.HealthBandNeedsAttention,
		},
		{
			name: "very high residual clamps at zero",
			reports: []*model.RiskReport{
				healthReport(types.ReportStatusOpen, 300, &past),
			},
			score:   0,
			band:    types.HealthBandNeedsAttention,
			overdue: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoring.DepartmentHealth("FIN", tt.reports, healthNow)
			gt.V(t, got.HealthScore).Equal(tt.score)
			gt.V(t, got.Band).Equal(tt.band)
			gt.V(t, got.ClosedRisks).Equal(tt.closed)
			gt.V(t, got.OverdueCount).Equal(tt.overdue)
			gt.V(t, got.TotalRisks).Equal(len(tt.reports))
			gt.V(t, got.Department).Equal(types.Department("FIN"))
		})
	}
}

func TestDepartmentHealth_ClampsAtHundred(t *testing.T) {
	reports := make([]*model.RiskReport, 120)
	for i := range reports {
		reports[i] = healthReport(types.ReportStatusClosed, 0, nil)
	}
	got := scoring.DepartmentHealth("FIN", reports, healthNow)
	gt.V(t, got.HealthScore).Equal(100.0)
	gt.V(t, got.Band).Equal(types.HealthBandExcellent)
}
