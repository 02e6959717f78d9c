package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
)

func TestCategoryID_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      types.CategoryID
		wantErr bool
	}{
		{"valid lowercase", "fraud", false},
		{"valid with hyphen", "mobile-money", false},
		{"valid with numbers", "risk-123", false},
		{"empty", "", true},
		{"uppercase", "Fraud", true},
		{"spaces", "mobile money", true},
		{"double hyphen", "mobile--money", true},
		{"leading hyphen", "-supply-chain", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("CategoryID.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDepartment_Validate(t *testing.T) {
	tests := []struct {
		name    string
		dept    types.Department
		wantErr bool
	}{
		{"valid", "FIN", false},
		{"valid with hyphen", "RISK-OPS", false},
		{"empty", "", true},
		{"lowercase", "fin", true},
		{"separator", "FIN/OPS", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dept.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Department.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLikelihood(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.Likelihood
		wantErr bool
	}{
		{"numeric", "3", types.LikelihoodLikely, false},
		{"label", "almost certain", types.LikelihoodAlmostCertain, false},
		{"empty is unset", "", types.LikelihoodUnset, false},
		{"out of range", "5", types.LikelihoodUnset, true},
		{"unknown label", "sometimes", types.LikelihoodUnset, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseLikelihood(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
			} else {
				gt.NoError(t, err)
				gt.V(t, got).Equal(tt.want)
			}
		})
	}
}

func TestParseImpact(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.Impact
		wantErr bool
	}{
		{"numeric", "1", types.ImpactMinor, false},
		{"label", "Extreme", types.ImpactExtreme, false},
		{"empty is unset", " ", types.ImpactUnset, false},
		{"negative", "-1", types.ImpactUnset, true},
		{"unknown label", "huge", types.ImpactUnset, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseImpact(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
			} else {
				gt.NoError(t, err)
				gt.V(t, got).Equal(tt.want)
			}
		})
	}
}

func TestLikelihoodAndImpactLabels(t *testing.T) {
	gt.S(t, types.LikelihoodUnlikely.String()).Equal("Unlikely")
	gt.S(t, types.LikelihoodAlmostCertain.String()).Equal("Almost Certain")
	gt.S(t, types.ImpactMinor.String()).Equal("Minor")
	gt.S(t, types.ImpactExtreme.String()).Equal("Extreme")
	gt.A(t, types.AllLikelihoods()).Length(4)
	gt.A(t, types.AllImpacts()).Length(4)
}

func TestReportStatus(t *testing.T) {
	for _, s := range types.AllReportStatuses() {
		gt.B(t, s.IsValid()).Describef("status %s should be valid", s).True()
	}

	gt.B(t, types.ReportStatusOpen.IsActive()).True()
	gt.B(t, types.ReportStatusInProgress.IsActive()).True()
	gt.B(t, types.ReportStatus("").IsActive()).True()
	gt.B(t, types.ReportStatusClosed.IsActive()).False()
	gt.B(t, types.ReportStatusCancelled.IsActive()).False()
	gt.B(t, types.ReportStatusConsolidated.IsActive()).False()

	_, err := types.ParseReportStatus("merged")
	gt.Error(t, err)
	got, err := types.ParseReportStatus("CLOSED")
	gt.NoError(t, err)
	gt.V(t, got).Equal(types.ReportStatusClosed)
}

func TestRiskLevel(t *testing.T) {
	gt.A(t, types.AllRiskLevels()).Length(4)
	gt.B(t, types.RiskLevelNone.IsValid()).False()
	gt.B(t, types.RiskLevelNone.IsAssessed()).False()
	gt.S(t, types.RiskLevelNone.String()).Equal("Not Assessed")

	got, err := types.ParseRiskLevel("High")
	gt.NoError(t, err)
	gt.V(t, got).Equal(types.RiskLevelHigh)
}

func TestBandForScore(t *testing.T) {
	tests := []struct {
		score float64
		band  types.HealthBand
		color string
	}{
		{100, types.HealthBandExcellent, "green"},
		{80, types.HealthBandExcellent, "green"},
		{79.99, types.HealthBandGood, "amber"},
		{60, types.HealthBandGood, "amber"},
		{59.99, types.HealthBandNeedsAttention, "red"},
		{0, types.HealthBandNeedsAttention, "red"},
	}

	for _, tt := range tests {
		band := types.BandForScore(tt.score)
		gt.V(t, band).Equal(tt.band)
		gt.S(t, band.Color()).Equal(tt.color)
	}
}

func TestMatchSignalWeight(t *testing.T) {
	gt.Number(t, types.MatchSignalCategoryOverlap.Weight()).Equal(40)
	gt.Number(t, types.MatchSignalLevelMatch.Weight()).Equal(30)
	gt.Number(t, types.MatchSignalNameSimilarity.Weight()).Equal(30)
}
