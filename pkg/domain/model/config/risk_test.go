package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskscope/pkg/domain/model/config"
)

func TestRiskConfigDefaults(t *testing.T) {
	var nilCfg *config.RiskConfig
	gt.V(t, nilCfg.EffectiveControlEffectiveness()).Equal(1.0)
	gt.V(t, nilCfg.EffectiveMergeMinScore()).Equal(config.DefaultMergeMinScore)
	gt.V(t, nilCfg.EffectivePrefixSegments()).Equal(2)
	gt.B(t, nilCfg.HasCategory("anything")).True()
	gt.B(t, nilCfg.HasDepartment("FIN")).True()

	cfg := &config.RiskConfig{
		Categories:           []config.Category{{ID: "fraud", Name: "Fraud"}},
		Departments:          []config.Department{{ID: "FIN", Name: "Finance"}},
		ControlEffectiveness: 0.5,
		MergeMinScore:        70,
		PrefixSegments:       3,
	}
	gt.V(t, cfg.EffectiveControlEffectiveness()).Equal(0.5)
	gt.V(t, cfg.EffectiveMergeMinScore()).Equal(70)
	gt.V(t, cfg.EffectivePrefixSegments()).Equal(3)
	gt.B(t, cfg.HasCategory("Fraud")).True()
	gt.B(t, cfg.HasCategory("Liquidity")).False()
	gt.B(t, cfg.HasDepartment("FIN")).True()
	gt.B(t, cfg.HasDepartment("OPS")).False()
}
