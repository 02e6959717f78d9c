package usecase

import (
	"time"

	"github.com/secmon-lab/riskscope/pkg/domain/interfaces"
	"github.com/secmon-lab/riskscope/pkg/domain/model/config"
)

type UseCases struct {
	repo       interfaces.Repository
	riskConfig *config.RiskConfig
	clock      func() time.Time
	Report     *ReportUseCase
	Analytics  *AnalyticsUseCase
}

type Option func(*UseCases)

func WithRiskConfig(cfg *config.RiskConfig) Option {
	return func(uc *UseCases) {
		uc.riskConfig = cfg
	}
}

// WithClock replaces time.Now for due date and sequence year decisions
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:  repo,
		clock: time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Report = NewReportUseCase(repo, uc.riskConfig, uc.clock)
	uc.Analytics = NewAnalyticsUseCase(repo, uc.riskConfig, uc.clock)

	return uc
}

// RiskConfig returns the active scoring policy, which may be nil
func (uc *UseCases) RiskConfig() *config.RiskConfig {
	return uc.riskConfig
}

// Now returns the current time of the use case clock
func (uc *UseCases) Now() time.Time {
	return uc.clock()
}
