package memory

import (
	"github.com/secmon-lab/riskscope/pkg/domain/interfaces"
)

// ErrNotFound is returned when a report does not exist
var ErrNotFound = interfaces.ErrReportNotFound

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	report *riskReportRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		report: newRiskReportRepository(),
	}
}

func (m *Memory) RiskReport() interfaces.RiskReportRepository {
	return m.report
}

func (m *Memory) Close() error {
	return nil
}
