package model

import (
	"strings"
	"time"

	"github.com/secmon-lab/riskscope/pkg/domain/types"
)

// RiskReport is one submitted risk. Assessments[0] is the primary category.
type RiskReport struct {
	ID                   string
	CompositeID          string
	Name                 string
	Description          string
	Department           types.Department
	Status               types.ReportStatus
	Assessments          []RiskCategoryAssessment
	ControlEffectiveness float64
	GeneralInherentScore float64
	GeneralResidualScore float64
	DueDate              *time.Time
	ConsolidatedInto     string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Primary returns the primary category assessment, or false when the report
// has no assessment yet
func (r *RiskReport) Primary() (RiskCategoryAssessment, bool) {
	if r == nil || len(r.Assessments) == 0 {
		return RiskCategoryAssessment{}, false
	}
	return r.Assessments[0], true
}

// CategoryNames returns the trimmed, non-empty category names in assessment
// order. Duplicates are kept.
func (r *RiskReport) CategoryNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.Assessments))
	for _, a := range r.Assessments {
		if name := strings.TrimSpace(a.Category); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// IsOverdue is true for an active report whose due date has passed
func (r *RiskReport) IsOverdue(now time.Time) bool {
	if r == nil || r.DueDate == nil {
		return false
	}
	return r.Status.IsActive() && r.DueDate.Before(now)
}

// Clone returns a deep copy of the report
func (r *RiskReport) Clone() *RiskReport {
	if r == nil {
		return nil
	}
	c := *r
	if r.Assessments != nil {
		c.Assessments = make([]RiskCategoryAssessment, len(r.Assessments))
		copy(c.Assessments, r.Assessments)
	}
	if r.DueDate != nil {
		due := *r.DueDate
		c.DueDate = &due
	}
	return &c
}
