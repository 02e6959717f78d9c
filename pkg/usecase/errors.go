package usecase

import (
	"errors"

	"github.com/secmon-lab/riskscope/pkg/domain/interfaces"
	"github.com/secmon-lab/riskscope/pkg/domain/scoring"
)

// Sentinel errors for use case layer
var (
	// Input errors
	ErrValidation = errors.New("validation failed")

	// Not found errors
	ErrReportNotFound = interfaces.ErrReportNotFound

	// State errors
	ErrReportConsolidated   = errors.New("report is already consolidated")
	ErrNotMergeable         = interfaces.ErrReportNotMergeable
	ErrDuplicateCompositeID = errors.New("composite id already exists")
)

// Context keys for error values
const (
	ReportIDKey    = "report_id"
	CompositeIDKey = "composite_id"
	DepartmentKey  = "department"
	CategoryKey    = "category"
)

// IsValidationError reports whether err was caused by caller input
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, scoring.ErrInvalidInput) ||
		errors.Is(err, ErrNotMergeable) ||
		errors.Is(err, ErrReportConsolidated) ||
		errors.Is(err, ErrDuplicateCompositeID)
}

// IsNotFoundError reports whether err was caused by a missing report
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrReportNotFound)
}
