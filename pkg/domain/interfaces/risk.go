package interfaces

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
)

// ErrReportNotFound is wrapped by every backend when a report does not exist
var ErrReportNotFound = goerr.New("risk report not found")

// ErrReportNotMergeable is wrapped by CommitMerge when an original is no
// longer active
var ErrReportNotMergeable = goerr.New("risk report is not mergeable")

type RiskReportRepository interface {
	// Create stores a new report and assigns its ID, CreatedAt and UpdatedAt
	Create(ctx context.Context, report *model.RiskReport) (*model.RiskReport, error)

	// Get retrieves a report by ID
	Get(ctx context.Context, id string) (*model.RiskReport, error)

	// GetByCompositeID retrieves a report by its composite identifier
	GetByCompositeID(ctx context.Context, compositeID string) (*model.RiskReport, error)

	// List retrieves all reports ordered by CreatedAt
	List(ctx context.Context) ([]*model.RiskReport, error)

	// ListByDepartment retrieves all reports of one department ordered by CreatedAt
	ListByDepartment(ctx context.Context, department types.Department) ([]*model.RiskReport, error)

	// Update replaces an existing report, keeping its CreatedAt
	Update(ctx context.Context, report *model.RiskReport) (*model.RiskReport, error)

	// Delete deletes a report by ID
	Delete(ctx context.Context, id string) error

	// NextSequence returns the next sequence number for the department and
	// year, starting at 1
	NextSequence(ctx context.Context, department types.Department, year int) (int, error)

	// CommitMerge atomically stores the consolidated report and marks every
	// original as CONSOLIDATED into it. Every original must still be active
	// when the commit runs, otherwise ErrReportNotMergeable is returned and
	// nothing is written.
	CommitMerge(ctx context.Context, consolidated *model.RiskReport, originalIDs []string) (*model.RiskReport, error)
}
