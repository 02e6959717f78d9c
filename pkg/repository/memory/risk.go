package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/domain/interfaces"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
)

type riskReportRepository struct {
	mu        sync.RWMutex
	reports   map[string]*model.RiskReport
	order     []string
	sequences map[string]int
}

func newRiskReportRepository() *riskReportRepository {
	return &riskReportRepository{
		reports:   make(map[string]*model.RiskReport),
		sequences: make(map[string]int),
	}
}

func (r *riskReportRepository) Create(ctx context.Context, report *model.RiskReport) (*model.RiskReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := r.insert(report, time.Now().UTC())
	return created.Clone(), nil
}

// insert stores a copy of report with a fresh ID. Caller must hold the lock.
func (r *riskReportRepository) insert(report *model.RiskReport, now time.Time) *model.RiskReport {
	created := report.Clone()
	created.ID = uuid.NewString()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.reports[created.ID] = created
	r.order = append(r.order, created.ID)
	return created
}

func (r *riskReportRepository) Get(ctx context.Context, id string) (*model.RiskReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, exists := r.reports[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk report not found", goerr.V("id", id))
	}

	// Return a copy to prevent external modification
	return report.Clone(), nil
}

func (r *riskReportRepository) GetByCompositeID(ctx context.Context, compositeID string) (*model.RiskReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if report := r.reports[id]; report.CompositeID == compositeID {
			return report.Clone(), nil
		}
	}
	return nil, goerr.Wrap(ErrNotFound, "risk report not found", goerr.V("composite_id", compositeID))
}

func (r *riskReportRepository) List(ctx context.Context) ([]*model.RiskReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reports := make([]*model.RiskReport, 0, len(r.order))
	for _, id := range r.order {
		reports = append(reports, r.reports[id].Clone())
	}
	return reports, nil
}

func (r *riskReportRepository) ListByDepartment(ctx context.Context, department types.Department) ([]*model.RiskReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var reports []*model.RiskReport
	for _, id := range r.order {
		if report := r.reports[id]; report.Department == department {
			reports = append(reports, report.Clone())
		}
	}
	return reports, nil
}

func (r *riskReportRepository) Update(ctx context.Context, report *model.RiskReport) (*model.RiskReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.reports[report.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk report not found", goerr.V("id", report.ID))
	}

	updated := report.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.reports[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *riskReportRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reports[id]; !exists {
		return goerr.Wrap(ErrNotFound, "risk report not found", goerr.V("id", id))
	}

	delete(r.reports, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *riskReportRepository) NextSequence(ctx context.Context, department types.Department, year int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s/%d", department, year)
	r.sequences[key]++
	return r.sequences[key], nil
}

func (r *riskReportRepository) CommitMerge(ctx context.Context, consolidated *model.RiskReport, originalIDs []string) (*model.RiskReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range originalIDs {
		original, exists := r.reports[id]
		if !exists {
			return nil, goerr.Wrap(ErrNotFound, "original risk report not found", goerr.V("id", id))
		}
		if !original.Status.IsActive() {
			return nil, goerr.Wrap(interfaces.ErrReportNotMergeable, "original risk report is not active",
				goerr.V("id", id), goerr.V("status", original.Status))
		}
	}

	now := time.Now().UTC()
	created := r.insert(consolidated, now)
	for _, id := range originalIDs {
		original := r.reports[id]
		original.Status = types.ReportStatusConsolidated
		original.ConsolidatedInto = created.CompositeID
		original.UpdatedAt = now
	}

	return created.Clone(), nil
}
