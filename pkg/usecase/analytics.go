package usecase

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/domain/interfaces"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/model/config"
	"github.com/secmon-lab/riskscope/pkg/domain/scoring"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
	"golang.org/x/sync/errgroup"
)

type AnalyticsUseCase struct {
	repo       interfaces.Repository
	riskConfig *config.RiskConfig
	codec      *scoring.CompositeCodec
	clock      func() time.Time
}

func NewAnalyticsUseCase(repo interfaces.Repository, cfg *config.RiskConfig, clock func() time.Time) *AnalyticsUseCase {
	codec, err := scoring.NewCompositeCodec(cfg.EffectivePrefixSegments())
	if err != nil {
		codec = scoring.DefaultCompositeCodec()
	}
	if clock == nil {
		clock = time.Now
	}

	return &AnalyticsUseCase{
		repo:       repo,
		riskConfig: cfg,
		codec:      codec,
		clock:      clock,
	}
}

// CategoryGroups clusters every report that has not been consolidated by
// its category set
func (uc *AnalyticsUseCase) CategoryGroups(ctx context.Context) ([]*model.RiskGroup, error) {
	reports, err := uc.repo.RiskReport().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk reports")
	}

	live := make([]*model.RiskReport, 0, len(reports))
	for _, r := range reports {
		if r.Status != types.ReportStatusConsolidated {
			live = append(live, r)
		}
	}
	return scoring.GroupByCategory(live), nil
}

// MergeCandidates scores every pair of active plain reports and returns the
// pairs reaching the policy threshold, best first
func (uc *AnalyticsUseCase) MergeCandidates(ctx context.Context) ([]*model.MergeCandidatePair, error) {
	reports, err := uc.repo.RiskReport().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk reports")
	}

	var candidates []*model.RiskReport
	for _, r := range reports {
		if r.Status.IsActive() && !uc.codec.IsMerged(r.CompositeID) {
			candidates = append(candidates, r)
		}
	}

	return FindMergeCandidates(ctx, candidates, uc.riskConfig.EffectiveMergeMinScore(), uc.workers())
}

func (uc *AnalyticsUseCase) workers() int {
	if uc.riskConfig != nil && uc.riskConfig.MergeWorkers > 0 {
		return uc.riskConfig.MergeWorkers
	}
	return runtime.GOMAXPROCS(0)
}

// FindMergeCandidates runs the pairwise search over reports. Rows of the
// pair matrix are distributed round robin over the workers; each worker
// checks ctx before every row.
func FindMergeCandidates(ctx context.Context, reports []*model.RiskReport, minScore, workers int) ([]*model.MergeCandidatePair, error) {
	n := len(reports)
	if n < 2 {
		return nil, nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n-1 {
		workers = n - 1
	}

	shards := make([][]*model.MergeCandidatePair, workers)
	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			var found []*model.MergeCandidatePair
			for i := w; i < n-1; i += workers {
				if err := ctx.Err(); err != nil {
					return goerr.Wrap(err, "merge candidate search cancelled")
				}
				for j := i + 1; j < n; j++ {
					pair := scoring.ScorePair(reports[i], reports[j])
					if pair.Score >= minScore {
						found = append(found, pair)
					}
				}
			}
			shards[w] = found
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var pairs []*model.MergeCandidatePair
	for _, shard := range shards {
		pairs = append(pairs, shard...)
	}
	scoring.SortCandidates(pairs)
	return pairs, nil
}

// DepartmentHealth scores one department as of the use case clock
func (uc *AnalyticsUseCase) DepartmentHealth(ctx context.Context, department types.Department) (*model.DepartmentHealth, error) {
	if err := department.Validate(); err != nil {
		return nil, goerr.Wrap(ErrValidation, "invalid department", goerr.V(DepartmentKey, department))
	}

	reports, err := uc.repo.RiskReport().ListByDepartment(ctx, department)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk reports", goerr.V(DepartmentKey, department))
	}

	health := scoring.DepartmentHealth(department, reports, uc.clock())
	return &health, nil
}

// AllDepartmentHealth scores every department that has reports or is named
// by the policy, ordered by department
func (uc *AnalyticsUseCase) AllDepartmentHealth(ctx context.Context) ([]*model.DepartmentHealth, error) {
	reports, err := uc.repo.RiskReport().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk reports")
	}

	byDept := make(map[types.Department][]*model.RiskReport)
	for _, r := range reports {
		byDept[r.Department] = append(byDept[r.Department], r)
	}
	if uc.riskConfig != nil {
		for _, d := range uc.riskConfig.Departments {
			dept := types.Department(d.ID)
			if _, ok := byDept[dept]; !ok {
				byDept[dept] = nil
			}
		}
	}

	departments := make([]types.Department, 0, len(byDept))
	for dept := range byDept {
		departments = append(departments, dept)
	}
	sort.Slice(departments, func(i, j int) bool {
		return departments[i] < departments[j]
	})

	now := uc.clock()
	result := make([]*model.DepartmentHealth, len(departments))
	for i, dept := range departments {
		health := scoring.DepartmentHealth(dept, byDept[dept], now)
		result[i] = &health
	}
	return result, nil
}
