package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/domain/interfaces"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
	bolt "go.etcd.io/bbolt"
)

type assessmentRecord struct {
	Category       string `json:"category"`
	Likelihood     int    `json:"likelihood"`
	Impact         int    `json:"impact"`
	InherentRating int    `json:"inherent_rating"`
	ResidualRating int    `json:"residual_rating"`
	Level          string `json:"level"`
	ResidualLevel  string `json:"residual_level"`
}

type reportRecord struct {
	Seq                  uint64             `json:"seq"`
	ID                   string             `json:"id"`
	CompositeID          string             `json:"composite_id"`
	Name                 string             `json:"name"`
	Description          string             `json:"description"`
	Department           string             `json:"department"`
	Status               string             `json:"status"`
	Assessments          []assessmentRecord `json:"assessments"`
	ControlEffectiveness float64            `json:"control_effectiveness"`
	GeneralInherentScore float64            `json:"general_inherent_score"`
	GeneralResidualScore float64            `json:"general_residual_score"`
	DueDate              *time.Time         `json:"due_date,omitempty"`
	ConsolidatedInto     string             `json:"consolidated_into,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

func toRecord(r *model.RiskReport) *reportRecord {
	rec := &reportRecord{
		ID:                   r.ID,
		CompositeID:          r.CompositeID,
		Name:                 r.Name,
		Description:          r.Description,
		Department:           string(r.Department),
		Status:               string(r.Status),
		Assessments:          make([]assessmentRecord, len(r.Assessments)),
		ControlEffectiveness: r.ControlEffectiveness,
		GeneralInherentScore: r.GeneralInherentScore,
		GeneralResidualScore: r.GeneralResidualScore,
		DueDate:              r.DueDate,
		ConsolidatedInto:     r.ConsolidatedInto,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
	for i, a := range r.Assessments {
		rec.Assessments[i] = assessmentRecord{
			Category:       a.Category,
			Likelihood:     int(a.Likelihood),
			Impact:         int(a.Impact),
			InherentRating: a.InherentRating,
			ResidualRating: a.ResidualRating,
			Level:          string(a.Level),
			ResidualLevel:  string(a.ResidualLevel),
		}
	}
	return rec
}

func (rec *reportRecord) toModel() *model.RiskReport {
	r := &model.RiskReport{
		ID:                   rec.ID,
		CompositeID:          rec.CompositeID,
		Name:                 rec.Name,
		Description:          rec.Description,
		Department:           types.Department(rec.Department),
		Status:               types.ReportStatus(rec.Status),
		Assessments:          make([]model.RiskCategoryAssessment, len(rec.Assessments)),
		ControlEffectiveness: rec.ControlEffectiveness,
		GeneralInherentScore: rec.GeneralInherentScore,
		GeneralResidualScore: rec.GeneralResidualScore,
		DueDate:              rec.DueDate,
		ConsolidatedInto:     rec.ConsolidatedInto,
		CreatedAt:            rec.CreatedAt,
		UpdatedAt:            rec.UpdatedAt,
	}
	for i, a := range rec.Assessments {
		r.Assessments[i] = model.RiskCategoryAssessment{
			Category:       a.Category,
			Likelihood:     types.Likelihood(a.Likelihood),
			Impact:         types.Impact(a.Impact),
			InherentRating: a.InherentRating,
			ResidualRating: a.ResidualRating,
			Level:          types.RiskLevel(a.Level),
			ResidualLevel:  types.RiskLevel(a.ResidualLevel),
		}
	}
	return r
}

type riskReportRepository struct {
	db *bolt.DB
}

func getRecord(tx *bolt.Tx, id string) (*reportRecord, error) {
	data := tx.Bucket(bucketReports).Get([]byte(id))
	if data == nil {
		return nil, goerr.Wrap(ErrNotFound, "risk report not found", goerr.V("id", id))
	}
	var rec reportRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk report", goerr.V("id", id))
	}
	return &rec, nil
}

func putRecord(tx *bolt.Tx, rec *reportRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal risk report", goerr.V("id", rec.ID))
	}
	if err := tx.Bucket(bucketReports).Put([]byte(rec.ID), data); err != nil {
		return goerr.Wrap(err, "failed to put risk report", goerr.V("id", rec.ID))
	}
	if rec.CompositeID != "" {
		if err := tx.Bucket(bucketComposite).Put([]byte(rec.CompositeID), []byte(rec.ID)); err != nil {
			return goerr.Wrap(err, "failed to index composite id", goerr.V("composite_id", rec.CompositeID))
		}
	}
	return nil
}

// insertRecord assigns ID, insertion sequence and timestamps to a new record
func insertRecord(tx *bolt.Tx, report *model.RiskReport, now time.Time) (*reportRecord, error) {
	seq, err := tx.Bucket(bucketReports).NextSequence()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to allocate report sequence")
	}

	rec := toRecord(report)
	rec.Seq = seq
	rec.ID = uuid.NewString()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if err := putRecord(tx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *riskReportRepository) Create(ctx context.Context, report *model.RiskReport) (*model.RiskReport, error) {
	var created *reportRecord
	err := r.db.Update(func(tx *bolt.Tx) error {
		rec, err := insertRecord(tx, report, time.Now().UTC())
		if err != nil {
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk report")
	}
	return created.toModel(), nil
}

func (r *riskReportRepository) Get(ctx context.Context, id string) (*model.RiskReport, error) {
	var rec *reportRecord
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		rec, err = getRecord(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (r *riskReportRepository) GetByCompositeID(ctx context.Context, compositeID string) (*model.RiskReport, error) {
	var rec *reportRecord
	err := r.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketComposite).Get([]byte(compositeID))
		if id == nil {
			return goerr.Wrap(ErrNotFound, "risk report not found", goerr.V("composite_id", compositeID))
		}
		var err error
		rec, err = getRecord(tx, string(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (r *riskReportRepository) List(ctx context.Context) ([]*model.RiskReport, error) {
	return r.scan(func(*reportRecord) bool { return true })
}

func (r *riskReportRepository) ListByDepartment(ctx context.Context, department types.Department) ([]*model.RiskReport, error) {
	return r.scan(func(rec *reportRecord) bool {
		return rec.Department == string(department)
	})
}

func (r *riskReportRepository) scan(match func(*reportRecord) bool) ([]*model.RiskReport, error) {
	var records []*reportRecord
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketReports).ForEach(func(k, v []byte) error {
			var rec reportRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return goerr.Wrap(err, "failed to unmarshal risk report", goerr.V("id", string(k)))
			}
			if match(&rec) {
				records = append(records, &rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk reports")
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})

	reports := make([]*model.RiskReport, len(records))
	for i, rec := range records {
		reports[i] = rec.toModel()
	}
	return reports, nil
}

func (r *riskReportRepository) Update(ctx context.Context, report *model.RiskReport) (*model.RiskReport, error) {
	var updated *reportRecord
	err := r.db.Update(func(tx *bolt.Tx) error {
		existing, err := getRecord(tx, report.ID)
		if err != nil {
			return err
		}

		if existing.CompositeID != "" && existing.CompositeID != report.CompositeID {
			if err := tx.Bucket(bucketComposite).Delete([]byte(existing.CompositeID)); err != nil {
				return goerr.Wrap(err, "failed to drop composite index")
			}
		}

		updated = toRecord(report)
		updated.Seq = existing.Seq
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		return putRecord(tx, updated)
	})
	if err != nil {
		return nil, err
	}
	return updated.toModel(), nil
}

func (r *riskReportRepository) Delete(ctx context.Context, id string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		existing, err := getRecord(tx, id)
		if err != nil {
			return err
		}
		if existing.CompositeID != "" {
			if err := tx.Bucket(bucketComposite).Delete([]byte(existing.CompositeID)); err != nil {
				return goerr.Wrap(err, "failed to drop composite index")
			}
		}
		if err := tx.Bucket(bucketReports).Delete([]byte(id)); err != nil {
			return goerr.Wrap(err, "failed to delete risk report", goerr.V("id", id))
		}
		return nil
	})
}

func (r *riskReportRepository) NextSequence(ctx context.Context, department types.Department, year int) (int, error) {
	key := []byte(fmt.Sprintf("%s/%d", department, year))

	var next uint64
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCounters)
		if current := b.Get(key); current != nil {
			next = binary.BigEndian.Uint64(current)
		}
		next++

		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, next)
		return b.Put(key, buf)
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next sequence",
			goerr.V("department", department),
			goerr.V("year", year))
	}
	return int(next), nil
}

func (r *riskReportRepository) CommitMerge(ctx context.Context, consolidated *model.RiskReport, originalIDs []string) (*model.RiskReport, error) {
	var created *reportRecord
	err := r.db.Update(func(tx *bolt.Tx) error {
		originals := make([]*reportRecord, len(originalIDs))
		for i, id := range originalIDs {
			rec, err := getRecord(tx, id)
			if err != nil {
				return goerr.Wrap(err, "original risk report not found", goerr.V("id", id))
			}
			if !types.ReportStatus(rec.Status).IsActive() {
				return goerr.Wrap(interfaces.ErrReportNotMergeable, "original risk report is not active",
					goerr.V("id", id), goerr.V("status", rec.Status))
			}
			originals[i] = rec
		}

		now := time.Now().UTC()
		rec, err := insertRecord(tx, consolidated, now)
		if err != nil {
			return err
		}
		created = rec

		for _, original := range originals {
			original.Status = string(types.ReportStatusConsolidated)
			original.ConsolidatedInto = created.CompositeID
			original.UpdatedAt = now
			if err := putRecord(tx, original); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to commit merge")
	}
	return created.toModel(), nil
}
