package firestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/domain/interfaces"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type assessmentDocument struct {
	Category       string `firestore:"category"`
	Likelihood     int    `firestore:"likelihood"`
	Impact         int    `firestore:"impact"`
	InherentRating int    `firestore:"inherent_rating"`
	ResidualRating int    `firestore:"residual_rating"`
	Level          string `firestore:"level"`
	ResidualLevel  string `firestore:"residual_level"`
}

type riskReportDocument struct {
	ID                   string               `firestore:"id"`
	CompositeID          string               `firestore:"composite_id"`
	Name                 string               `firestore:"name"`
	Description          string               `firestore:"description"`
	Department           string               `firestore:"department"`
	Status               string               `firestore:"status"`
	Assessments          []assessmentDocument `firestore:"assessments"`
	ControlEffectiveness float64              `firestore:"control_effectiveness"`
	GeneralInherentScore float64              `firestore:"general_inherent_score"`
	GeneralResidualScore float64              `firestore:"general_residual_score"`
	DueDate              *time.Time           `firestore:"due_date"`
	ConsolidatedInto     string               `firestore:"consolidated_into"`
	CreatedAt            time.Time            `firestore:"created_at"`
	UpdatedAt            time.Time            `firestore:"updated_at"`
}

func toDocument(r *model.RiskReport) *riskReportDocument {
	doc := &riskReportDocument{
		ID:                   r.ID,
		CompositeID:          r.CompositeID,
		Name:                 r.Name,
		Description:          r.Description,
		Department:           string(r.Department),
		Status:               string(r.Status),
		Assessments:          make([]assessmentDocument, len(r.Assessments)),
		ControlEffectiveness: r.ControlEffectiveness,
		GeneralInherentScore: r.GeneralInherentScore,
		GeneralResidualScore: r.GeneralResidualScore,
		DueDate:              r.DueDate,
		ConsolidatedInto:     r.ConsolidatedInto,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
	for i, a := range r.Assessments {
		doc.Assessments[i] = assessmentDocument{
			Category:       a.Category,
			Likelihood:     int(a.Likelihood),
			Impact:         int(a.Impact),
			InherentRating: a.InherentRating,
			ResidualRating: a.ResidualRating,
			Level:          string(a.Level),
			ResidualLevel:  string(a.ResidualLevel),
		}
	}
	return doc
}

func (d *riskReportDocument) toModel() *model.RiskReport {
	r := &model.RiskReport{
		ID:                   d.ID,
		CompositeID:          d.CompositeID,
		Name:                 d.Name,
		Description:          d.Description,
		Department:           types.Department(d.Department),
		Status:               types.ReportStatus(d.Status),
		Assessments:          make([]model.RiskCategoryAssessment, len(d.Assessments)),
		ControlEffectiveness: d.ControlEffectiveness,
		GeneralInherentScore: d.GeneralInherentScore,
		GeneralResidualScore: d.GeneralResidualScore,
		DueDate:              d.DueDate,
		ConsolidatedInto:     d.ConsolidatedInto,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
	for i, a := range d.Assessments {
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
	client           *firestore.Client
	collectionPrefix string
}

func newRiskReportRepository(client *firestore.Client) *riskReportRepository {
	return &riskReportRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *riskReportRepository) reportsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_risk_reports"
	}
	return "risk_reports"
}

func (r *riskReportRepository) counterCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *riskReportRepository) sequenceDoc(department types.Department, year int) string {
	return fmt.Sprintf("sequence_%s_%d", department, year)
}

func (r *riskReportRepository) NextSequence(ctx context.Context, department types.Department, year int) (int, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc(r.sequenceDoc(department, year))

	var next int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				next = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": next,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}
		current, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not an integer", goerr.V("value", currentValue))
		}

		next = current + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: next},
		})
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next sequence",
			goerr.V("department", department),
			goerr.V("year", year))
	}

	return int(next), nil
}

func (r *riskReportRepository) Create(ctx context.Context, report *model.RiskReport) (*model.RiskReport, error) {
	now := time.Now().UTC()
	doc := toDocument(report)
	doc.ID = uuid.NewString()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	docRef := r.client.Collection(r.reportsCollection()).Doc(doc.ID)
	if _, err := docRef.Create(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create risk report")
	}

	return doc.toModel(), nil
}

func (r *riskReportRepository) Get(ctx context.Context, id string) (*model.RiskReport, error) {
	docRef := r.client.Collection(r.reportsCollection()).Doc(id)
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "risk report not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get risk report", goerr.V("id", id))
	}

	var reportDoc riskReportDocument
	if err := doc.DataTo(&reportDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk report", goerr.V("id", id))
	}

	return reportDoc.toModel(), nil
}

func (r *riskReportRepository) GetByCompositeID(ctx context.Context, compositeID string) (*model.RiskReport, error) {
	iter := r.client.Collection(r.reportsCollection()).
		Where("composite_id", "==", compositeID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "risk report not found", goerr.V("composite_id", compositeID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query risk report", goerr.V("composite_id", compositeID))
	}

	var reportDoc riskReportDocument
	if err := doc.DataTo(&reportDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk report", goerr.V("composite_id", compositeID))
	}
	return reportDoc.toModel(), nil
}

func (r *riskReportRepository) List(ctx context.Context) ([]*model.RiskReport, error) {
	return r.collect(r.client.Collection(r.reportsCollection()).Documents(ctx))
}

func (r *riskReportRepository) ListByDepartment(ctx context.Context, department types.Department) ([]*model.RiskReport, error) {
	return r.collect(r.client.Collection(r.reportsCollection()).
		Where("department", "==", string(department)).
		Documents(ctx))
}

// collect drains iter and orders the reports by creation time. Sorting is
// done client side so no composite index is required.
func (r *riskReportRepository) collect(iter *firestore.DocumentIterator) ([]*model.RiskReport, error) {
	defer iter.Stop()

	var reports []*model.RiskReport
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risk reports")
		}

		var reportDoc riskReportDocument
		if err := doc.DataTo(&reportDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal risk report", goerr.V("doc_id", doc.Ref.ID))
		}
		reports = append(reports, reportDoc.toModel())
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.Before(reports[j].CreatedAt)
	})
	return reports, nil
}

func (r *riskReportRepository) Update(ctx context.Context, report *model.RiskReport) (*model.RiskReport, error) {
	docRef := r.client.Collection(r.reportsCollection()).Doc(report.ID)

	var updated *riskReportDocument
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "risk report not found", goerr.V("id", report.ID))
			}
			return goerr.Wrap(err, "failed to get risk report", goerr.V("id", report.ID))
		}

		var existing riskReportDocument
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal risk report", goerr.V("id", report.ID))
		}

		updated = toDocument(report)
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(docRef, updated)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk report")
	}

	return updated.toModel(), nil
}

func (r *riskReportRepository) Delete(ctx context.Context, id string) error {
	docRef := r.client.Collection(r.reportsCollection()).Doc(id)
	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "risk report not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get risk report", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete risk report", goerr.V("id", id))
	}
	return nil
}

func (r *riskReportRepository) CommitMerge(ctx context.Context, consolidated *model.RiskReport, originalIDs []string) (*model.RiskReport, error) {
	now := time.Now().UTC()
	doc := toDocument(consolidated)
	doc.ID = uuid.NewString()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	collection := r.client.Collection(r.reportsCollection())
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// All reads must happen before any write in a transaction
		refs := make([]*firestore.DocumentRef, len(originalIDs))
		for i, id := range originalIDs {
			refs[i] = collection.Doc(id)
			snap, err := tx.Get(refs[i])
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return goerr.Wrap(ErrNotFound, "original risk report not found", goerr.V("id", id))
				}
				return goerr.Wrap(err, "failed to get original risk report", goerr.V("id", id))
			}
			var original riskReportDocument
			if err := snap.DataTo(&original); err != nil {
				return goerr.Wrap(err, "failed to decode original risk report", goerr.V("id", id))
			}
			if !types.ReportStatus(original.Status).IsActive() {
				return goerr.Wrap(interfaces.ErrReportNotMergeable, "original risk report is not active",
					goerr.V("id", id), goerr.V("status", original.Status))
			}
		}

		if err := tx.Create(collection.Doc(doc.ID), doc); err != nil {
			return goerr.Wrap(err, "failed to create consolidated risk report")
		}
		for _, ref := range refs {
			if err := tx.Update(ref, []firestore.Update{
				{Path: "status", Value: string(types.ReportStatusConsolidated)},
				{Path: "consolidated_into", Value: doc.CompositeID},
				{Path: "updated_at", Value: now},
			}); err != nil {
				return goerr.Wrap(err, "failed to mark risk report consolidated", goerr.V("id", ref.ID))
			}
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to commit merge")
	}

	return doc.toModel(), nil
}
