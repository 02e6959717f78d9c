package bolt

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/domain/interfaces"
	bolt "go.etcd.io/bbolt"
)

// ErrNotFound is returned when a report does not exist
var ErrNotFound = interfaces.ErrReportNotFound

var (
	bucketReports   = []byte("risk_reports")
	bucketComposite = []byte("composite_index")
	bucketCounters  = []byte("counters")
)

// Bolt is a single file repository backed by bbolt
type Bolt struct {
	db     *bolt.DB
	report *riskReportRepository
}

var _ interfaces.Repository = &Bolt{}

// New opens (or creates) the database file at path
func New(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open bolt database", goerr.V("path", path))
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketReports, bucketComposite, bucketCounters} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return goerr.Wrap(err, "failed to create bucket", goerr.V("bucket", string(name)))
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Bolt{
		db:     db,
		report: &riskReportRepository{db: db},
	}, nil
}

func (b *Bolt) RiskReport() interfaces.RiskReportRepository {
	return b.report
}

func (b *Bolt) Close() error {
	if err := b.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close bolt database")
	}
	return nil
}
