package repository

import (
	"context"

	"salonsync-service/internal/domain/entity"
)

// FilterOp is the comparison operator of one query condition.
type FilterOp string

const (
	OpEqual         FilterOp = "=="
	OpArrayContains FilterOp = "array-contains"
)

// Filter describes one equality or array-membership condition against a
// document field. Dotted paths address fields of embedded array elements.
type Filter struct {
	Field string
	Op    FilterOp
	Value interface{}
}

// ChangeSubscription is a push-based change feed over the appointment
// collection. Changes delivers coalesced change signals; the caller re-reads
// the collection on each signal. The channel is closed when the feed ends,
// after which Err reports the terminal error, if any.
type ChangeSubscription interface {
	Changes() <-chan struct{}
	Err() error
	Close(ctx context.Context) error
}

// AppointmentRepository defines storage operations over the appointment
// collection.
type AppointmentRepository interface {
	Query(ctx context.Context, filters []Filter, orderBy string, descending bool, limit int64) ([]*entity.AppointmentDocument, error)
	GetByID(ctx context.Context, id string) (*entity.AppointmentDocument, error)

	// ScanAll reads the entire collection. Last-resort fallback for legacy
	// unindexed data; O(collection size) per call.
	ScanAll(ctx context.Context) ([]*entity.AppointmentDocument, error)

	Insert(ctx context.Context, doc *entity.AppointmentDocument) error
	Update(ctx context.Context, id string, patch map[string]interface{}) error
	AppendHistory(ctx context.Context, id string, entry entity.HistoryEntry) error
	Delete(ctx context.Context, id string) error

	// Watch opens a change feed for documents matching the filter.
	Watch(ctx context.Context, filter Filter) (ChangeSubscription, error)
}
