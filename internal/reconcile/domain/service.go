package domain

import (
	"context"

	"github.com/smallbiznis/tally/internal/event"
	"gorm.io/gorm"
)

// Service persists each fact, merges identifier links into the relation
// store, and settles the aggregate accumulators once a relation is complete.
type Service interface {
	Reconcile(ctx context.Context, evt event.Event) error
}

// RelationField names a correlating identifier column of the relations table.
type RelationField string

const (
	FieldTransactionID RelationField = "transaction_id"
	FieldOrderID       RelationField = "order_id"
	FieldPaymentID     RelationField = "payment_id"
)

// IdentifierPair is the two-identifier link carried by a payment event.
type IdentifierPair struct {
	A      RelationField
	AValue string
	B      RelationField
	BValue string
}

// Repository is the correlation store. Both operations run inside the
// caller's transaction so a mid-sequence failure leaves no partial merge.
type Repository interface {
	// FindByField locates the relation whose field equals value, or nil.
	FindByField(ctx context.Context, tx *gorm.DB, field RelationField, value string) (*Relation, error)
	// Merge folds a freshly observed identifier pair into the store: it
	// fills the missing field of an existing partial relation when one of
	// the pair already appears there, and inserts a new two-field relation
	// otherwise. Returns the resulting relation, which may now be complete.
	Merge(ctx context.Context, tx *gorm.DB, pair IdentifierPair) (*Relation, error)
}
