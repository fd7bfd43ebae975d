package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tally/internal/event"
)

// BankTransaction is the durable fact for a BankTransactionIssued event.
// OrderedAmount accumulates the order amounts accounted against this
// transaction once the correlating relation settles.
type BankTransaction struct {
	TransactionID string    `gorm:"primaryKey;type:text"`
	Amount        float64   `gorm:"not null"`
	OrderedAmount float64   `gorm:"not null;default:0"`
	OccurredOn    time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (BankTransaction) TableName() string { return "bank_transactions" }

// ProductOrder is the durable fact for a ProductOrdered event.
// CollectedAmount accumulates settled payment collections.
type ProductOrder struct {
	OrderID         string                `gorm:"primaryKey;type:text"`
	Amount          float64               `gorm:"not null"`
	CollectedAmount float64               `gorm:"not null;default:0"`
	OccurredOn      time.Time             `gorm:"not null"`
	InsuranceCode   string                `gorm:"type:text"`
	InstallmentType event.InstallmentType `gorm:"type:text"`
	EventType       event.EventType       `gorm:"type:text"`
}

// TableName sets the database table name.
func (ProductOrder) TableName() string { return "product_orders" }

// PaymentAuthorization is the durable fact for a PaymentAuthorized event.
type PaymentAuthorization struct {
	OrderID    string    `gorm:"primaryKey;type:text"`
	PaymentID  string    `gorm:"primaryKey;type:text"`
	Amount     float64   `gorm:"not null"`
	OccurredOn time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (PaymentAuthorization) TableName() string { return "payment_authorizations" }

// PaymentCollection is the durable fact for a PaymentCollected event.
type PaymentCollection struct {
	TransactionID string    `gorm:"primaryKey;type:text"`
	PaymentID     string    `gorm:"primaryKey;type:text"`
	Amount        float64   `gorm:"not null"`
	OccurredOn    time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (PaymentCollection) TableName() string { return "payment_collections" }

// RelationStatus is the relation lifecycle. Fields are only ever filled,
// never cleared, so the status moves one way: partial, complete, reconciled.
type RelationStatus string

const (
	RelationStatusPartial    RelationStatus = "partial"
	RelationStatusComplete   RelationStatus = "complete"
	RelationStatusReconciled RelationStatus = "reconciled"
)

// Relation tracks the discovered correspondence between a bank transaction,
// a product order and a payment. Each identifier value may appear in at most
// one relation; the partial unique indexes enforce that at the store level.
type Relation struct {
	ID            snowflake.ID   `gorm:"primaryKey"`
	TransactionID *string        `gorm:"type:text;uniqueIndex:ux_relations_transaction_id,where:transaction_id IS NOT NULL"`
	OrderID       *string        `gorm:"type:text;uniqueIndex:ux_relations_order_id,where:order_id IS NOT NULL"`
	PaymentID     *string        `gorm:"type:text;uniqueIndex:ux_relations_payment_id,where:payment_id IS NOT NULL"`
	Status        RelationStatus `gorm:"type:text;not null;default:partial"`
}

// TableName sets the database table name.
func (Relation) TableName() string { return "relations" }

// Complete reports whether all three identifiers are known.
func (r Relation) Complete() bool {
	return r.TransactionID != nil && r.OrderID != nil && r.PaymentID != nil
}

// Field returns the identifier stored under the named column.
func (r Relation) Field(field RelationField) *string {
	switch field {
	case FieldTransactionID:
		return r.TransactionID
	case FieldOrderID:
		return r.OrderID
	case FieldPaymentID:
		return r.PaymentID
	default:
		return nil
	}
}
