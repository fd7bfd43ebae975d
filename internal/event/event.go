package event

import "time"

// Event is the closed set of facts flowing through the system. Payloads are
// immutable value objects; handlers receive their own copy and never mutate
// shared state.
type Event interface {
	isEvent()
}

// EventType classifies a product order lifecycle fact.
type EventType string

const (
	EventTypeIssuance     EventType = "issuance"
	EventTypeCancellation EventType = "cancellation"
	EventTypeInterruption EventType = "interruption"
)

// InstallmentType is the payment cadence agreed on a product order.
type InstallmentType string

const (
	InstallmentTypeYearly   InstallmentType = "yearly"
	InstallmentTypeBiYearly InstallmentType = "bi_yearly"
	InstallmentTypeMonthly  InstallmentType = "monthly"
)

// Guarantee is a priced guarantee attached to a product order.
type Guarantee struct {
	Type  string  `json:"type"`
	Price float64 `json:"price"`
}

// BankTransactionIssued records money landing on the bank account.
type BankTransactionIssued struct {
	TransactionID string    `json:"transaction_id"`
	Amount        float64   `json:"amount"`
	OccurredOn    time.Time `json:"occurred_on"`
}

// PaymentAuthorized links an order to the payment raised for it.
type PaymentAuthorized struct {
	OrderID    string    `json:"order_id"`
	PaymentID  string    `json:"payment_id"`
	Amount     float64   `json:"amount"`
	OccurredOn time.Time `json:"occurred_on"`
}

// PaymentCollected links a payment to the bank transaction that settled it.
type PaymentCollected struct {
	TransactionID string    `json:"transaction_id"`
	PaymentID     string    `json:"payment_id"`
	Amount        float64   `json:"amount"`
	OccurredOn    time.Time `json:"occurred_on"`
}

// ProductOrdered records the placement (or a lifecycle change) of an order.
type ProductOrdered struct {
	OrderID         string          `json:"order_id"`
	Amount          float64         `json:"amount"`
	EventType       EventType       `json:"event_type"`
	InstallmentType InstallmentType `json:"installment_type"`
	Guarantees      []Guarantee     `json:"guarantees,omitempty"`
	InsuranceCode   string          `json:"insurance_code"`
	OccurredOn      time.Time       `json:"occurred_on"`
}

func (BankTransactionIssued) isEvent() {}
func (PaymentAuthorized) isEvent()     {}
func (PaymentCollected) isEvent()      {}
func (ProductOrdered) isEvent()        {}
