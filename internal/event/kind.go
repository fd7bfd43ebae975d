package event

// Kind names for the wire envelope, logs and metrics.
const (
	KindBankTransactionIssued = "bank_transaction_issued"
	KindPaymentAuthorized     = "payment_authorized"
	KindPaymentCollected      = "payment_collected"
	KindProductOrdered        = "product_ordered"
)

// Kind renders the event's variant name.
func Kind(e Event) string {
	switch e.(type) {
	case BankTransactionIssued:
		return KindBankTransactionIssued
	case PaymentAuthorized:
		return KindPaymentAuthorized
	case PaymentCollected:
		return KindPaymentCollected
	case ProductOrdered:
		return KindProductOrdered
	default:
		return "unknown"
	}
}
