package domain

import "errors"

var (
	// ErrDuplicateKey signals re-delivery of an already stored natural key.
	// Nothing is retried; producers are expected to be idempotent upstream.
	ErrDuplicateKey = errors.New("duplicate_key")
	// ErrRelationConflict signals an identifier pair that contradicts an
	// existing relation, e.g. a second payment merged against an order that
	// is already linked to another payment.
	ErrRelationConflict = errors.New("relation_conflict")
	// ErrUnknownEvent signals an event variant outside the closed set.
	ErrUnknownEvent = errors.New("unknown_event")
)
