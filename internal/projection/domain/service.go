package domain

import (
	"context"

	"github.com/smallbiznis/tally/internal/event"
)

// Projector derives one append-only aggregate ledger from the event stream.
// A projector recognizes exactly one event variant and appends one ledger
// row on match; every other variant is a no-op success.
type Projector interface {
	Project(ctx context.Context, evt event.Event) error
}
