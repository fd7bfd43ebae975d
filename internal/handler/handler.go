package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/tally/internal/event"
	"github.com/smallbiznis/tally/internal/metrics"
	projectiondomain "github.com/smallbiznis/tally/internal/projection/domain"
	reconciledomain "github.com/smallbiznis/tally/internal/reconcile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Stage identifies which processing stage rejected an event.
type Stage string

const (
	StageProjection     Stage = "projection"
	StageReconciliation Stage = "reconciliation"
)

// Error unifies both failure domains of Accept into one outcome type.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Params struct {
	fx.In

	Projectors []projectiondomain.Projector
	Engine     reconciledomain.Service
	Log        *zap.Logger
	Metrics    *metrics.Metrics `optional:"true"`
}

// Handler is the single entry point for produced events.
type Handler struct {
	projectors []projectiondomain.Projector
	engine     reconciledomain.Service
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// New builds the event handler over the fixed projector list and the
// reconciliation engine.
func New(p Params) *Handler {
	return &Handler{
		projectors: p.Projectors,
		engine:     p.Engine,
		log:        p.Log.Named("event.handler"),
		metrics:    p.Metrics,
	}
}

// Accept runs the event through every projector in registration order,
// failing fast, then through the reconciliation engine. One event in, one
// outcome out; nothing is retried here.
func (h *Handler) Accept(ctx context.Context, evt event.Event) error {
	kind := event.Kind(evt)

	for _, projector := range h.projectors {
		if err := projector.Project(ctx, evt); err != nil {
			h.log.Error("projection failed", zap.String("kind", kind), zap.Error(err))
			h.metrics.RecordEventRejected(ctx, kind, string(StageProjection))
			return &Error{Stage: StageProjection, Err: err}
		}
	}

	if err := h.engine.Reconcile(ctx, evt); err != nil {
		if errors.Is(err, reconciledomain.ErrDuplicateKey) {
			h.metrics.RecordDuplicateFact(ctx, kind)
		} else {
			h.metrics.RecordEventRejected(ctx, kind, string(StageReconciliation))
		}
		h.log.Error("reconciliation failed", zap.String("kind", kind), zap.Error(err))
		return &Error{Stage: StageReconciliation, Err: err}
	}

	h.metrics.RecordEventAccepted(ctx, kind)
	return nil
}
