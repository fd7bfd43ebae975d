package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tally/internal/event"
	"github.com/smallbiznis/tally/internal/projection/domain"
	"gorm.io/gorm"
)

// TotalAuthorizedProjector appends payment authorization amounts to the
// total_authorized ledger.
type TotalAuthorizedProjector struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewTotalAuthorizedProjector(db *gorm.DB, genID *snowflake.Node) *TotalAuthorizedProjector {
	return &TotalAuthorizedProjector{db: db, genID: genID}
}

func (p *TotalAuthorizedProjector) Project(ctx context.Context, evt event.Event) error {
	payload, ok := evt.(event.PaymentAuthorized)
	if !ok {
		return nil
	}
	return p.db.WithContext(ctx).Create(&domain.TotalAuthorized{
		ID:         p.genID.Generate(),
		Amount:     payload.Amount,
		OccurredOn: payload.OccurredOn,
	}).Error
}
