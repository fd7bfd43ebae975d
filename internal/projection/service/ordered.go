package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tally/internal/event"
	"github.com/smallbiznis/tally/internal/projection/domain"
	"gorm.io/gorm"
)

// TotalOrderedProjector appends product order amounts to the total_ordered ledger.
type TotalOrderedProjector struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewTotalOrderedProjector(db *gorm.DB, genID *snowflake.Node) *TotalOrderedProjector {
	return &TotalOrderedProjector{db: db, genID: genID}
}

func (p *TotalOrderedProjector) Project(ctx context.Context, evt event.Event) error {
	payload, ok := evt.(event.ProductOrdered)
	if !ok {
		return nil
	}
	return p.db.WithContext(ctx).Create(&domain.TotalOrdered{
		ID:         p.genID.Generate(),
		Amount:     payload.Amount,
		OccurredOn: payload.OccurredOn,
	}).Error
}
