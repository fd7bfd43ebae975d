package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tally/internal/event"
	"github.com/smallbiznis/tally/internal/projection/domain"
	"gorm.io/gorm"
)

// TotalCollectedProjector appends bank transaction amounts to the
// total_collected ledger. It keys off BankTransactionIssued, not
// PaymentCollected: money is counted as collected once it lands on the
// bank account.
type TotalCollectedProjector struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewTotalCollectedProjector(db *gorm.DB, genID *snowflake.Node) *TotalCollectedProjector {
	return &TotalCollectedProjector{db: db, genID: genID}
}

func (p *TotalCollectedProjector) Project(ctx context.Context, evt event.Event) error {
	payload, ok := evt.(event.BankTransactionIssued)
	if !ok {
		return nil
	}
	return p.db.WithContext(ctx).Create(&domain.TotalCollected{
		ID:         p.genID.Generate(),
		Amount:     payload.Amount,
		OccurredOn: payload.OccurredOn,
	}).Error
}
