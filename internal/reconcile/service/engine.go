package service

import (
	"context"
	"errors"

	"github.com/smallbiznis/tally/internal/event"
	"github.com/smallbiznis/tally/internal/metrics"
	"github.com/smallbiznis/tally/internal/reconcile/domain"
	"github.com/smallbiznis/tally/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// mergeAttempts bounds retries of a reconcile transaction that lost a merge
// race. A pair that still cannot be merged afterwards contradicts an
// existing relation.
const mergeAttempts = 3

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Relations domain.Repository
	Metrics   *metrics.Metrics `optional:"true"`
}

type Engine struct {
	db        *gorm.DB
	log       *zap.Logger
	relations domain.Repository
	metrics   *metrics.Metrics
}

// NewEngine builds the reconciliation engine.
func NewEngine(p Params) domain.Service {
	return &Engine{
		db:        p.DB,
		log:       p.Log.Named("reconcile.engine"),
		relations: p.Relations,
		metrics:   p.Metrics,
	}
}

// Reconcile durably records the event's fact, folds its identifier link into
// the relation store and, once a relation is complete and every referenced
// fact is present, trues up the two aggregate accumulators. Fact insert,
// merge and true-up commit together or not at all.
func (e *Engine) Reconcile(ctx context.Context, evt event.Event) error {
	var err error
	for attempt := 0; attempt < mergeAttempts; attempt++ {
		err = e.reconcileOnce(ctx, evt)
		if !errors.Is(err, errMergeRace) {
			return err
		}
	}
	return domain.ErrRelationConflict
}

func (e *Engine) reconcileOnce(ctx context.Context, evt event.Event) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch p := evt.(type) {
		case event.BankTransactionIssued:
			fact := &domain.BankTransaction{
				TransactionID: p.TransactionID,
				Amount:        p.Amount,
				OccurredOn:    p.OccurredOn,
			}
			if err := insertFact(ctx, tx, fact); err != nil {
				return err
			}
			rel, err := e.relations.FindByField(ctx, tx, domain.FieldTransactionID, p.TransactionID)
			if err != nil {
				return err
			}
			return e.settle(ctx, tx, rel)

		case event.ProductOrdered:
			fact := &domain.ProductOrder{
				OrderID:         p.OrderID,
				Amount:          p.Amount,
				OccurredOn:      p.OccurredOn,
				InsuranceCode:   p.InsuranceCode,
				InstallmentType: p.InstallmentType,
				EventType:       p.EventType,
			}
			if err := insertFact(ctx, tx, fact); err != nil {
				return err
			}
			rel, err := e.relations.FindByField(ctx, tx, domain.FieldOrderID, p.OrderID)
			if err != nil {
				return err
			}
			return e.settle(ctx, tx, rel)

		case event.PaymentAuthorized:
			fact := &domain.PaymentAuthorization{
				OrderID:    p.OrderID,
				PaymentID:  p.PaymentID,
				Amount:     p.Amount,
				OccurredOn: p.OccurredOn,
			}
			if err := insertFact(ctx, tx, fact); err != nil {
				return err
			}
			rel, err := e.relations.Merge(ctx, tx, domain.IdentifierPair{
				A: domain.FieldOrderID, AValue: p.OrderID,
				B: domain.FieldPaymentID, BValue: p.PaymentID,
			})
			if err != nil {
				return err
			}
			return e.settle(ctx, tx, rel)

		case event.PaymentCollected:
			fact := &domain.PaymentCollection{
				TransactionID: p.TransactionID,
				PaymentID:     p.PaymentID,
				Amount:        p.Amount,
				OccurredOn:    p.OccurredOn,
			}
			if err := insertFact(ctx, tx, fact); err != nil {
				return err
			}
			rel, err := e.relations.Merge(ctx, tx, domain.IdentifierPair{
				A: domain.FieldTransactionID, AValue: p.TransactionID,
				B: domain.FieldPaymentID, BValue: p.PaymentID,
			})
			if err != nil {
				return err
			}
			return e.settle(ctx, tx, rel)

		default:
			return domain.ErrUnknownEvent
		}
	})
}

// settle runs the aggregate true-up for a complete relation. It requires
// every referenced fact to be present already; with any of them missing the
// relation stays complete and a later event retriggers the settlement. The
// complete -> reconciled transition is guarded so the accumulators are
// incremented exactly once per relation.
func (e *Engine) settle(ctx context.Context, tx *gorm.DB, rel *domain.Relation) error {
	if rel == nil || !rel.Complete() || rel.Status == domain.RelationStatusReconciled {
		return nil
	}

	var order domain.ProductOrder
	err := tx.WithContext(ctx).Where("order_id = ?", *rel.OrderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var collection domain.PaymentCollection
	err = tx.WithContext(ctx).
		Where("transaction_id = ? AND payment_id = ?", *rel.TransactionID, *rel.PaymentID).
		First(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var issued int64
	if err := tx.WithContext(ctx).
		Model(&domain.BankTransaction{}).
		Where("transaction_id = ?", *rel.TransactionID).
		Count(&issued).Error; err != nil {
		return err
	}
	if issued == 0 {
		return nil
	}

	res := tx.WithContext(ctx).Exec(
		`UPDATE relations SET status = ? WHERE id = ? AND status = ?`,
		domain.RelationStatusReconciled, rel.ID, domain.RelationStatusComplete,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}

	if err := tx.WithContext(ctx).Exec(
		`UPDATE bank_transactions SET ordered_amount = ordered_amount + ? WHERE transaction_id = ?`,
		order.Amount, *rel.TransactionID,
	).Error; err != nil {
		return err
	}

	if err := tx.WithContext(ctx).Exec(
		`UPDATE product_orders SET collected_amount = collected_amount + ? WHERE order_id = ?`,
		collection.Amount, *rel.OrderID,
	).Error; err != nil {
		return err
	}

	e.log.Debug("relation reconciled",
		zap.String("transaction_id", *rel.TransactionID),
		zap.String("order_id", *rel.OrderID),
		zap.String("payment_id", *rel.PaymentID),
	)
	e.metrics.RecordRelationReconciled(ctx)
	return nil
}

func insertFact(ctx context.Context, tx *gorm.DB, fact any) error {
	if err := tx.WithContext(ctx).Create(fact).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrDuplicateKey
		}
		return err
	}
	return nil
}
