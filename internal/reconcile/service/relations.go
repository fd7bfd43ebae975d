package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tally/internal/reconcile/domain"
	"github.com/smallbiznis/tally/pkg/db"
	"gorm.io/gorm"
)

// errMergeRace marks a merge that lost a check-then-act race on the
// relations table: either the guarded fill affected no rows, or an insert
// hit a partial unique index. The engine retries the whole transaction.
var errMergeRace = errors.New("relation merge race")

type relationRepository struct {
	genID *snowflake.Node
}

// NewRelationRepository builds the correlation store over the relations table.
func NewRelationRepository(genID *snowflake.Node) domain.Repository {
	return &relationRepository{genID: genID}
}

func (r *relationRepository) FindByField(ctx context.Context, tx *gorm.DB, field domain.RelationField, value string) (*domain.Relation, error) {
	switch field {
	case domain.FieldTransactionID, domain.FieldOrderID, domain.FieldPaymentID:
	default:
		return nil, fmt.Errorf("unknown relation field %q", field)
	}

	var rel domain.Relation
	err := tx.WithContext(ctx).Where(fmt.Sprintf("%s = ?", field), value).First(&rel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *relationRepository) Merge(ctx context.Context, tx *gorm.DB, pair domain.IdentifierPair) (*domain.Relation, error) {
	recA, err := r.FindByField(ctx, tx, pair.A, pair.AValue)
	if err != nil {
		return nil, err
	}
	if recA != nil {
		if cur := recA.Field(pair.B); cur != nil {
			if *cur == pair.BValue {
				return recA, nil
			}
			// recA is linked to a different value for pair.B; fall through,
			// the unique indexes veto any second booking of pair.AValue.
		} else {
			return r.fill(ctx, tx, *recA, pair.B, pair.BValue)
		}
	}

	recB, err := r.FindByField(ctx, tx, pair.B, pair.BValue)
	if err != nil {
		return nil, err
	}
	if recB != nil {
		if cur := recB.Field(pair.A); cur != nil {
			if *cur == pair.AValue {
				return recB, nil
			}
		} else if recA == nil {
			return r.fill(ctx, tx, *recB, pair.A, pair.AValue)
		}
	}

	rel := &domain.Relation{
		ID:     r.genID.Generate(),
		Status: domain.RelationStatusPartial,
	}
	setField(rel, pair.A, pair.AValue)
	setField(rel, pair.B, pair.BValue)
	if err := tx.WithContext(ctx).Create(rel).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, errMergeRace
		}
		return nil, err
	}
	return rel, nil
}

// fill sets one null identifier column on an existing relation. The UPDATE is
// guarded on the column still being null so two writers cannot both claim it.
func (r *relationRepository) fill(ctx context.Context, tx *gorm.DB, rel domain.Relation, field domain.RelationField, value string) (*domain.Relation, error) {
	updated := rel
	setField(&updated, field, value)
	updated.Status = domain.RelationStatusPartial
	if updated.Complete() {
		updated.Status = domain.RelationStatusComplete
	}

	res := tx.WithContext(ctx).Exec(
		fmt.Sprintf(`UPDATE relations SET %s = ?, status = ? WHERE id = ? AND %s IS NULL`, field, field),
		value, updated.Status, rel.ID,
	)
	if res.Error != nil {
		if db.IsDuplicateKeyErr(res.Error) {
			return nil, errMergeRace
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errMergeRace
	}
	return &updated, nil
}

func setField(rel *domain.Relation, field domain.RelationField, value string) {
	switch field {
	case domain.FieldTransactionID:
		rel.TransactionID = &value
	case domain.FieldOrderID:
		rel.OrderID = &value
	case domain.FieldPaymentID:
		rel.PaymentID = &value
	}
}
