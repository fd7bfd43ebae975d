package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/tally/internal/event"
	"github.com/smallbiznis/tally/internal/projection/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

func newTestDB(t *testing.T) (*gorm.DB, *snowflake.Node) {
	t.Helper()
	dsn := fmt.Sprintf("file:projection_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.TotalOrdered{},
		&domain.TotalAuthorized{},
		&domain.TotalCollected{},
	))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return conn, node
}

func ledgerSum(t *testing.T, conn *gorm.DB, table string) float64 {
	t.Helper()
	var sum float64
	require.NoError(t, conn.Table(table).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error)
	return sum
}

func TestTotalOrderedProjector(t *testing.T) {
	conn, node := newTestDB(t)
	projector := NewTotalOrderedProjector(conn, node)

	require.NoError(t, projector.Project(context.Background(), event.ProductOrdered{
		OrderID: "ord_1", Amount: 150, EventType: event.EventTypeIssuance,
		InstallmentType: event.InstallmentTypeMonthly, OccurredOn: time.Now().UTC(),
	}))
	assert.Equal(t, float64(150), ledgerSum(t, conn, "total_ordered"))

	// Any other variant is a no-op success.
	require.NoError(t, projector.Project(context.Background(), event.PaymentAuthorized{
		OrderID: "ord_1", PaymentID: "pay_1", Amount: 150, OccurredOn: time.Now().UTC(),
	}))
	assert.Equal(t, float64(150), ledgerSum(t, conn, "total_ordered"))
}

func TestTotalAuthorizedProjector(t *testing.T) {
	conn, node := newTestDB(t)
	projector := NewTotalAuthorizedProjector(conn, node)

	require.NoError(t, projector.Project(context.Background(), event.PaymentAuthorized{
		OrderID: "ord_1", PaymentID: "pay_1", Amount: 75, OccurredOn: time.Now().UTC(),
	}))
	require.NoError(t, projector.Project(context.Background(), event.PaymentAuthorized{
		OrderID: "ord_2", PaymentID: "pay_2", Amount: 25, OccurredOn: time.Now().UTC(),
	}))
	assert.Equal(t, float64(100), ledgerSum(t, conn, "total_authorized"))

	require.NoError(t, projector.Project(context.Background(), event.BankTransactionIssued{
		TransactionID: "tran_1", Amount: 500, OccurredOn: time.Now().UTC(),
	}))
	assert.Equal(t, float64(100), ledgerSum(t, conn, "total_authorized"))
}

func TestTotalCollectedProjectorKeysOffBankTransactions(t *testing.T) {
	conn, node := newTestDB(t)
	projector := NewTotalCollectedProjector(conn, node)

	// PaymentCollected is not what this ledger counts.
	require.NoError(t, projector.Project(context.Background(), event.PaymentCollected{
		TransactionID: "tran_1", PaymentID: "pay_1", Amount: 200, OccurredOn: time.Now().UTC(),
	}))
	assert.Zero(t, ledgerSum(t, conn, "total_collected"))

	require.NoError(t, projector.Project(context.Background(), event.BankTransactionIssued{
		TransactionID: "tran_1", Amount: 200, OccurredOn: time.Now().UTC(),
	}))
	assert.Equal(t, float64(200), ledgerSum(t, conn, "total_collected"))
}
