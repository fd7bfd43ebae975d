package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tally/internal/config"
	"github.com/smallbiznis/tally/internal/event"
	"github.com/smallbiznis/tally/internal/handler"
	"github.com/smallbiznis/tally/internal/logger"
	"github.com/smallbiznis/tally/internal/metrics"
	"github.com/smallbiznis/tally/internal/migration"
	"github.com/smallbiznis/tally/internal/projection"
	"github.com/smallbiznis/tally/internal/reconcile"
	"github.com/smallbiznis/tally/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// loadgen drives synthetic correlated event quadruples through the handler
// for manual throughput measurement. It is a benchmarking tool, not part of
// the service.
func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		metrics.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		projection.Module,
		reconcile.Module,
		handler.Module,
		fx.Invoke(run),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func run(lc fx.Lifecycle, h *handler.Handler, log *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() { _ = shutdowner.Shutdown() }()
				for _, batch := range []int{10, 100, 1000, 10000} {
					events := generate(batch)
					start := time.Now()
					for _, evt := range events {
						if err := h.Accept(context.Background(), evt); err != nil {
							log.Error("event rejected", zap.Error(err))
							return
						}
					}
					log.Info("batch handled",
						zap.Int("events", len(events)),
						zap.Duration("elapsed", time.Since(start)),
					)
				}
			}()
			return nil
		},
	})
}

// generate produces n correlated quadruples so every relation completes.
func generate(n int) []event.Event {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	events := make([]event.Event, 0, 4*n)
	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		id := rng.Int63()
		transactionID := fmt.Sprintf("t_%d", id)
		orderID := fmt.Sprintf("o_%d", id)
		paymentID := fmt.Sprintf("p_%d", id)
		events = append(events,
			event.ProductOrdered{
				OrderID:         orderID,
				Amount:          100,
				EventType:       event.EventTypeIssuance,
				InstallmentType: event.InstallmentTypeMonthly,
				InsuranceCode:   fmt.Sprintf("PRP%d", id),
				OccurredOn:      now,
			},
			event.PaymentAuthorized{
				OrderID:    orderID,
				PaymentID:  paymentID,
				Amount:     100,
				OccurredOn: now,
			},
			event.PaymentCollected{
				TransactionID: transactionID,
				PaymentID:     paymentID,
				Amount:        100,
				OccurredOn:    now,
			},
			event.BankTransactionIssued{
				TransactionID: transactionID,
				Amount:        100,
				OccurredOn:    now,
			},
		)
	}
	return events
}
