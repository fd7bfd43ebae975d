package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tally/internal/config"
	"github.com/smallbiznis/tally/internal/handler"
	"github.com/smallbiznis/tally/internal/logger"
	"github.com/smallbiznis/tally/internal/metrics"
	"github.com/smallbiznis/tally/internal/migration"
	"github.com/smallbiznis/tally/internal/projection"
	"github.com/smallbiznis/tally/internal/reconcile"
	"github.com/smallbiznis/tally/internal/server"
	"github.com/smallbiznis/tally/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		metrics.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		// Functional domains
		projection.Module,
		reconcile.Module,
		handler.Module,
		server.Module,
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
