package reconcile

import (
	"github.com/smallbiznis/tally/internal/reconcile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reconcile.service",
	fx.Provide(service.NewRelationRepository),
	fx.Provide(service.NewEngine),
)
