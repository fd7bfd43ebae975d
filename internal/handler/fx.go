package handler

import "go.uber.org/fx"

var Module = fx.Module("event.handler",
	fx.Provide(New),
)
