package metrics

import (
	"github.com/smallbiznis/tally/internal/config"
	"go.uber.org/fx"
)

func provideConfig(cfg config.Config) Config {
	return Config{
		Enabled:          cfg.OTLPEnabled,
		ExporterEndpoint: cfg.OTLPEndpoint,
		ExporterProtocol: cfg.OTLPProtocol,
		ServiceName:      cfg.AppName,
	}
}

var Module = fx.Module("metrics",
	fx.Provide(
		provideConfig,
		NewProvider,
		New,
	),
)
