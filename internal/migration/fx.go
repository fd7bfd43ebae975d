package migration

import (
	"github.com/smallbiznis/tally/internal/config"
	projectiondomain "github.com/smallbiznis/tally/internal/projection/domain"
	reconciledomain "github.com/smallbiznis/tally/internal/reconcile/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// sqlite deployments rely on the model tags, including the partial
		// unique indexes on the relations table.
		return conn.AutoMigrate(
			&projectiondomain.TotalOrdered{},
			&projectiondomain.TotalAuthorized{},
			&projectiondomain.TotalCollected{},
			&reconciledomain.BankTransaction{},
			&reconciledomain.ProductOrder{},
			&reconciledomain.PaymentAuthorization{},
			&reconciledomain.PaymentCollection{},
			&reconciledomain.Relation{},
		)
	}),
)
