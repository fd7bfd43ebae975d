package projection

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tally/internal/projection/domain"
	"github.com/smallbiznis/tally/internal/projection/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// NewProjectors builds the fixed projector list. The handler runs them in
// exactly this order.
func NewProjectors(db *gorm.DB, genID *snowflake.Node) []domain.Projector {
	return []domain.Projector{
		service.NewTotalOrderedProjector(db, genID),
		service.NewTotalAuthorizedProjector(db, genID),
		service.NewTotalCollectedProjector(db, genID),
	}
}

var Module = fx.Module("projection.service",
	fx.Provide(NewProjectors),
)
