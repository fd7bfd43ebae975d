package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type totalsResponse struct {
	TotalOrdered    float64 `json:"total_ordered"`
	TotalAuthorized float64 `json:"total_authorized"`
	TotalCollected  float64 `json:"total_collected"`
}

// Totals returns the running sum of each aggregate ledger. The sums are
// derived on read; the ledgers store only the individual rows.
func (s *Server) Totals(c *gin.Context) {
	ctx := c.Request.Context()

	var out totalsResponse
	for _, ledger := range []struct {
		table string
		dst   *float64
	}{
		{"total_ordered", &out.TotalOrdered},
		{"total_authorized", &out.TotalAuthorized},
		{"total_collected", &out.TotalCollected},
	} {
		if err := s.db.WithContext(ctx).
			Table(ledger.table).
			Select("COALESCE(SUM(amount), 0)").
			Scan(ledger.dst).Error; err != nil {
			abortWithError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, out)
}
