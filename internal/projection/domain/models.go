package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TotalOrdered is one row of the ordered-amount ledger. The running total is
// derived with SUM(amount), never stored.
type TotalOrdered struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	Amount     float64      `gorm:"not null"`
	OccurredOn time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (TotalOrdered) TableName() string { return "total_ordered" }

// TotalAuthorized is one row of the authorized-amount ledger.
type TotalAuthorized struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	Amount     float64      `gorm:"not null"`
	OccurredOn time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (TotalAuthorized) TableName() string { return "total_authorized" }

// TotalCollected is one row of the collected-amount ledger.
type TotalCollected struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	Amount     float64      `gorm:"not null"`
	OccurredOn time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (TotalCollected) TableName() string { return "total_collected" }
