package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Penalty rule conditions consulted by the scan processor and reconciler.
const (
	ConditionLate   = "late"
	ConditionAbsent = "absent"
)

// PenaltyRule maps a condition to the amount charged per infraction.
type PenaltyRule struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	Condition string          `json:"condition" gorm:"size:30;uniqueIndex;not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
