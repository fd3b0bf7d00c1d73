package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PenaltyUnpaid = "unpaid"
	PenaltyPaid   = "paid"

	ReasonLateArrival = "Late Arrival"
	ReasonAbsent      = "Absent"
)

// Penalty is a monetary charge against a student. At most one unpaid row
// exists per (student, reason); repeat infractions add to its amount.
type Penalty struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	StudentID uint            `json:"student_id" gorm:"index;not null"`
	Reason    string          `json:"reason" gorm:"size:60;not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Status    string          `json:"status" gorm:"size:10;not null;default:unpaid"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
}
