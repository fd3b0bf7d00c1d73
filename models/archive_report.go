package models

import "time"

// ArchiveReport is the audit row written after each archiver run.
type ArchiveReport struct {
	ID       string    `json:"id" gorm:"primaryKey;size:36"`
	Date     string    `json:"date" gorm:"size:10;not null;index"`
	Archived int       `json:"archived" gorm:"not null"`
	RanAt    time.Time `json:"ran_at" gorm:"not null"`
}
