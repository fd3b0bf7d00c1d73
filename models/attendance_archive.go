package models

import "time"

// AttendanceArchive is the immutable history a day's records move into.
// Rows are append-only; the same unique key keeps re-archiving a no-op.
type AttendanceArchive struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	StudentID uint    `json:"student_id" gorm:"not null;uniqueIndex:idx_archive_key,priority:1"`
	Date      string  `json:"date" gorm:"size:10;not null;uniqueIndex:idx_archive_key,priority:2"`
	Session   string  `json:"session" gorm:"size:10;not null;uniqueIndex:idx_archive_key,priority:3"`
	TimeIn    *string `json:"time_in" gorm:"size:8"`
	TimeOut   *string `json:"time_out" gorm:"size:8"`
	Status    string  `json:"status" gorm:"size:10;not null"`

	RecordedAt time.Time `json:"recorded_at"` // created_at of the live record
	CreatedAt  time.Time `json:"created_at"`
}

func (AttendanceArchive) TableName() string { return "attendance_archive" }
