package models

import "time"

// Attendance session/status values.
const (
	SessionMorning   = "morning"
	SessionAfternoon = "afternoon"

	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
)

// Attendance is one student's record for one session of one day.
// The composite unique index is what serializes concurrent scans: the
// second time-in for the same key fails the insert instead of duplicating.
type Attendance struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	StudentID uint    `json:"student_id" gorm:"not null;uniqueIndex:idx_attendance_key,priority:1"`
	Date      string  `json:"date" gorm:"size:10;not null;uniqueIndex:idx_attendance_key,priority:2"` // YYYY-MM-DD
	Session   string  `json:"session" gorm:"size:10;not null;uniqueIndex:idx_attendance_key,priority:3"`
	TimeIn    *string `json:"time_in" gorm:"size:8"`  // HH:MM:SS
	TimeOut   *string `json:"time_out" gorm:"size:8"` // HH:MM:SS, terminal once set
	Status    string  `json:"status" gorm:"size:10;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

func (Attendance) TableName() string { return "attendance" }
