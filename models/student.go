package models

import "time"

// Student is the badge directory: one scan code per student, plus the
// guardian contact used for attendance notifications.
type Student struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	StudentNumber string    `json:"student_number" gorm:"size:20;uniqueIndex;not null"`
	ScanCode      string    `json:"scan_code" gorm:"size:64;uniqueIndex;not null"`
	FirstName     string    `json:"first_name" gorm:"size:50;not null"`
	LastName      string    `json:"last_name" gorm:"size:50;not null"`
	Grade         string    `json:"grade" gorm:"size:20;not null"`
	Section       string    `json:"section" gorm:"size:30;not null"`
	Email         string    `json:"email" gorm:"size:120"`          // student's own address, notification fallback
	GuardianEmail string    `json:"guardian_email" gorm:"size:120"` // preferred notification target
	Active        bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// NotifyEmail picks the guardian address, falling back to the student's own.
func (s *Student) NotifyEmail() string {
	if s.GuardianEmail != "" {
		return s.GuardianEmail
	}
	return s.Email
}
