package models

import "time"

// Template keys used by the attendance flows.
const (
	TemplatePresent      = "present_notification"
	TemplateLate         = "late_notification"
	TemplateTimeOut      = "time_out_notification"
	TemplateEarlyTimeOut = "early_timeout_notification"
	TemplateAbsent       = "absent_notification"
)

// EmailTemplate holds subject/body with {{key}} placeholders, editable by admins.
type EmailTemplate struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Key     string `json:"key" gorm:"size:60;uniqueIndex;not null"`
	Title   string `json:"title" gorm:"size:120;not null"`
	Subject string `json:"subject" gorm:"type:text;not null"`
	Body    string `json:"body" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
