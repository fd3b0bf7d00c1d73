package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jan112121/attendance-backend/config"
	"github.com/jan112121/attendance-backend/models"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	// TranslateError so unique-key races surface as gorm.ErrDuplicatedKey.
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	DB = db

	if err := Migrate(DB); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}
	Seed(DB)
}

// Migrate creates/updates the schema. Split out so tests can run it
// against their own database handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Attendance{},
		&models.AttendanceArchive{},
		&models.Penalty{},
		&models.PenaltyRule{},
		&models.EmailTemplate{},
		&models.ArchiveReport{},
	)
}

// Seed inserts the default email templates once; it never overwrites
// admin-edited rows.
func Seed(db *gorm.DB) {
	for _, t := range defaultTemplates {
		var cnt int64
		db.Model(&models.EmailTemplate{}).Where("key = ?", t.Key).Count(&cnt)
		if cnt == 0 {
			if err := db.Create(&t).Error; err != nil {
				log.Printf("[seed] template %s: %v", t.Key, err)
			}
		}
	}
}

var defaultTemplates = []models.EmailTemplate{
	{
		Key:     models.TemplatePresent,
		Title:   "Time-in (present)",
		Subject: "Attendance: {{student_name}} timed in",
		Body: "<p>Dear Parent/Guardian,</p>" +
			"<p><strong>{{student_name}}</strong> timed in for the <strong>{{session}}</strong> session on {{date}} at {{time}}.</p>" +
			"<p>— K-12 Smart Attendance System</p>",
	},
	{
		Key:     models.TemplateLate,
		Title:   "Time-in (late)",
		Subject: "Late arrival: {{student_name}}",
		Body: "<p>Dear Parent/Guardian,</p>" +
			"<p><strong>{{student_name}}</strong> arrived <strong>LATE</strong> for the <strong>{{session}}</strong> session on {{date}} at {{time}}.</p>" +
			"<p>A late-arrival penalty has been recorded.</p>" +
			"<p>— K-12 Smart Attendance System</p>",
	},
	{
		Key:     models.TemplateTimeOut,
		Title:   "Time-out",
		Subject: "Attendance: {{student_name}} timed out",
		Body: "<p>Dear Parent/Guardian,</p>" +
			"<p><strong>{{student_name}}</strong> timed out of the <strong>{{session}}</strong> session on {{date}} at {{time}}.</p>" +
			"<p>— K-12 Smart Attendance System</p>",
	},
	{
		Key:     models.TemplateEarlyTimeOut,
		Title:   "Early time-out attempt",
		Subject: "Early time-out attempt: {{student_name}}",
		Body: "<p>Dear Parent/Guardian,</p>" +
			"<p><strong>{{student_name}}</strong> attempted to scan out of the <strong>{{session}}</strong> session on {{date}} at {{time}}, before the session's earliest time-out.</p>" +
			"<p>— K-12 Smart Attendance System</p>",
	},
	{
		Key:     models.TemplateAbsent,
		Title:   "Absence",
		Subject: "Absence Notification for {{student_name}}",
		Body: "<p>Dear Parent/Guardian,</p>" +
			"<p>This is to inform you that <strong>{{student_name}}</strong> was marked <strong>ABSENT</strong> during the <strong>{{session}}</strong> session on <strong>{{date}}</strong>.</p>" +
			"<p>If this is incorrect, please contact the school administration.</p>" +
			"<p>— K-12 Smart Attendance System</p>",
	},
}
