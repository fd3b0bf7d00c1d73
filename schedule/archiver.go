package schedule

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jan112121/attendance-backend/models"
)

// Archiver moves a finished day's records into attendance_archive and
// clears the live table for the next day.
type Archiver struct {
	db *gorm.DB
}

func NewArchiver(db *gorm.DB) *Archiver { return &Archiver{db: db} }

// Run archives every record for date belonging to an active student. Each
// record moves in its own transaction with an existence check on the
// archive key, so a rerun (or a crash mid-batch) archives nothing twice.
func (a *Archiver) Run(ctx context.Context, date string) (int, error) {
	var recs []models.Attendance
	err := a.db.WithContext(ctx).
		Joins("JOIN students s ON s.id = attendance.student_id").
		Where("attendance.date = ? AND s.active = ?", date, true).
		Find(&recs).Error
	if err != nil {
		return 0, fmt.Errorf("load records for %s: %w", date, err)
	}

	archived := 0
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return archived, err
		}
		err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var cnt int64
			if err := tx.Model(&models.AttendanceArchive{}).
				Where("student_id = ? AND date = ? AND session = ?", rec.StudentID, rec.Date, rec.Session).
				Count(&cnt).Error; err != nil {
				return err
			}
			if cnt == 0 {
				entry := models.AttendanceArchive{
					StudentID:  rec.StudentID,
					Date:       rec.Date,
					Session:    rec.Session,
					TimeIn:     rec.TimeIn,
					TimeOut:    rec.TimeOut,
					Status:     rec.Status,
					RecordedAt: rec.CreatedAt,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&models.Attendance{}, rec.ID).Error
		})
		if err != nil {
			return archived, fmt.Errorf("archive record %d: %w", rec.ID, err)
		}
		archived++
	}

	report := models.ArchiveReport{
		ID:       uuid.NewString(),
		Date:     date,
		Archived: archived,
		RanAt:    time.Now(),
	}
	if err := a.db.WithContext(ctx).Create(&report).Error; err != nil {
		log.Printf("[archive] report write for %s failed: %v", date, err)
	}

	log.Printf("[archive] %s: %d records archived", date, archived)
	return archived, nil
}
