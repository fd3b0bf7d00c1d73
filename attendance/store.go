package attendance

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/jan112121/attendance-backend/models"
)

// Store owns every mutation of attendance rows. The scan processor, the
// reconciler and the handlers all go through it so one atomic path guards
// the (student, date, session) key.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// Find returns the record for the key, or nil when none exists.
func (s *Store) Find(ctx context.Context, studentID uint, date, session string) (*models.Attendance, error) {
	var rec models.Attendance
	err := s.db.WithContext(ctx).
		Where("student_id = ? AND date = ? AND session = ?", studentID, date, session).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// CreateTimeIn inserts a fresh open record. A duplicate key means another
// scan for the same key got there first; callers treat that as "record
// already exists" and re-read.
func (s *Store) CreateTimeIn(ctx context.Context, rec *models.Attendance) error {
	return s.create(ctx, rec)
}

// CreateAbsent inserts the reconciler's synthetic terminal record. The same
// unique key makes reconciler re-runs no-ops (ErrConflict).
func (s *Store) CreateAbsent(ctx context.Context, rec *models.Attendance) error {
	return s.create(ctx, rec)
}

func (s *Store) create(ctx context.Context, rec *models.Attendance) error {
	err := s.db.WithContext(ctx).Create(rec).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

// SetTimeOut closes the record. The guard on time_out IS NULL makes the
// record terminal: a second close, concurrent or not, affects zero rows.
func (s *Store) SetTimeOut(ctx context.Context, recordID uint, timeOut string) error {
	res := s.db.WithContext(ctx).Model(&models.Attendance{}).
		Where("id = ? AND time_out IS NULL", recordID).
		Update("time_out", timeOut)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// ListForDate returns a day's records with students preloaded.
func (s *Store) ListForDate(ctx context.Context, date string) ([]models.Attendance, error) {
	var recs []models.Attendance
	err := s.db.WithContext(ctx).
		Preload("Student").
		Where("date = ?", date).
		Order("session ASC, time_in ASC, id ASC").
		Find(&recs).Error
	return recs, err
}

// RecordedStudentIDs returns which students already have a record for the
// key, as a set.
func (s *Store) RecordedStudentIDs(ctx context.Context, date, session string) (map[uint]struct{}, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Attendance{}).
		Where("date = ? AND session = ?", date, session).
		Pluck("student_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// OpenRecords returns records with a time-in but no time-out yet.
func (s *Store) OpenRecords(ctx context.Context, date, session string) ([]models.Attendance, error) {
	var recs []models.Attendance
	err := s.db.WithContext(ctx).
		Where("date = ? AND session = ? AND time_in IS NOT NULL AND time_out IS NULL", date, session).
		Find(&recs).Error
	return recs, err
}
