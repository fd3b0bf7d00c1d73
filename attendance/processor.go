package attendance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jan112121/attendance-backend/models"
	"github.com/jan112121/attendance-backend/notify"
	"github.com/jan112121/attendance-backend/penalty"
	"github.com/jan112121/attendance-backend/session"
)

// FeedPublisher receives committed scan results for live dashboards.
type FeedPublisher interface {
	PublishScan(res *Result)
}

// Result is what the kiosk shows after a scan. Mirrors the attendance
// list's display fields.
type Result struct {
	Ref     string `json:"ref"`
	Message string `json:"message"`

	Student StudentInfo `json:"student"`

	Session string  `json:"session"`
	Status  string  `json:"status"`
	Date    string  `json:"date"`
	TimeIn  *string `json:"time_in"`
	TimeOut *string `json:"time_out"`
}

type StudentInfo struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	StudentNumber string `json:"student_number"`
	Grade         string `json:"grade"`
	Section       string `json:"section"`
}

// Processor is the scan state machine: one call per badge scan, deciding
// time-in vs time-out, late vs present, penalties and notifications.
type Processor struct {
	db       *gorm.DB
	store    *Store
	resolver *session.Resolver
	ledger   *penalty.Ledger
	rules    *penalty.Rules
	notify   *notify.Service
	feed     FeedPublisher // optional
}

func NewProcessor(db *gorm.DB, store *Store, resolver *session.Resolver, ledger *penalty.Ledger, rules *penalty.Rules, n *notify.Service, feed FeedPublisher) *Processor {
	return &Processor{db: db, store: store, resolver: resolver, ledger: ledger, rules: rules, notify: n, feed: feed}
}

// ProcessScan handles one scan event at the given instant. Business
// rejections come back as the sentinel errors in errors.go.
func (p *Processor) ProcessScan(ctx context.Context, scanCode string, now time.Time) (*Result, error) {
	var student models.Student
	err := p.db.WithContext(ctx).
		Where("scan_code = ? AND active = ?", scanCode, true).
		First(&student).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	win, open := p.resolver.Resolve(now)
	if !open {
		return nil, ErrOutOfWindow
	}
	date := p.resolver.Date(now)

	rec, err := p.store.Find(ctx, student.ID, date, win.Session)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if rec == nil {
		return p.timeIn(ctx, &student, win, date, now)
	}
	if rec.TimeOut == nil {
		return p.timeOut(ctx, &student, rec, win, date, now)
	}
	return nil, ErrAlreadyCompleted
}

func (p *Processor) timeIn(ctx context.Context, student *models.Student, win session.Window, date string, now time.Time) (*Result, error) {
	status := models.StatusPresent
	if !now.Before(win.LateAfter) {
		status = models.StatusLate
	}
	clock := p.resolver.Clock(now)

	rec := &models.Attendance{
		StudentID: student.ID,
		Date:      date,
		Session:   win.Session,
		TimeIn:    &clock,
		Status:    status,
	}
	if err := p.store.CreateTimeIn(ctx, rec); err != nil {
		if errors.Is(err, ErrConflict) {
			// Another scan created the record first; this one becomes the
			// time-out attempt.
			existing, ferr := p.store.Find(ctx, student.ID, date, win.Session)
			if ferr != nil || existing == nil {
				return nil, ErrUnavailable
			}
			if existing.TimeOut != nil {
				return nil, ErrAlreadyCompleted
			}
			return p.timeOut(ctx, student, existing, win, date, now)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if status == models.StatusLate {
		amount := p.rules.AmountFor(ctx, models.ConditionLate)
		if err := p.ledger.Accrue(ctx, student.ID, models.ReasonLateArrival, amount); err != nil {
			return nil, fmt.Errorf("%w: late penalty: %v", ErrUnavailable, err)
		}
	}

	tplKey := models.TemplatePresent
	if status == models.StatusLate {
		tplKey = models.TemplateLate
	}
	p.sendScanMail(ctx, tplKey, student, win.Session, date, clock)

	res := p.result(student, rec, fmt.Sprintf("Time-in recorded for %s session (%s)", win.Session, status))
	p.publish(res)
	return res, nil
}

func (p *Processor) timeOut(ctx context.Context, student *models.Student, rec *models.Attendance, win session.Window, date string, now time.Time) (*Result, error) {
	clock := p.resolver.Clock(now)

	if now.Before(win.EarliestOut) {
		// Rejected, nothing mutated; the guardian still hears about the attempt.
		p.sendScanMail(ctx, models.TemplateEarlyTimeOut, student, win.Session, date, clock)
		return nil, ErrTooEarly
	}

	if err := p.store.SetTimeOut(ctx, rec.ID, clock); err != nil {
		if errors.Is(err, ErrConflict) {
			// Concurrent scan closed it already.
			return nil, ErrAlreadyCompleted
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	rec.TimeOut = &clock

	p.sendScanMail(ctx, models.TemplateTimeOut, student, win.Session, date, clock)

	res := p.result(student, rec, fmt.Sprintf("Time-out recorded for %s session", win.Session))
	p.publish(res)
	return res, nil
}

// sendScanMail is best-effort: attendance state is already committed, so
// delivery problems only get logged.
func (p *Processor) sendScanMail(ctx context.Context, tplKey string, student *models.Student, sess, date, clock string) {
	err := p.notify.SendTemplate(ctx, tplKey, student.NotifyEmail(), map[string]string{
		"student_name": student.FullName(),
		"session":      sess,
		"date":         date,
		"time":         clock,
	})
	if err != nil {
		log.Printf("[scan] notification %s for student %d failed: %v", tplKey, student.ID, err)
	}
}

func (p *Processor) result(student *models.Student, rec *models.Attendance, msg string) *Result {
	return &Result{
		Ref:     uuid.NewString(),
		Message: msg,
		Student: StudentInfo{
			ID:            student.ID,
			Name:          student.FullName(),
			StudentNumber: student.StudentNumber,
			Grade:         student.Grade,
			Section:       student.Section,
		},
		Session: rec.Session,
		Status:  rec.Status,
		Date:    rec.Date,
		TimeIn:  rec.TimeIn,
		TimeOut: rec.TimeOut,
	}
}

func (p *Processor) publish(res *Result) {
	if p.feed != nil {
		p.feed.PublishScan(res)
	}
}
