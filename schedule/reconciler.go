// Package schedule holds the timed jobs: end-of-session reconciliation and
// the nightly archive, plus the cron runner that fires them.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/jan112121/attendance-backend/attendance"
	"github.com/jan112121/attendance-backend/models"
	"github.com/jan112121/attendance-backend/notify"
	"github.com/jan112121/attendance-backend/penalty"
	"github.com/jan112121/attendance-backend/session"
)

// ReconcileStats summarizes one sweep for logs and the manual-trigger API.
type ReconcileStats struct {
	Date    string `json:"date"`
	Session string `json:"session"`
	Absent  int    `json:"absent"`
	Closed  int    `json:"closed"`
}

// Reconciler finalizes a session after its window closes: silence becomes
// absence, open time-ins get auto-closed.
type Reconciler struct {
	db       *gorm.DB
	store    *attendance.Store
	ledger   *penalty.Ledger
	rules    *penalty.Rules
	notify   *notify.Service
	resolver *session.Resolver
}

func NewReconciler(db *gorm.DB, store *attendance.Store, ledger *penalty.Ledger, rules *penalty.Rules, n *notify.Service, resolver *session.Resolver) *Reconciler {
	return &Reconciler{db: db, store: store, ledger: ledger, rules: rules, notify: n, resolver: resolver}
}

// Run reconciles one (date, session). Safe to re-run: the attendance unique
// key turns duplicate absent inserts into skips, and skipped students accrue
// no second penalty.
func (r *Reconciler) Run(ctx context.Context, date, sess string, triggeredAt time.Time) (ReconcileStats, error) {
	stats := ReconcileStats{Date: date, Session: sess}
	if sess != models.SessionMorning && sess != models.SessionAfternoon {
		return stats, fmt.Errorf("unknown session %q", sess)
	}
	clock := r.resolver.Clock(triggeredAt)

	var students []models.Student
	if err := r.db.WithContext(ctx).Where("active = ?", true).Find(&students).Error; err != nil {
		return stats, fmt.Errorf("load students: %w", err)
	}

	recorded, err := r.store.RecordedStudentIDs(ctx, date, sess)
	if err != nil {
		return stats, fmt.Errorf("load recorded ids: %w", err)
	}

	for _, student := range students {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if _, ok := recorded[student.ID]; ok {
			continue
		}

		rec := &models.Attendance{
			StudentID: student.ID,
			Date:      date,
			Session:   sess,
			TimeIn:    &clock,
			TimeOut:   &clock,
			Status:    models.StatusAbsent,
		}
		if err := r.store.CreateAbsent(ctx, rec); err != nil {
			if errors.Is(err, attendance.ErrConflict) {
				// Scanned (or already reconciled) between our snapshot and now.
				continue
			}
			return stats, fmt.Errorf("mark absent student %d: %w", student.ID, err)
		}
		stats.Absent++

		amount := r.rules.AmountFor(ctx, models.ConditionAbsent)
		if err := r.ledger.Accrue(ctx, student.ID, models.ReasonAbsent, amount); err != nil {
			return stats, fmt.Errorf("absent penalty student %d: %w", student.ID, err)
		}

		if err := r.notify.SendTemplate(ctx, models.TemplateAbsent, student.NotifyEmail(), map[string]string{
			"student_name": student.FullName(),
			"session":      sess,
			"date":         date,
		}); err != nil {
			log.Printf("[reconcile] absence mail for student %d failed: %v", student.ID, err)
		}
	}

	// Auto-close open time-ins. Silent: no penalty, no mail.
	open, err := r.store.OpenRecords(ctx, date, sess)
	if err != nil {
		return stats, fmt.Errorf("load open records: %w", err)
	}
	for _, rec := range open {
		if err := r.store.SetTimeOut(ctx, rec.ID, clock); err != nil {
			if errors.Is(err, attendance.ErrConflict) {
				continue // a late scan-out beat us to it
			}
			return stats, fmt.Errorf("auto close record %d: %w", rec.ID, err)
		}
		stats.Closed++
	}

	log.Printf("[reconcile] %s %s: %d absent, %d auto-closed", date, sess, stats.Absent, stats.Closed)
	return stats, nil
}
