// Package penalty keeps the monetary ledger: one unpaid entry per
// (student, reason), with repeat infractions added onto it.
package penalty

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jan112121/attendance-backend/models"
)

var ErrNotFound = errors.New("penalty entry not found")

const lockStripes = 64

type Ledger struct {
	db *gorm.DB

	locks [lockStripes]sync.Mutex
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// keyLock serializes writers per (student, reason) so a scan, a reconciler
// sweep and a payment firing together cannot interleave. Striped so memory
// stays fixed; a stripe collision only over-serializes.
func (l *Ledger) keyLock(studentID uint, reason string) *sync.Mutex {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d|%s", studentID, reason)
	return &l.locks[h.Sum32()%lockStripes]
}

// Accrue adds amount to the student's unpaid entry for reason, creating the
// entry if none exists. The update is a single SQL increment, never a
// read-modify-write in Go.
func (l *Ledger) Accrue(ctx context.Context, studentID uint, reason string, amount decimal.Decimal) error {
	amount = amount.Round(2)

	m := l.keyLock(studentID, reason)
	m.Lock()
	defer m.Unlock()

	res := l.db.WithContext(ctx).Model(&models.Penalty{}).
		Where("student_id = ? AND reason = ? AND status = ?", studentID, reason, models.PenaltyUnpaid).
		Update("amount", gorm.Expr("amount + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	entry := models.Penalty{
		StudentID: studentID,
		Reason:    reason,
		Amount:    amount,
		Status:    models.PenaltyUnpaid,
	}
	return l.db.WithContext(ctx).Create(&entry).Error
}

// MarkPaid settles an entry: status=paid, amount reset to 0. A later
// accrual for the same reason opens a fresh unpaid entry. Holds the entry's
// key lock so a concurrent accrual lands either before the payment (and is
// settled with it) or after (in a fresh unpaid entry), never in between.
func (l *Ledger) MarkPaid(ctx context.Context, id uint) (*models.Penalty, error) {
	var entry models.Penalty
	if err := l.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	m := l.keyLock(entry.StudentID, entry.Reason)
	m.Lock()
	defer m.Unlock()

	err := l.db.WithContext(ctx).Model(&models.Penalty{}).
		Where("id = ?", entry.ID).
		Updates(map[string]any{
			"status": models.PenaltyPaid,
			"amount": decimal.Zero,
		}).Error
	if err != nil {
		return nil, err
	}
	entry.Status = models.PenaltyPaid
	entry.Amount = decimal.Zero
	return &entry, nil
}
