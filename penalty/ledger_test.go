package penalty

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jan112121/attendance-backend/database"
	"github.com/jan112121/attendance-backend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func unpaid(t *testing.T, db *gorm.DB, studentID uint, reason string) []models.Penalty {
	t.Helper()
	var rows []models.Penalty
	require.NoError(t, db.Where("student_id = ? AND reason = ? AND status = ?",
		studentID, reason, models.PenaltyUnpaid).Find(&rows).Error)
	return rows
}

func TestAccrueCreatesUnpaidEntry(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)

	require.NoError(t, ledger.Accrue(context.Background(), 1, models.ReasonLateArrival, dec("5.00")))

	rows := unpaid(t, db, 1, models.ReasonLateArrival)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Amount.Equal(dec("5.00")), "amount = %s", rows[0].Amount)
}

func TestAccrueIsAdditive(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	require.NoError(t, ledger.Accrue(ctx, 1, models.ReasonLateArrival, dec("5.00")))
	require.NoError(t, ledger.Accrue(ctx, 1, models.ReasonLateArrival, dec("5.00")))
	require.NoError(t, ledger.Accrue(ctx, 1, models.ReasonLateArrival, dec("2.50")))

	rows := unpaid(t, db, 1, models.ReasonLateArrival)
	require.Len(t, rows, 1, "repeat accruals must merge, not duplicate")
	assert.True(t, rows[0].Amount.Equal(dec("12.50")), "amount = %s", rows[0].Amount)
}

func TestAccrueRoundsToTwoDecimals(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)

	require.NoError(t, ledger.Accrue(context.Background(), 1, models.ReasonAbsent, dec("5.005")))

	rows := unpaid(t, db, 1, models.ReasonAbsent)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Amount.Equal(dec("5.01")), "amount = %s", rows[0].Amount)
}

func TestAccrueSeparatesReasonsAndStudents(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	require.NoError(t, ledger.Accrue(ctx, 1, models.ReasonLateArrival, dec("5.00")))
	require.NoError(t, ledger.Accrue(ctx, 1, models.ReasonAbsent, dec("5.00")))
	require.NoError(t, ledger.Accrue(ctx, 2, models.ReasonLateArrival, dec("5.00")))

	var cnt int64
	require.NoError(t, db.Model(&models.Penalty{}).Count(&cnt).Error)
	assert.EqualValues(t, 3, cnt)
}

func TestConcurrentAccrualsSumOnce(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, ledger.Accrue(ctx, 7, models.ReasonLateArrival, dec("1.00")))
		}()
	}
	wg.Wait()

	rows := unpaid(t, db, 7, models.ReasonLateArrival)
	require.Len(t, rows, 1, "concurrent accruals must not double-create")
	assert.True(t, rows[0].Amount.Equal(dec("10.00")), "amount = %s", rows[0].Amount)
}

func TestMarkPaidResetsAndClosesEntry(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	require.NoError(t, ledger.Accrue(ctx, 1, models.ReasonLateArrival, dec("15.00")))
	rows := unpaid(t, db, 1, models.ReasonLateArrival)
	require.Len(t, rows, 1)

	entry, err := ledger.MarkPaid(ctx, rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.PenaltyPaid, entry.Status)
	assert.True(t, entry.Amount.IsZero())

	// A new infraction opens a fresh unpaid entry, not the paid one.
	require.NoError(t, ledger.Accrue(ctx, 1, models.ReasonLateArrival, dec("5.00")))

	rows = unpaid(t, db, 1, models.ReasonLateArrival)
	require.Len(t, rows, 1)
	assert.NotEqual(t, entry.ID, rows[0].ID)
	assert.True(t, rows[0].Amount.Equal(dec("5.00")))

	var paid models.Penalty
	require.NoError(t, db.First(&paid, entry.ID).Error)
	assert.Equal(t, models.PenaltyPaid, paid.Status)
	assert.True(t, paid.Amount.IsZero())
}

func TestMarkPaidDuringConcurrentAccruals(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	require.NoError(t, ledger.Accrue(ctx, 1, models.ReasonLateArrival, dec("1.00")))
	rows := unpaid(t, db, 1, models.ReasonLateArrival)
	require.Len(t, rows, 1)
	paidID := rows[0].ID

	// Payment races 20 accruals: each accrual is either settled with the
	// payment or lands in the fresh unpaid entry, never silently erased.
	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, ledger.Accrue(ctx, 1, models.ReasonLateArrival, dec("1.00")))
		}()
	}
	wg.Add(1)
	var payErr error
	go func() {
		defer wg.Done()
		_, payErr = ledger.MarkPaid(ctx, paidID)
	}()
	wg.Wait()
	require.NoError(t, payErr)

	var paid models.Penalty
	require.NoError(t, db.First(&paid, paidID).Error)
	assert.Equal(t, models.PenaltyPaid, paid.Status)
	assert.True(t, paid.Amount.IsZero())

	rows = unpaid(t, db, 1, models.ReasonLateArrival)
	require.LessOrEqual(t, len(rows), 1, "post-payment accruals merge into one fresh entry")
	if len(rows) == 1 {
		assert.True(t, rows[0].Amount.Equal(rows[0].Amount.Round(0)), "whole accruals only, amount = %s", rows[0].Amount)
		assert.True(t, rows[0].Amount.LessThanOrEqual(dec("20.00")), "amount = %s", rows[0].Amount)
		assert.True(t, rows[0].Amount.GreaterThanOrEqual(dec("1.00")), "amount = %s", rows[0].Amount)
	}
}

func TestMarkPaidNotFound(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)

	_, err := ledger.MarkPaid(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRulesFallBackToDefault(t *testing.T) {
	db := newTestDB(t)
	rules := NewRules(db, dec("5.00"))
	ctx := context.Background()

	assert.True(t, rules.AmountFor(ctx, models.ConditionLate).Equal(dec("5.00")))

	require.NoError(t, rules.Upsert(ctx, models.ConditionLate, dec("7.25")))
	assert.True(t, rules.AmountFor(ctx, models.ConditionLate).Equal(dec("7.25")))

	// Upsert overwrites, never duplicates.
	require.NoError(t, rules.Upsert(ctx, models.ConditionLate, dec("8.00")))
	list, err := rules.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Amount.Equal(dec("8.00")))
}
