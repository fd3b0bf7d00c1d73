package penalty

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jan112121/attendance-backend/models"
)

// Rules reads the penalty_rules table; conditions without a configured rule
// fall back to the default amount from config.
type Rules struct {
	db  *gorm.DB
	def decimal.Decimal
}

func NewRules(db *gorm.DB, defaultAmount decimal.Decimal) *Rules {
	return &Rules{db: db, def: defaultAmount}
}

func (r *Rules) AmountFor(ctx context.Context, condition string) decimal.Decimal {
	var rule models.PenaltyRule
	err := r.db.WithContext(ctx).Where("condition = ?", condition).First(&rule).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[penalty] rule lookup %q failed: %v (using default)", condition, err)
		}
		return r.def
	}
	return rule.Amount
}

func (r *Rules) List(ctx context.Context) ([]models.PenaltyRule, error) {
	var rules []models.PenaltyRule
	err := r.db.WithContext(ctx).Order("condition ASC").Find(&rules).Error
	return rules, err
}

// Upsert sets the amount for a condition, inserting the rule if missing.
func (r *Rules) Upsert(ctx context.Context, condition string, amount decimal.Decimal) error {
	rule := models.PenaltyRule{Condition: condition, Amount: amount.Round(2)}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "condition"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).
		Create(&rule).Error
}
