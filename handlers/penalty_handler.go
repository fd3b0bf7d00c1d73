package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jan112121/attendance-backend/database"
	"github.com/jan112121/attendance-backend/models"
	"github.com/jan112121/attendance-backend/penalty"
)

type PenaltyHandler struct {
	ledger *penalty.Ledger
	rules  *penalty.Rules
}

func NewPenaltyHandler(ledger *penalty.Ledger, rules *penalty.Rules) *PenaltyHandler {
	return &PenaltyHandler{ledger: ledger, rules: rules}
}

// GET /teacher/penalties?studentId=&status=
func (h *PenaltyHandler) List(c echo.Context) error {
	tx := database.DB.Model(&models.Penalty{}).Preload("Student")
	if sid := strings.TrimSpace(c.QueryParam("studentId")); sid != "" {
		tx = tx.Where("student_id = ?", sid)
	}
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		tx = tx.Where("status = ?", status)
	}

	var rows []models.Penalty
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, rows)
}

type CreatePenaltyReq struct {
	StudentID uint   `json:"student_id"`
	Reason    string `json:"reason"`
	Amount    string `json:"amount"` // decimal string; empty uses the default
}

// POST /admin/penalties records a manual penalty from the admin UI. Goes through
// the ledger so it merges into an existing unpaid entry like any accrual.
func (h *PenaltyHandler) Create(c echo.Context) error {
	var req CreatePenaltyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	reason := strings.TrimSpace(req.Reason)
	if req.StudentID == 0 || reason == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	amount := h.rules.AmountFor(c.Request().Context(), strings.ToLower(reason))
	if req.Amount != "" {
		d, err := decimal.NewFromString(req.Amount)
		if err != nil || d.IsNegative() {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_AMOUNT"})
		}
		amount = d
	}

	var student models.Student
	if err := database.DB.First(&student, req.StudentID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "STUDENT_NOT_FOUND"})
	}

	if err := h.ledger.Accrue(c.Request().Context(), req.StudentID, reason, amount); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusCreated, map[string]any{"message": "penalty recorded"})
}

type UpdatePenaltyReq struct {
	Reason string `json:"reason"`
	Amount string `json:"amount"`
}

// PUT /admin/penalties/:id corrects a reason or amount.
func (h *PenaltyHandler) Update(c echo.Context) error {
	id := atoiOr(c.Param("id"), 0)
	var entry models.Penalty
	if err := database.DB.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "PENALTY_NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	var req UpdatePenaltyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		entry.Reason = reason
	}
	if req.Amount != "" {
		d, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
		if err != nil || d.IsNegative() {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_AMOUNT"})
		}
		entry.Amount = d.Round(2)
	}

	if err := database.DB.Save(&entry).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, entry)
}

// PUT /admin/penalties/:id/pay
func (h *PenaltyHandler) Pay(c echo.Context) error {
	id := atoiOr(c.Param("id"), 0)
	if id == 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_ID"})
	}
	entry, err := h.ledger.MarkPaid(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, penalty.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "PENALTY_NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "penalty marked as paid", "penalty": entry})
}

// DELETE /admin/penalties/:id
func (h *PenaltyHandler) Delete(c echo.Context) error {
	id := atoiOr(c.Param("id"), 0)
	var entry models.Penalty
	if err := database.DB.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "PENALTY_NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	if err := database.DB.Delete(&entry).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "penalty deleted"})
}

// GET /admin/penalty-rules
func (h *PenaltyHandler) ListRules(c echo.Context) error {
	rules, err := h.rules.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, rules)
}

type UpsertRuleReq struct {
	Condition string `json:"condition"`
	Amount    string `json:"amount"`
}

// PUT /admin/penalty-rules
func (h *PenaltyHandler) UpsertRule(c echo.Context) error {
	var req UpsertRuleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	condition := strings.ToLower(strings.TrimSpace(req.Condition))
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if condition == "" || err != nil || amount.IsNegative() {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_RULE"})
	}
	if err := h.rules.Upsert(c.Request().Context(), condition, amount); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "rule saved"})
}
