package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/jan112121/attendance-backend/database"
	"github.com/jan112121/attendance-backend/models"
)

type StudentHandler struct{}

func NewStudentHandler() *StudentHandler { return &StudentHandler{} }

// GET /students?grade=&section=&q=&active=
func (h *StudentHandler) List(c echo.Context) error {
	tx := database.DB.Model(&models.Student{})
	if grade := strings.TrimSpace(c.QueryParam("grade")); grade != "" {
		tx = tx.Where("grade = ?", grade)
	}
	if section := strings.TrimSpace(c.QueryParam("section")); section != "" {
		tx = tx.Where("section = ?", section)
	}
	if active := strings.TrimSpace(c.QueryParam("active")); active != "" {
		tx = tx.Where("active = ?", active == "true")
	}
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(student_number) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			like, like, like)
	}

	var rows []models.Student
	if err := tx.Order("grade ASC, section ASC, last_name ASC").Find(&rows).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, rows)
}

type StudentReq struct {
	StudentNumber string `json:"student_number"`
	ScanCode      string `json:"scan_code"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Grade         string `json:"grade"`
	Section       string `json:"section"`
	Email         string `json:"email"`
	GuardianEmail string `json:"guardian_email"`
	Active        *bool  `json:"active"`
}

// POST /admin/students
func (h *StudentHandler) Create(c echo.Context) error {
	var req StudentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if strings.TrimSpace(req.StudentNumber) == "" || strings.TrimSpace(req.ScanCode) == "" ||
		strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	s := models.Student{
		StudentNumber: strings.TrimSpace(req.StudentNumber),
		ScanCode:      strings.TrimSpace(req.ScanCode),
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Grade:         strings.TrimSpace(req.Grade),
		Section:       strings.TrimSpace(req.Section),
		Email:         strings.TrimSpace(req.Email),
		GuardianEmail: strings.TrimSpace(req.GuardianEmail),
		Active:        true,
	}
	if req.Active != nil {
		s.Active = *req.Active
	}
	if err := database.DB.Create(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusConflict, map[string]any{"error": "DUPLICATE_STUDENT"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusCreated, s)
}

// StudentUpdateReq uses pointers so "field absent" and "field set to empty"
// stay distinguishable: a nil field is left unchanged, an empty string
// clears the value (contact fields only; identity fields reject empty).
type StudentUpdateReq struct {
	StudentNumber *string `json:"student_number"`
	ScanCode      *string `json:"scan_code"`
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Grade         *string `json:"grade"`
	Section       *string `json:"section"`
	Email         *string `json:"email"`
	GuardianEmail *string `json:"guardian_email"`
	Active        *bool   `json:"active"`
}

// PUT /admin/students/:id
func (h *StudentHandler) Update(c echo.Context) error {
	id := atoiOr(c.Param("id"), 0)
	var s models.Student
	if err := database.DB.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "STUDENT_NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	var req StudentUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}

	required := []struct {
		val *string
		dst *string
	}{
		{req.StudentNumber, &s.StudentNumber},
		{req.ScanCode, &s.ScanCode},
		{req.FirstName, &s.FirstName},
		{req.LastName, &s.LastName},
		{req.Grade, &s.Grade},
		{req.Section, &s.Section},
	}
	for _, f := range required {
		if f.val == nil {
			continue
		}
		v := strings.TrimSpace(*f.val)
		if v == "" {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
		}
		*f.dst = v
	}
	if req.Email != nil {
		s.Email = strings.TrimSpace(*req.Email)
	}
	if req.GuardianEmail != nil {
		s.GuardianEmail = strings.TrimSpace(*req.GuardianEmail)
	}
	if req.Active != nil {
		s.Active = *req.Active
	}

	if err := database.DB.Save(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusConflict, map[string]any{"error": "DUPLICATE_STUDENT"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, s)
}

// DELETE /admin/students/:id removes the student and their penalties.
func (h *StudentHandler) Delete(c echo.Context) error {
	id := atoiOr(c.Param("id"), 0)
	var s models.Student
	if err := database.DB.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "STUDENT_NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", s.ID).Delete(&models.Penalty{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", s.ID).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Delete(&s).Error
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "student deleted"})
}
