package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jan112121/attendance-backend/database"
	"github.com/jan112121/attendance-backend/models"
)

type ArchiveReportHandler struct{}

func NewArchiveReportHandler() *ArchiveReportHandler { return &ArchiveReportHandler{} }

// GET /admin/archive-reports?date=YYYY-MM-DD
func (h *ArchiveReportHandler) List(c echo.Context) error {
	tx := database.DB.Model(&models.ArchiveReport{})
	if date := strings.TrimSpace(c.QueryParam("date")); date != "" {
		tx = tx.Where("date = ?", date)
	}
	var rows []models.ArchiveReport
	if err := tx.Order("ran_at DESC").Find(&rows).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /admin/archive?date=YYYY-MM-DD browses archived history.
func (h *ArchiveReportHandler) ListArchived(c echo.Context) error {
	tx := database.DB.Model(&models.AttendanceArchive{})
	if date := strings.TrimSpace(c.QueryParam("date")); date != "" {
		tx = tx.Where("date = ?", date)
	}
	if sid := strings.TrimSpace(c.QueryParam("studentId")); sid != "" {
		tx = tx.Where("student_id = ?", sid)
	}
	var rows []models.AttendanceArchive
	if err := tx.Order("date DESC, session ASC, student_id ASC").Find(&rows).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, rows)
}
