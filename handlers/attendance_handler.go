package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jan112121/attendance-backend/attendance"
	"github.com/jan112121/attendance-backend/database"
	"github.com/jan112121/attendance-backend/models"
)

type AttendanceHandler struct {
	processor *attendance.Processor
}

func NewAttendanceHandler(p *attendance.Processor) *AttendanceHandler {
	return &AttendanceHandler{processor: p}
}

type VerifyReq struct {
	ScanCode string `json:"scan_code"`
}

// POST /attendance/verify is the kiosk scan ingress. Timestamp is server
// time; the processor converts it into the canonical timezone.
func (h *AttendanceHandler) Verify(c echo.Context) error {
	var req VerifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid payload."})
	}
	code := strings.TrimSpace(req.ScanCode)
	if code == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "message": "No scan code provided."})
	}

	res, err := h.processor.ProcessScan(c.Request().Context(), code, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrNotFound):
			return c.JSON(http.StatusNotFound, map[string]any{"success": false, "message": "Invalid scan code."})
		case errors.Is(err, attendance.ErrOutOfWindow):
			return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "message": "Scanning is allowed only during session hours."})
		case errors.Is(err, attendance.ErrTooEarly):
			return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "message": "It's too early to scan out for this session."})
		case errors.Is(err, attendance.ErrAlreadyCompleted):
			return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "message": "Attendance for this session already completed."})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "message": "Server error during verification."})
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": res.Message,
		"user":    res,
	})
}

type attendanceRow struct {
	ID      uint    `json:"id"`
	Date    string  `json:"date"`
	Session string  `json:"session"`
	Status  string  `json:"status"`
	TimeIn  *string `json:"time_in"`
	TimeOut *string `json:"time_out"`

	Student attendance.StudentInfo `json:"student"`
}

// GET /teacher/attendance?date=YYYY-MM-DD&grade=&section=&q=
// Returns {morning: [...], afternoon: [...]} with 12-hour display times.
func (h *AttendanceHandler) List(c echo.Context) error {
	date := strings.TrimSpace(c.QueryParam("date"))
	grade := strings.TrimSpace(c.QueryParam("grade"))
	section := strings.TrimSpace(c.QueryParam("section"))
	q := strings.TrimSpace(c.QueryParam("q"))

	tx := database.DB.Model(&models.Attendance{}).Preload("Student")
	if date != "" {
		tx = tx.Where("attendance.date = ?", date)
	}
	if grade != "" || section != "" || q != "" {
		tx = tx.Joins("JOIN students s ON s.id = attendance.student_id")
		if grade != "" {
			tx = tx.Where("s.grade = ?", grade)
		}
		if section != "" {
			tx = tx.Where("s.section = ?", section)
		}
		if q != "" {
			like := "%" + strings.ToLower(q) + "%"
			tx = tx.Where("LOWER(s.student_number) LIKE ? OR LOWER(s.first_name) LIKE ? OR LOWER(s.last_name) LIKE ?",
				like, like, like)
		}
	}

	var recs []models.Attendance
	if err := tx.Order("attendance.date DESC, attendance.time_in ASC, attendance.id ASC").Find(&recs).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	morning := []attendanceRow{}
	afternoon := []attendanceRow{}
	for _, rec := range recs {
		row := attendanceRow{
			ID:      rec.ID,
			Date:    rec.Date,
			Session: rec.Session,
			Status:  rec.Status,
			TimeIn:  displayTime(rec.TimeIn),
			TimeOut: displayTime(rec.TimeOut),
		}
		if rec.Student != nil {
			row.Student = attendance.StudentInfo{
				ID:            rec.Student.ID,
				Name:          rec.Student.FullName(),
				StudentNumber: rec.Student.StudentNumber,
				Grade:         rec.Student.Grade,
				Section:       rec.Student.Section,
			}
		}
		switch rec.Session {
		case models.SessionMorning:
			morning = append(morning, row)
		case models.SessionAfternoon:
			afternoon = append(afternoon, row)
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"morning":   morning,
		"afternoon": afternoon,
	})
}

// displayTime renders stored HH:MM:SS as hh:mm AM/PM.
func displayTime(v *string) *string {
	if v == nil {
		return nil
	}
	t, err := time.Parse("15:04:05", *v)
	if err != nil {
		return v
	}
	out := t.Format("03:04 PM")
	return &out
}
