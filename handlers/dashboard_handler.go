package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jan112121/attendance-backend/database"
	"github.com/jan112121/attendance-backend/models"
	"github.com/jan112121/attendance-backend/session"
)

type DashboardHandler struct {
	resolver *session.Resolver
}

func NewDashboardHandler(resolver *session.Resolver) *DashboardHandler {
	return &DashboardHandler{resolver: resolver}
}

type sessionCounts struct {
	Present int `json:"present"`
	Late    int `json:"late"`
	Absent  int `json:"absent"`
	Total   int `json:"total"`
}

// GET /teacher/dashboard/daily?date=YYYY-MM-DD
// Per-session present/late/absent counts for the day.
func (h *DashboardHandler) Daily(c echo.Context) error {
	date := strings.TrimSpace(c.QueryParam("date"))
	if date == "" {
		date = h.resolver.Date(time.Now())
	}

	type row struct {
		Session string
		Status  string
		N       int
	}
	var rows []row
	err := database.DB.Model(&models.Attendance{}).
		Select("session, status, COUNT(*) AS n").
		Where("date = ?", date).
		Group("session, status").
		Scan(&rows).Error
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	out := map[string]*sessionCounts{
		models.SessionMorning:   {},
		models.SessionAfternoon: {},
	}
	for _, r := range rows {
		counts, ok := out[r.Session]
		if !ok {
			continue
		}
		switch r.Status {
		case models.StatusPresent:
			counts.Present = r.N
		case models.StatusLate:
			counts.Late = r.N
		case models.StatusAbsent:
			counts.Absent = r.N
		}
		counts.Total += r.N
	}

	return c.JSON(http.StatusOK, map[string]any{
		"date":      date,
		"morning":   out[models.SessionMorning],
		"afternoon": out[models.SessionAfternoon],
	})
}
