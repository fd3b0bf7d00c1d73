package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jan112121/attendance-backend/models"
	"github.com/jan112121/attendance-backend/schedule"
	"github.com/jan112121/attendance-backend/session"
)

// JobsHandler exposes the scheduled jobs for manual replay: each endpoint
// runs "this exact date+session" and is safe to call repeatedly.
type JobsHandler struct {
	reconciler *schedule.Reconciler
	archiver   *schedule.Archiver
	resolver   *session.Resolver
}

func NewJobsHandler(rec *schedule.Reconciler, arch *schedule.Archiver, resolver *session.Resolver) *JobsHandler {
	return &JobsHandler{reconciler: rec, archiver: arch, resolver: resolver}
}

type ReconcileReq struct {
	Date    string `json:"date"` // YYYY-MM-DD, default today
	Session string `json:"session"`
}

// POST /admin/jobs/reconcile
func (h *JobsHandler) Reconcile(c echo.Context) error {
	var req ReconcileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	sess := strings.ToLower(strings.TrimSpace(req.Session))
	if sess != models.SessionMorning && sess != models.SessionAfternoon {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_SESSION"})
	}
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = h.resolver.Date(time.Now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_DATE"})
	}

	stats, err := h.reconciler.Run(c.Request().Context(), date, sess, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "RECONCILE_FAILED"})
	}
	return c.JSON(http.StatusOK, stats)
}

type ArchiveReq struct {
	Date string `json:"date"` // YYYY-MM-DD, default yesterday
}

// POST /admin/jobs/archive
func (h *JobsHandler) Archive(c echo.Context) error {
	var req ArchiveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = h.resolver.Date(time.Now().AddDate(0, 0, -1))
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_DATE"})
	}

	archived, err := h.archiver.Run(c.Request().Context(), date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "ARCHIVE_FAILED"})
	}
	return c.JSON(http.StatusOK, map[string]any{"date": date, "archived": archived})
}
