package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/jan112121/attendance-backend/attendance"
	"github.com/jan112121/attendance-backend/config"
	"github.com/jan112121/attendance-backend/handlers"
	"github.com/jan112121/attendance-backend/livefeed"
	"github.com/jan112121/attendance-backend/middlewares"
	"github.com/jan112121/attendance-backend/penalty"
	"github.com/jan112121/attendance-backend/schedule"
	"github.com/jan112121/attendance-backend/session"
)

// Deps are the core services handlers need; built once in main.
type Deps struct {
	Cfg        *config.Config
	Processor  *attendance.Processor
	Ledger     *penalty.Ledger
	Rules      *penalty.Rules
	Reconciler *schedule.Reconciler
	Archiver   *schedule.Archiver
	Resolver   *session.Resolver
	Feed       *livefeed.Hub
}

// Register wires all HTTP routes.
func Register(e *echo.Echo, d *Deps) {
	// ===== Handlers (shared singletons) =====
	auth := handlers.NewAuthHandler(d.Cfg.JWTSecret)
	att := handlers.NewAttendanceHandler(d.Processor)
	pen := handlers.NewPenaltyHandler(d.Ledger, d.Rules)
	std := handlers.NewStudentHandler()
	dash := handlers.NewDashboardHandler(d.Resolver)
	jobs := handlers.NewJobsHandler(d.Reconciler, d.Archiver, d.Resolver)
	arc := handlers.NewArchiveReportHandler()

	// ===== Public =====
	e.GET("/healthz", handlers.Health)
	e.POST("/auth/staff/login", auth.StaffLogin)

	// Kiosk scan ingress. Kiosks are on the school LAN and carry no JWT.
	e.POST("/attendance/verify", att.Verify)

	// Live feed (token validated in the handler, it arrives as a query param).
	e.GET("/ws/feed", d.Feed.Handle)

	authMW := middlewares.RequireAuth(d.Cfg.JWTSecret)

	// ===== Teacher routes =====
	teacher := e.Group("/teacher", authMW, middlewares.RequireRole("teacher", "admin"))
	teacher.GET("/attendance", att.List)
	teacher.GET("/dashboard/daily", dash.Daily)
	teacher.GET("/students", std.List)
	teacher.GET("/penalties", pen.List)

	// ===== Admin routes =====
	admin := e.Group("/admin", authMW, middlewares.RequireRole("admin"))

	admin.GET("/students", std.List)
	admin.POST("/students", std.Create)
	admin.PUT("/students/:id", std.Update)
	admin.DELETE("/students/:id", std.Delete)

	admin.GET("/penalties", pen.List)
	admin.POST("/penalties", pen.Create)
	admin.PUT("/penalties/:id", pen.Update)
	admin.PUT("/penalties/:id/pay", pen.Pay)
	admin.DELETE("/penalties/:id", pen.Delete)

	admin.GET("/penalty-rules", pen.ListRules)
	admin.PUT("/penalty-rules", pen.UpsertRule)

	admin.GET("/archive-reports", arc.List)
	admin.GET("/archive", arc.ListArchived)

	// Manual replay of the scheduled jobs.
	admin.POST("/jobs/reconcile", jobs.Reconcile)
	admin.POST("/jobs/archive", jobs.Archive)
}
