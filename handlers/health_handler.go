package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jan112121/attendance-backend/database"
)

// Health serves /healthz with a db ping.
func Health(c echo.Context) error {
	sqlDB, err := database.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
