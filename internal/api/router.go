package api

import (
	"net/http"

	"fleet-tracking/internal/api/middleware"
	"fleet-tracking/internal/modules/tracking"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all the API endpoints of the tracking service.
func SetupRoutes(
	e *echo.Echo,
	jwtSecret string,
	trackingHandler *tracking.Handler,
	deviceHandler *tracking.DeviceHandler,
	db *pgxpool.Pool,
) {
	authMiddleware := middleware.JWTAuth(jwtSecret)

	// --- Public Routes ---
	e.GET("/healthz", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// The GPS-logger protocol authenticates by tracking token only, so this
	// endpoint sits outside the JWT middleware.
	e.GET("/api/device/gps", deviceHandler.Report)

	// --- Trip Tracking Routes ---
	tripGroup := e.Group("/api/trips", authMiddleware)
	{
		tripGroup.POST("/:tripId/positions", trackingHandler.ReportPosition)
		tripGroup.GET("/:tripId/positions", trackingHandler.ListPositions)
		tripGroup.GET("/:tripId/track", trackingHandler.GetTripTracking)
		tripGroup.POST("/:tripId/tracking-token", trackingHandler.IssueTrackingToken)
		tripGroup.POST("/:tripId/tracking-token/rotate", trackingHandler.RotateTrackingToken)
	}

	// --- Fleet & Streaming Routes ---
	e.GET("/api/fleet", trackingHandler.GetFleet, authMiddleware)
	e.GET("/ws/trips/:tripId/track", trackingHandler.StreamTripTracking, authMiddleware)
}
