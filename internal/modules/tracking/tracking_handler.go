package tracking

import (
	"net/http"
	"strconv"
	"time"

	"fleet-tracking/internal/models"
	"fleet-tracking/pkg/utils"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Handler exposes the authenticated tracking endpoints.
type Handler struct {
	svc ServiceInterface
}

// NewHandler constructs a Handler with the provided service.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func identityFromContext(c echo.Context) (Identity, error) {
	userID, role, companyID, err := utils.ExtractUserInfo(c)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: userID, Role: role, CompanyID: companyID}, nil
}

// ReportPosition handles POST /trips/:tripId/positions.
func (h *Handler) ReportPosition(c echo.Context) error {
	ident, err := identityFromContext(c)
	if err != nil {
		return err
	}
	tripID := c.Param("tripId")

	var req models.PushPositionRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	resp, err := h.svc.ReportPush(c.Request().Context(), ident, tripID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, resp)
}

// IssueTrackingToken handles POST /trips/:tripId/tracking-token. Idempotent:
// re-issuing returns the stored token with existing=true.
func (h *Handler) IssueTrackingToken(c echo.Context) error {
	ident, err := identityFromContext(c)
	if err != nil {
		return err
	}

	resp, err := h.svc.IssueToken(c.Request().Context(), ident, c.Param("tripId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, resp)
}

// RotateTrackingToken handles POST /trips/:tripId/tracking-token/rotate.
// The previous token stops authenticating as soon as this returns.
func (h *Handler) RotateTrackingToken(c echo.Context) error {
	ident, err := identityFromContext(c)
	if err != nil {
		return err
	}

	resp, err := h.svc.RotateToken(c.Request().Context(), ident, c.Param("tripId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, resp)
}

// GetTripTracking handles GET /trips/:tripId/track.
func (h *Handler) GetTripTracking(c echo.Context) error {
	if _, err := identityFromContext(c); err != nil {
		return err
	}

	view, err := h.svc.GetTripTracking(c.Request().Context(), c.Param("tripId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, view)
}

// ListPositions handles GET /trips/:tripId/positions.
func (h *Handler) ListPositions(c echo.Context) error {
	if _, err := identityFromContext(c); err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	records, err := h.svc.ListPositions(c.Request().Context(), c.Param("tripId"), limit)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, records)
}

// GetFleet handles GET /fleet?companyId=...
// Company admins see their own company; super admins may pass any.
func (h *Handler) GetFleet(c echo.Context) error {
	ident, err := identityFromContext(c)
	if err != nil {
		return err
	}

	companyID := c.QueryParam("companyId")
	if companyID == "" {
		companyID = ident.CompanyID
	}

	view, err := h.svc.GetFleet(c.Request().Context(), ident, companyID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, view)
}

// upgrader is used to upgrade HTTP connections to WebSocket connections.
var upgrader = websocket.Upgrader{}

// streamInterval is how often the projection is pushed to stream clients.
const streamInterval = 5 * time.Second

// StreamTripTracking handles GET /ws/trips/:tripId/track: it upgrades the
// connection and pushes the trip's tracking view until the client goes away.
func (h *Handler) StreamTripTracking(c echo.Context) error {
	if _, err := identityFromContext(c); err != nil {
		return err
	}
	tripID := c.Param("tripId")

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := c.Request().Context()
	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	for {
		view, err := h.svc.GetTripTracking(ctx, tripID)
		if err != nil {
			_ = conn.WriteJSON(models.ErrorResponse{Message: "tracking unavailable"})
			return nil
		}
		if err := conn.WriteJSON(view); err != nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
