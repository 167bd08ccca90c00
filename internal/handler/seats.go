package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/middleware"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/seats"
)

// SeatsHandler serves seat maps and seat locking.  Event ids in the
// path are registrar ids, the ids clients see in the catalog.
type SeatsHandler struct {
	Service *seats.Service
}

// NewSeatsHandler constructs a SeatsHandler.
func NewSeatsHandler(svc *seats.Service) *SeatsHandler {
	if svc == nil {
		panic("nil service passed to NewSeatsHandler")
	}
	return &SeatsHandler{Service: svc}
}

// GetSeatMap handles GET /v1/eventos/:id/asientos.  Always answers 200
// with a map; unknown availability degrades to an all-free grid rather
// than an error, and the caller's own selected seats are flagged.
func (h *SeatsHandler) GetSeatMap(c echo.Context) error {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || eventID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	m := h.Service.SeatMap(c.Request().Context(), eventID, middleware.UserLogin(c))
	return c.JSON(http.StatusOK, m)
}

// Lock handles POST /v1/eventos/:id/bloquear.  Locks the seats in the
// caller's selection.  The outcome is a verdict, not an error: a failed
// attempt still answers 200 with exitoso=false and the reason, so the
// client can show the per-seat breakdown.
func (h *SeatsHandler) Lock(c echo.Context) error {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || eventID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	res := h.Service.LockSelected(c.Request().Context(), eventID, middleware.UserLogin(c))
	return c.JSON(http.StatusOK, res)
}
