package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/catalog"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/repository"
)

// EventsHandler serves the local event mirror and the admin resync.
type EventsHandler struct {
	Events *repository.EventRepo
	Sync   *catalog.Service
}

// NewEventsHandler constructs an EventsHandler.
func NewEventsHandler(events *repository.EventRepo, sync *catalog.Service) *EventsHandler {
	if events == nil || sync == nil {
		panic("nil dependency passed to NewEventsHandler")
	}
	return &EventsHandler{Events: events, Sync: sync}
}

// List handles GET /v1/eventos.  Serves the whole mirror, cancelled
// events included, so clients can explain why a cancelled event is not
// sellable instead of showing it as missing.
func (h *EventsHandler) List(c echo.Context) error {
	events, err := h.Events.All(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list events"})
	}
	return c.JSON(http.StatusOK, events)
}

// Resync handles POST /v1/admin/sincronizar.  Triggers a full catalog
// resync on demand, same operation the broker relay runs per change
// notification, and reports what it did.  502 when the registrar's
// catalog could not be fetched.
func (h *EventsHandler) Resync(c echo.Context) error {
	rep, err := h.Sync.Resync(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rep)
}
