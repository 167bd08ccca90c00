package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/middleware"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/session"
)

// SessionHandler exposes the caller's seat selection under /v1/seleccion.
// Every method resolves the caller from the JWT subject injected by the
// auth middleware; there is no way to address another user's selection.
type SessionHandler struct {
	Store *session.Store
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(store *session.Store) *SessionHandler {
	if store == nil {
		panic("nil store passed to NewSessionHandler")
	}
	return &SessionHandler{Store: store}
}

// Get handles GET /v1/seleccion.  Returns the caller's current
// selection, or 404 when none exists (including when it just expired).
func (h *SessionHandler) Get(c echo.Context) error {
	login := middleware.UserLogin(c)
	sel, ok := h.Store.Get(login)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no active selection"})
	}
	return c.JSON(http.StatusOK, sel)
}

// Put handles PUT /v1/seleccion.  Replaces the caller's selection
// wholesale with the bound body.
func (h *SessionHandler) Put(c echo.Context) error {
	login := middleware.UserLogin(c)
	var sel session.Selection
	if err := c.Bind(&sel); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Store.Put(login, sel); err != nil {
		if errors.Is(err, session.ErrTooManySeats) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store selection"})
	}
	return c.NoContent(http.StatusNoContent)
}

// SetEvent handles PUT /v1/seleccion/evento.  Records which event the
// caller is selecting seats for, creating the selection if needed.
func (h *SessionHandler) SetEvent(c echo.Context) error {
	login := middleware.UserLogin(c)
	var body struct {
		EventID *int64 `json:"eventoId"`
	}
	if err := c.Bind(&body); err != nil || body.EventID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "eventoId is required"})
	}
	h.Store.SetEvent(login, *body.EventID)
	return c.NoContent(http.StatusNoContent)
}

// SetSeats handles PUT /v1/seleccion/asientos.  Replaces the selected
// seats; at most four may be held at once.
func (h *SessionHandler) SetSeats(c echo.Context) error {
	login := middleware.UserLogin(c)
	var body struct {
		Seats []session.SelectedSeat `json:"asientos"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Store.SetSeats(login, body.Seats); err != nil {
		if errors.Is(err, session.ErrTooManySeats) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store seats"})
	}
	return c.NoContent(http.StatusNoContent)
}

// SetNames handles PUT /v1/seleccion/nombres.  Fills occupant names into
// already-selected seats, matched by row and column.  409 when the
// caller has no active selection to annotate.
func (h *SessionHandler) SetNames(c echo.Context) error {
	login := middleware.UserLogin(c)
	var body struct {
		Seats []session.SelectedSeat `json:"asientos"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	names := make(map[string]session.SelectedSeat, len(body.Seats))
	for _, s := range body.Seats {
		names[s.Key()] = s
	}
	if err := h.Store.MergeNames(login, names); err != nil {
		if errors.Is(err, session.ErrNoSelection) {
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store names"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Clear handles DELETE /v1/seleccion.  Dropping a selection that does
// not exist is not an error; the end state is the same.
func (h *SessionHandler) Clear(c echo.Context) error {
	h.Store.Clear(middleware.UserLogin(c))
	return c.NoContent(http.StatusNoContent)
}
