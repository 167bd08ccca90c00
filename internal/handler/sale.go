package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/middleware"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/repository"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/sale"
)

// SaleHandler submits purchases to the orchestrator and serves sale
// records back to their buyer.
type SaleHandler struct {
	Service *sale.Service
	Sales   *repository.SaleRepo
}

// NewSaleHandler constructs a SaleHandler.
func NewSaleHandler(svc *sale.Service, sales *repository.SaleRepo) *SaleHandler {
	if svc == nil || sales == nil {
		panic("nil dependency passed to NewSaleHandler")
	}
	return &SaleHandler{Service: svc, Sales: sales}
}

// Create handles POST /v1/ventas.  The status code mirrors the sale's
// lifecycle state: 201 when the registrar confirmed, 202 when the call
// could not get through and the sale is queued for background retries,
// and 200 with resultado=FAILED when the registrar explicitly rejected
// it.  Rejection is a verdict the client must read, not an HTTP error.
func (h *SaleHandler) Create(c echo.Context) error {
	login := middleware.UserLogin(c)

	var req sale.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	s, err := h.Service.Submit(c.Request().Context(), login, req)
	if err != nil {
		switch {
		case errors.Is(err, sale.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, sale.ErrState):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not record sale"})
		}
	}

	status := http.StatusOK
	switch s.Result {
	case model.SaleSuccess:
		status = http.StatusCreated
	case model.SalePending:
		status = http.StatusAccepted
	}
	return c.JSON(status, s)
}

// Get handles GET /v1/ventas/:id.  Sales are private to their buyer;
// someone else's sale answers 404, not 403, so ids cannot be probed.
func (h *SaleHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sale id"})
	}

	s, err := h.Sales.ByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrSaleNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "sale not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load sale"})
	}
	if s.UserLogin != middleware.UserLogin(c) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "sale not found"})
	}
	return c.JSON(http.StatusOK, s)
}
