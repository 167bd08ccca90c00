package router // route registration for the public API

import (
	"github.com/labstack/echo/v4"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/handler"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the authenticated API under /v1.  Every route
// requires a valid bearer token; the JWT subject identifies the caller
// and keys their selection and sales.
func RegisterAPI(e *echo.Echo, events *handler.EventsHandler, seats *handler.SeatsHandler,
	sessions *handler.SessionHandler, sales *handler.SaleHandler, jwtSecret string) {

	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	// Catalog mirror and seat availability.
	g.GET("/eventos", events.List)
	g.GET("/eventos/:id/asientos", seats.GetSeatMap)
	g.POST("/eventos/:id/bloquear", seats.Lock)

	// The caller's in-progress selection.
	g.GET("/seleccion", sessions.Get)
	g.PUT("/seleccion", sessions.Put)
	g.PUT("/seleccion/evento", sessions.SetEvent)
	g.PUT("/seleccion/asientos", sessions.SetSeats)
	g.PUT("/seleccion/nombres", sessions.SetNames)
	g.DELETE("/seleccion", sessions.Clear)

	// Purchases.
	g.POST("/ventas", sales.Create)
	g.GET("/ventas/:id", sales.Get)

	// Operational endpoints.  The resync is idempotent and safe to call
	// at any time, so it is gated only by authentication.
	g.POST("/admin/sincronizar", events.Resync)
}
