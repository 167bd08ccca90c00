package model

import "time"

// Event is a row of the local event mirror.  ID is the local primary
// key; RegistrarID is the id the registrar assigned, which is what
// clients and the shared cache use to name the event.  The mirror is
// overwritten wholesale by the catalog resync, so nothing here is ever
// edited by hand.
type Event struct {
	ID          int64     `json:"id"`
	RegistrarID int64     `json:"eventoId"`
	Title       string    `json:"titulo"`
	Description string    `json:"descripcion"`
	Summary     string    `json:"resumen"`
	Date        time.Time `json:"fecha"`
	Address     string    `json:"direccion"`
	ImageURL    string    `json:"imagenUrl"`
	Price       *float64  `json:"precio"`
	Cancelled   bool      `json:"cancelado"`
	EventType   string    `json:"tipo"`
	SeatRows    int       `json:"filaAsiento"`
	SeatCols    int       `json:"columnAsiento"`
	UpdatedAt   time.Time `json:"-"`
}

// Expired reports whether the event's date has passed.
func (e *Event) Expired() bool {
	return e.Date.Before(time.Now().UTC())
}

// PriceOrZero returns the event price, treating an unset price as free
// admission rather than an error.
func (e *Event) PriceOrZero() float64 {
	if e.Price == nil {
		return 0
	}
	return *e.Price
}
