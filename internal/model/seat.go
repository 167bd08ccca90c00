package model

import "time"

// SeatState is the canonical availability state of a seat.  The registrar
// and the shared cache use their own vocabularies ("Libre", "Vendido",
// "BLOQUEO EXITOSO", ...); those are translated at the boundary and never
// appear outside it.
type SeatState string

const (
	SeatFree     SeatState = "FREE"
	SeatOccupied SeatState = "OCCUPIED"
	SeatLocked   SeatState = "LOCKED"
)

// SeatRef identifies a single seat by its grid coordinates.  Rows and
// columns are 1-based.
type SeatRef struct {
	Row    int `json:"fila"`
	Column int `json:"columna"`
}

// Seat is one entry of a seat map.  ExpiresAt is only set for LOCKED
// seats and reflects when the temporary lock lapses.  SelectedByMe is a
// per-caller view flag computed on every read; it is never persisted.
type Seat struct {
	Row          int        `json:"fila"`
	Column       int        `json:"columna"`
	State        SeatState  `json:"estado"`
	ExpiresAt    *time.Time `json:"expira,omitempty"`
	SelectedByMe bool       `json:"seleccionado"`
}

// SeatMap is the availability view of one event's seating grid.
type SeatMap struct {
	EventID int64  `json:"eventoId"`
	Seats   []Seat `json:"asientos"`
}

// LockResult reports the outcome of a seat-lock attempt against the
// registrar.  OK reflects the registrar's overall verdict; Locked and
// Unavailable carry the per-seat breakdown.  A communication failure is
// reported as OK=false with the cause in Message, never as an error.
type LockResult struct {
	OK          bool      `json:"exitoso"`
	Message     string    `json:"mensaje"`
	Locked      []SeatRef `json:"asientosBloqueados"`
	Unavailable []SeatRef `json:"asientosNoDisponibles"`
}
