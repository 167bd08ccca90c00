package model

import "time"

// SaleResult is the lifecycle state of a sale.  PENDING is the only
// non-terminal state; a sale moves to SUCCESS or FAILED exactly once
// and never back.
type SaleResult string

const (
	SalePending SaleResult = "PENDING"
	SaleSuccess SaleResult = "SUCCESS"
	SaleFailed  SaleResult = "FAILED"
)

// SaleSeat is one seat on a sale, with the occupant it was bought for.
type SaleSeat struct {
	Row       int    `json:"fila"`
	Column    int    `json:"numero"`
	FirstName string `json:"nombrePersona"`
	LastName  string `json:"apellidoPersona"`
}

// Sale is a durable purchase record.  RegistrarSaleID is set only once
// the registrar confirms; RetryCount and LastRetryAt belong to the
// retry scheduler.
type Sale struct {
	ID              int64      `json:"id"`
	RegistrarSaleID *int64     `json:"ventaIdCatedra,omitempty"`
	EventID         int64      `json:"eventoId"`
	UserLogin       string     `json:"usuario"`
	SaleDate        time.Time  `json:"fechaVenta"`
	TotalPrice      float64    `json:"precioVenta"`
	Result          SaleResult `json:"resultado"`
	Message         string     `json:"descripcion"`
	RetryCount      int        `json:"intentos"`
	LastRetryAt     *time.Time `json:"ultimoIntento,omitempty"`
	Seats           []SaleSeat `json:"asientos"`
}

// Terminal reports whether the sale has reached a final state.
func (s *Sale) Terminal() bool {
	return s.Result == SaleSuccess || s.Result == SaleFailed
}
