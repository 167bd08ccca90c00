// Package registrar is the HTTP client for the external booking system,
// the only party allowed to durably commit a sale.  The registrar speaks
// its own wire vocabulary (Spanish field names, seat states as free text,
// results as boolean-or-string); every response is translated into the
// canonical model right here so raw field names never leak further in.
package registrar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
)

const (
	endpointEvents  = "/api/endpoints/v1/eventos"
	endpointLock    = "/api/endpoints/v1/bloquear-asientos"
	endpointConfirm = "/api/endpoints/v1/realizar-venta"
)

// Client talks to the registrar over HTTP with a fixed timeout and a
// bearer token on every request.  All methods treat non-2xx statuses and
// transport errors as communication failures and return them as errors;
// interpreting a registrar verdict (accepted/rejected) is separate from
// whether the call itself got through.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a Client.  The timeout bounds the whole request including
// connection setup and body read; no call blocks indefinitely.
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// EventPayload is one catalog event as the registrar lists it.
type EventPayload struct {
	ID          int64    `json:"id"`
	Title       string   `json:"titulo"`
	Description string   `json:"descripcion"`
	Summary     string   `json:"resumen"`
	Date        string   `json:"fecha"` // RFC 3339
	Address     string   `json:"direccion"`
	ImageURL    string   `json:"imagenUrl"`
	Price       *float64 `json:"precio"`
	Cancelled   bool     `json:"cancelado"`
	Type        struct {
		Name string `json:"nombre"`
	} `json:"tipo"`
	SeatRows int `json:"filaAsiento"`
	SeatCols int `json:"columnAsiento"`
}

// ListEvents fetches the registrar's full catalog.
func (c *Client) ListEvents(ctx context.Context) ([]EventPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpointEvents, nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var events []EventPayload
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decode event list: %w", err)
	}
	return events, nil
}

// LockSeats asks the registrar to temporarily lock the given seats.  The
// returned LockResult is already translated into canonical vocabulary.
// An error means the call never produced a verdict (timeout, connection
// refused, unparseable body); callers decide how to degrade.
func (c *Client) LockSeats(ctx context.Context, eventID int64, seats []model.SeatRef) (model.LockResult, error) {
	payload := struct {
		EventID int64           `json:"eventoId"`
		Seats   []model.SeatRef `json:"asientos"`
	}{EventID: eventID, Seats: seats}

	body, err := c.post(ctx, endpointLock, payload)
	if err != nil {
		return model.LockResult{}, err
	}

	var raw lockResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.LockResult{}, fmt.Errorf("decode lock response: %w", err)
	}
	return translateLockResponse(raw), nil
}

// SaleRequest is a sale confirmation submission.
type SaleRequest struct {
	EventID  int64            `json:"eventoId"`
	SaleDate time.Time        `json:"fechaVenta"`
	Price    float64          `json:"precioVenta"`
	Seats    []model.SaleSeat `json:"asientos"`
}

// SaleOutcome is the registrar's translated verdict on a sale.  Accepted
// distinguishes an explicit confirmation from an explicit rejection; a
// rejection is definitive and must not be retried.
type SaleOutcome struct {
	Accepted bool
	SaleID   *int64
	Message  string
}

// ConfirmSale submits a sale for confirmation.  The registrar reports its
// verdict with "resultado" either as a boolean or as a string such as
// "EXITOSA"; both forms are folded into SaleOutcome.Accepted.
func (c *Client) ConfirmSale(ctx context.Context, req SaleRequest) (SaleOutcome, error) {
	body, err := c.post(ctx, endpointConfirm, req)
	if err != nil {
		return SaleOutcome{}, err
	}

	var raw saleResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return SaleOutcome{}, fmt.Errorf("decode sale response: %w", err)
	}
	return translateSaleResponse(raw), nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("registrar: %s %s returned %d", req.Method, req.URL.Path, resp.StatusCode)
		return nil, fmt.Errorf("registrar returned status %d", resp.StatusCode)
	}
	return body, nil
}
