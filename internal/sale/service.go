// Package sale orchestrates purchase attempts against the registrar.
// Every sale is written locally as PENDING before the confirmation call,
// then moved exactly once to SUCCESS or FAILED.  The key rule lives in
// the two failure paths: an explicit registrar rejection is terminal and
// never retried, while a communication failure keeps the sale PENDING
// for the retry scheduler.  Retrying a rejection would hammer seats the
// registrar has already denied; not retrying a network fault would lose
// sales to transient partitions.
package sale

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/registrar"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/session"
)

// MaxRetries bounds how many times the scheduler re-attempts a pending
// sale before giving up.
const MaxRetries = 5

// EventStore resolves events from the local mirror.
type EventStore interface {
	ByID(ctx context.Context, id int64) (*model.Event, error)
	ByRegistrarID(ctx context.Context, registrarID int64) (*model.Event, error)
}

// UserStore resolves buyers.
type UserStore interface {
	ByLogin(ctx context.Context, login string) (*model.User, error)
}

// SaleStore persists sale rows.
type SaleStore interface {
	Create(ctx context.Context, s *model.Sale) error
	Update(ctx context.Context, s *model.Sale) error
}

// Confirmer submits sales to the registrar.  Implemented by
// registrar.Client.  An error return means the call produced no verdict.
type Confirmer interface {
	ConfirmSale(ctx context.Context, req registrar.SaleRequest) (registrar.SaleOutcome, error)
}

// Sessions is the selection-store surface the orchestrator needs: the
// buyer's selection must match the requested event, and it is cleared
// once the sale is confirmed.
type Sessions interface {
	Get(userID string) (*session.Selection, bool)
	Clear(userID string)
}

// Request is a purchase submission.  EventID is the registrar's id, as
// that is what clients see in the catalog.
type Request struct {
	EventID int64            `json:"eventoId"`
	Seats   []model.SaleSeat `json:"asientos"`
}

// Service is the sale orchestrator.
type Service struct {
	events    EventStore
	users     UserStore
	sales     SaleStore
	registrar Confirmer
	sessions  Sessions
	now       func() time.Time
}

// New constructs the orchestrator.
func New(events EventStore, users UserStore, sales SaleStore, confirmer Confirmer, sessions Sessions) *Service {
	return &Service{
		events:    events,
		users:     users,
		sales:     sales,
		registrar: confirmer,
		sessions:  sessions,
		now:       time.Now,
	}
}

// Submit validates a purchase, persists it as PENDING, and attempts
// confirmation synchronously.  The returned sale tells the caller what
// happened: SUCCESS or FAILED when the registrar answered, PENDING when
// the call never got through and the retry scheduler will take over.
// Validation and state errors return before any row is written.
func (s *Service) Submit(ctx context.Context, userLogin string, req Request) (*model.Sale, error) {
	user, err := s.users.ByLogin(ctx, userLogin)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown user %q", ErrState, userLogin)
	}

	event, err := s.events.ByRegistrarID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown event %d", ErrState, req.EventID)
	}
	if event.Cancelled {
		return nil, fmt.Errorf("%w: event %d is cancelled", ErrState, req.EventID)
	}
	if event.Expired() {
		return nil, fmt.Errorf("%w: event %d already took place", ErrState, req.EventID)
	}
	if len(req.Seats) == 0 {
		return nil, fmt.Errorf("%w: at least one seat is required", ErrValidation)
	}

	sel, ok := s.sessions.Get(userLogin)
	if !ok || sel.EventID == nil || *sel.EventID != req.EventID {
		return nil, fmt.Errorf("%w: no locked seats for event %d", ErrState, req.EventID)
	}

	total := event.PriceOrZero() * float64(len(req.Seats))

	sale := &model.Sale{
		EventID:    event.ID,
		UserLogin:  user.Login,
		SaleDate:   s.now().UTC(),
		TotalPrice: total,
		Result:     model.SalePending,
		Message:    "sale awaiting confirmation",
		Seats:      req.Seats,
	}
	// The durable PENDING row goes in before any network call so a
	// crash mid-confirmation leaves a recoverable sale.
	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, err
	}
	log.Printf("sale: created pending sale %d for user %s, event %d", sale.ID, user.Login, req.EventID)

	outcome, err := s.registrar.ConfirmSale(ctx, registrar.SaleRequest{
		EventID:  event.RegistrarID,
		SaleDate: sale.SaleDate,
		Price:    total,
		Seats:    sale.Seats,
	})
	if err != nil {
		// No verdict: queue for the retry scheduler.
		sale.Result = model.SalePending
		sale.Message = "registrar unreachable, sale queued for confirmation"
		sale.RetryCount = 0
		if uerr := s.sales.Update(ctx, sale); uerr != nil {
			return nil, uerr
		}
		log.Printf("sale: confirmation call failed for sale %d, left pending: %v", sale.ID, err)
		return sale, nil
	}

	s.applyOutcome(ctx, sale, outcome)
	if sale.Result == model.SaleSuccess {
		s.sessions.Clear(userLogin)
	}
	return sale, nil
}

// Retry re-attempts one pending sale and reports whether it confirmed.
// The attempt counter is persisted before the registrar call so a crash
// mid-retry still counts the attempt.  A sale at the retry limit is
// moved to FAILED here; this is the one path that fails a sale without
// an explicit registrar rejection.
func (s *Service) Retry(ctx context.Context, sale *model.Sale) bool {
	if sale.Result != model.SalePending {
		return false // terminal sales are immutable
	}
	if sale.RetryCount >= MaxRetries {
		sale.Result = model.SaleFailed
		sale.Message = fmt.Sprintf("sale failed after %d confirmation attempts", MaxRetries)
		if err := s.sales.Update(ctx, sale); err != nil {
			log.Printf("sale: could not persist retry-limit failure for sale %d: %v", sale.ID, err)
		}
		return false
	}

	event, err := s.events.ByID(ctx, sale.EventID)
	if err != nil {
		log.Printf("sale: event %d missing for pending sale %d: %v", sale.EventID, sale.ID, err)
		return false
	}
	// Recompute from the fresh event record; the price may have been
	// resynced since the sale was created.
	total := event.PriceOrZero() * float64(len(sale.Seats))

	now := s.now().UTC()
	sale.LastRetryAt = &now
	sale.RetryCount++
	if err := s.sales.Update(ctx, sale); err != nil {
		log.Printf("sale: could not persist retry attempt for sale %d: %v", sale.ID, err)
		return false
	}

	outcome, err := s.registrar.ConfirmSale(ctx, registrar.SaleRequest{
		EventID:  event.RegistrarID,
		SaleDate: sale.SaleDate,
		Price:    total,
		Seats:    sale.Seats,
	})
	if err != nil {
		log.Printf("sale: retry %d for sale %d failed: %v", sale.RetryCount, sale.ID, err)
		return false
	}

	s.applyOutcome(ctx, sale, outcome)
	if sale.Result == model.SaleSuccess {
		s.sessions.Clear(sale.UserLogin)
		return true
	}
	return false
}

// applyOutcome moves a pending sale to its terminal state according to
// the registrar's verdict and persists it.
func (s *Service) applyOutcome(ctx context.Context, sale *model.Sale, outcome registrar.SaleOutcome) {
	if outcome.Accepted {
		sale.Result = model.SaleSuccess
		sale.RegistrarSaleID = outcome.SaleID
		sale.Message = outcome.Message
		if sale.Message == "" {
			sale.Message = "sale confirmed"
		}
		log.Printf("sale: sale %d confirmed, registrar id %v", sale.ID, outcome.SaleID)
	} else {
		// An explicit rejection is definitive; the scheduler must
		// never pick this sale up again.
		sale.Result = model.SaleFailed
		sale.Message = outcome.Message
		if sale.Message == "" {
			sale.Message = "sale rejected by the registrar"
		}
		log.Printf("sale: sale %d rejected by registrar: %s", sale.ID, sale.Message)
	}
	if err := s.sales.Update(ctx, sale); err != nil {
		log.Printf("sale: could not persist outcome for sale %d: %v", sale.ID, err)
	}
}
