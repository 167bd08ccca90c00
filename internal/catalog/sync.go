// Package catalog reconciles the local event mirror with the registrar's
// catalog.  A resync is a full snapshot replace, not a diff: the
// registrar's list is the truth, local rows are upserted to match, and
// rows the registrar no longer lists are dropped.  Full replacement
// makes the operation idempotent, which matters because the broker
// relay triggers it on every change notification, duplicates included.
package catalog

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/registrar"
)

// Lister fetches the registrar's event list.  Implemented by
// registrar.Client.
type Lister interface {
	ListEvents(ctx context.Context) ([]registrar.EventPayload, error)
}

// EventStore is the mirror-side surface the resync writes through.
type EventStore interface {
	All(ctx context.Context) ([]*model.Event, error)
	Create(ctx context.Context, e *model.Event) error
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id int64) error
}

// Report summarizes one resync pass.
type Report struct {
	Created int `json:"creados"`
	Updated int `json:"actualizados"`
	Deleted int `json:"eliminados"`
	Total   int `json:"total"`
}

// Service is the catalog resync.
type Service struct {
	registrar Lister
	events    EventStore
}

// New constructs the resync service.
func New(registrar Lister, events EventStore) *Service {
	return &Service{registrar: registrar, events: events}
}

// Resync pulls the registrar's full catalog and reconciles the mirror
// against it.  Events are matched by registrar id: listed-and-known
// rows are updated, listed-and-unknown rows created, and unlisted rows
// deleted unless they are cancelled.  Cancelled rows stay so that sale
// attempts against them can be rejected with a reason instead of a
// blank "unknown event".  If the catalog cannot be fetched the mirror
// is left exactly as it was.
func (s *Service) Resync(ctx context.Context) (Report, error) {
	listed, err := s.registrar.ListEvents(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("fetch catalog: %w", err)
	}

	known, err := s.events.All(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read mirror: %w", err)
	}
	byRegistrarID := make(map[int64]*model.Event, len(known))
	for _, e := range known {
		byRegistrarID[e.RegistrarID] = e
	}

	var rep Report
	seen := make(map[int64]bool, len(listed))
	for _, p := range listed {
		seen[p.ID] = true
		incoming := fromPayload(p)
		if existing, ok := byRegistrarID[p.ID]; ok {
			incoming.ID = existing.ID
			if err := s.events.Update(ctx, incoming); err != nil {
				log.Printf("catalog: update event %d failed: %v", p.ID, err)
				continue
			}
			rep.Updated++
		} else {
			if err := s.events.Create(ctx, incoming); err != nil {
				log.Printf("catalog: create event %d failed: %v", p.ID, err)
				continue
			}
			rep.Created++
		}
	}

	for _, e := range known {
		if seen[e.RegistrarID] || e.Cancelled {
			continue
		}
		if err := s.events.Delete(ctx, e.ID); err != nil {
			log.Printf("catalog: delete event %d failed: %v", e.RegistrarID, err)
			continue
		}
		rep.Deleted++
	}

	rep.Total = len(listed)
	log.Printf("catalog: resync done: %d listed, %d created, %d updated, %d deleted",
		rep.Total, rep.Created, rep.Updated, rep.Deleted)
	return rep, nil
}

// fromPayload maps one catalog entry into a mirror row.  A date the
// registrar sends malformed is zeroed rather than dropped; a zero date
// reads as long past, which keeps the event visible but unsellable.
func fromPayload(p registrar.EventPayload) *model.Event {
	e := &model.Event{
		RegistrarID: p.ID,
		Title:       p.Title,
		Description: p.Description,
		Summary:     p.Summary,
		Address:     p.Address,
		ImageURL:    p.ImageURL,
		Price:       p.Price,
		Cancelled:   p.Cancelled,
		EventType:   p.Type.Name,
		SeatRows:    p.SeatRows,
		SeatCols:    p.SeatCols,
	}
	if p.Date != "" {
		t, err := time.Parse(time.RFC3339, p.Date)
		if err != nil {
			log.Printf("catalog: event %d has unparseable date %q", p.ID, p.Date)
		} else {
			e.Date = t.UTC()
		}
	}
	return e
}
