package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"
	"time"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
)

// EventRepo manages persistence for the local event mirror.  Rows are
// created and updated exclusively by the catalog resync; the rest of the
// application only reads them.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, registrar_id, title, description, summary, event_date,
	address, image_url, price, cancelled, event_type, seat_rows, seat_cols, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var (
		e     model.Event
		price sql.NullFloat64
	)
	err := row.Scan(&e.ID, &e.RegistrarID, &e.Title, &e.Description, &e.Summary,
		&e.Date, &e.Address, &e.ImageURL, &price, &e.Cancelled, &e.EventType,
		&e.SeatRows, &e.SeatCols, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		e.Price = &price.Float64
	}
	return &e, nil
}

// ByID returns the event with the given local id.
func (r *EventRepo) ByID(ctx context.Context, id int64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	e, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return e, err
}

// ByRegistrarID returns the event with the given registrar-assigned id.
func (r *EventRepo) ByRegistrarID(ctx context.Context, registrarID int64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE registrar_id = ?`
	e, err := scanEvent(r.db.QueryRowContext(ctx, q, registrarID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return e, err
}

// All returns every event in the mirror, cancelled ones included.  The
// resync needs the full set to decide which rows to delete.
func (r *EventRepo) All(ctx context.Context) ([]*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events ORDER BY event_date`
	return r.queryEvents(ctx, q)
}

// Active returns events that are neither cancelled nor past their date.
// Used by the cache warmup to decide which events to probe.
func (r *EventRepo) Active(ctx context.Context, now time.Time) ([]*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events
		WHERE cancelled = FALSE AND event_date > ? ORDER BY event_date`
	return r.queryEvents(ctx, q, now.UTC())
}

func (r *EventRepo) queryEvents(ctx context.Context, q string, args ...any) ([]*model.Event, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Create inserts a new event row and assigns the generated local id back
// to the struct.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events (registrar_id, title, description, summary, event_date,
		address, image_url, price, cancelled, event_type, seat_rows, seat_cols, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.RegistrarID, e.Title, e.Description,
		e.Summary, e.Date.UTC(), e.Address, e.ImageURL, nullPrice(e.Price),
		e.Cancelled, e.EventType, e.SeatRows, e.SeatCols, time.Now().UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// Update overwrites an existing event row identified by its local id.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	const q = `UPDATE events SET title = ?, description = ?, summary = ?, event_date = ?,
		address = ?, image_url = ?, price = ?, cancelled = ?, event_type = ?,
		seat_rows = ?, seat_cols = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, e.Title, e.Description, e.Summary, e.Date.UTC(),
		e.Address, e.ImageURL, nullPrice(e.Price), e.Cancelled, e.EventType,
		e.SeatRows, e.SeatCols, time.Now().UTC(), e.ID)
	return err
}

// Delete removes an event row.  The resync never deletes cancelled
// events; that rule lives in the sync service, not here.
func (r *EventRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	return err
}

func nullPrice(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
