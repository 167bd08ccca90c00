package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
)

// SaleRepo manages the durable sale records and their seats.  A sale row
// is always written before any network call to the registrar so a crash
// mid-confirmation leaves a recoverable PENDING row; rows are mutated by
// the orchestrator and the retry scheduler and never deleted.
type SaleRepo struct {
	db *sql.DB
}

// NewSaleRepo constructs a SaleRepo with the given DB handle.
func NewSaleRepo(db *sql.DB) *SaleRepo { return &SaleRepo{db: db} }

// Create inserts a sale together with its seats in one transaction and
// assigns the generated id back to the struct.
func (r *SaleRepo) Create(ctx context.Context, s *model.Sale) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO sales (registrar_sale_id, event_id, user_login, sale_date,
		total_price, result, message, retry_count, last_retry_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, nullID(s.RegistrarSaleID), s.EventID, s.UserLogin,
		s.SaleDate.UTC(), s.TotalPrice, string(s.Result), s.Message, s.RetryCount,
		nullTime(s.LastRetryAt))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id

	for _, seat := range s.Seats {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sale_seats (sale_id, seat_row, seat_col, first_name, last_name)
			 VALUES (?, ?, ?, ?, ?)`,
			s.ID, seat.Row, seat.Column, seat.FirstName, seat.LastName)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update persists the mutable fields of a sale.  Seats are immutable
// after creation and are not touched.
func (r *SaleRepo) Update(ctx context.Context, s *model.Sale) error {
	const q = `UPDATE sales SET registrar_sale_id = ?, result = ?, message = ?,
		retry_count = ?, last_retry_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, nullID(s.RegistrarSaleID), string(s.Result),
		s.Message, s.RetryCount, nullTime(s.LastRetryAt), s.ID)
	return err
}

// ByID returns a sale with its seats attached.
func (r *SaleRepo) ByID(ctx context.Context, id int64) (*model.Sale, error) {
	const q = `SELECT id, registrar_sale_id, event_id, user_login, sale_date,
		total_price, result, message, retry_count, last_retry_at FROM sales WHERE id = ?`
	s, err := scanSale(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachSeats(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// PendingForRetry returns PENDING sales whose retry counter has not gone
// past the limit, seats attached, oldest first.  Rows exactly at the
// limit are included so the scheduler can move them to their terminal
// FAILED state.
func (r *SaleRepo) PendingForRetry(ctx context.Context, maxRetries int) ([]*model.Sale, error) {
	const q = `SELECT id, registrar_sale_id, event_id, user_login, sale_date,
		total_price, result, message, retry_count, last_retry_at
		FROM sales WHERE result = ? AND retry_count <= ? ORDER BY sale_date`
	rows, err := r.db.QueryContext(ctx, q, string(model.SalePending), maxRetries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range out {
		if err := r.attachSeats(ctx, s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SaleRepo) attachSeats(ctx context.Context, s *model.Sale) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_row, seat_col, first_name, last_name FROM sale_seats
		 WHERE sale_id = ? ORDER BY seat_row, seat_col`, s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var seat model.SaleSeat
		if err := rows.Scan(&seat.Row, &seat.Column, &seat.FirstName, &seat.LastName); err != nil {
			return err
		}
		s.Seats = append(s.Seats, seat)
	}
	return rows.Err()
}

func scanSale(row interface{ Scan(...any) error }) (*model.Sale, error) {
	var (
		s         model.Sale
		regID     sql.NullInt64
		lastRetry sql.NullTime
		result    string
	)
	err := row.Scan(&s.ID, &regID, &s.EventID, &s.UserLogin, &s.SaleDate,
		&s.TotalPrice, &result, &s.Message, &s.RetryCount, &lastRetry)
	if err != nil {
		return nil, err
	}
	s.Result = model.SaleResult(result)
	if regID.Valid {
		s.RegistrarSaleID = &regID.Int64
	}
	if lastRetry.Valid {
		t := lastRetry.Time
		s.LastRetryAt = &t
	}
	return &s, nil
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
