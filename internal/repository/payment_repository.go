package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/babybliss/babybliss-backend/internal/apperr"
)

// Payment mirrors the 'payments' table.  A payment belongs to one booking;
// a booking may accumulate several (deposit, balance, refund).
type Payment struct {
	ID                   uint64
	BookingID            uint64
	Amount               float64
	PaymentStatus        string
	PaymentMethod        string
	PaymentDate          sql.NullTime
	TransactionReference string
	Notes                sql.NullString
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type PaymentRepo struct{ db *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentCols = "id,booking_id,amount,payment_status,payment_method,payment_date,transaction_reference,notes,created_at,updated_at"

func scanPayment(sc interface{ Scan(...any) error }) (Payment, error) {
	var p Payment
	err := sc.Scan(&p.ID, &p.BookingID, &p.Amount, &p.PaymentStatus, &p.PaymentMethod,
		&p.PaymentDate, &p.TransactionReference, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List returns payments, optionally restricted to one status, newest first.
func (r *PaymentRepo) List(ctx context.Context, status string, limit, offset int) ([]Payment, error) {
	limit = clampLimit(limit, 50)
	q := "SELECT " + paymentCols + " FROM payments"
	args := []any{}
	if status != "" {
		q += " WHERE payment_status=?"
		args = append(args, status)
	}
	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		out = append(out, p)
	}
	return out, mapErr(rows.Err())
}

// ListByBooking returns all payments attached to one booking.
func (r *PaymentRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+paymentCols+" FROM payments WHERE booking_id=? ORDER BY created_at ASC", bookingID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		out = append(out, p)
	}
	return out, mapErr(rows.Err())
}

// GetByID fetches one payment, used for receipt generation.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx,
		"SELECT "+paymentCols+" FROM payments WHERE id=? LIMIT 1", id))
	return p, mapErr(err)
}

// CreateTx inserts a payment inside the caller's transaction, pairing it
// with a booking insert.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *Payment) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO payments (booking_id,amount,payment_status,payment_method,payment_date,transaction_reference,notes)
         VALUES (?,?,?,?,?,?,?)`,
		p.BookingID, p.Amount, p.PaymentStatus, p.PaymentMethod, p.PaymentDate,
		p.TransactionReference, p.Notes)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return mapErr(err)
	}
	p.ID = uint64(id)
	return nil
}

// Create inserts a standalone payment outside any transaction.
func (r *PaymentRepo) Create(ctx context.Context, p *Payment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr(err)
	}
	defer tx.Rollback()
	if err := r.CreateTx(ctx, tx, p); err != nil {
		return err
	}
	return mapErr(tx.Commit())
}

// SetStatus transitions a payment.  Marking paid stamps payment_date;
// marking pending clears it; refunded keeps the original date.
func (r *PaymentRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	var q string
	switch status {
	case "paid":
		q = "UPDATE payments SET payment_status=?, payment_date=NOW() WHERE id=?"
	case "pending":
		q = "UPDATE payments SET payment_status=?, payment_date=NULL WHERE id=?"
	default:
		q = "UPDATE payments SET payment_status=? WHERE id=?"
	}
	res, err := r.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM payments WHERE id=?", id).Scan(&exists); err != nil {
			return mapErr(err)
		}
		if exists == 0 {
			return apperr.ErrNotFound
		}
	}
	return nil
}
