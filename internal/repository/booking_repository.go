package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/babybliss/babybliss-backend/internal/apperr"
)

// Booking mirrors the 'bookings' table.  EventDate is a DATE column; the
// driver scans it as time.Time because parseTime is on.
type Booking struct {
	ID              uint64
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	EventDate       time.Time
	Guests          int
	Venue           string
	Package         string
	PackagePrice    float64
	SpecialRequests sql.NullString
	Images          sql.NullString
	Status          string
	AssignedStaffID sql.NullInt64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BookingFilter collects optional list filters.  Zero values mean "not set".
type BookingFilter struct {
	Search string // matches name, email or venue
	Status string // pending | confirmed | cancelled
	From   string // inclusive event_date lower bound (YYYY-MM-DD)
	To     string // inclusive event_date upper bound (YYYY-MM-DD)
	Limit  int
	Offset int
}

type BookingRepo struct{ db *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingCols = `id,first_name,last_name,email,phone,event_date,guests,venue,package,package_price,
special_requests,images,status,assigned_staff_id,created_at,updated_at`

func scanBooking(sc interface{ Scan(...any) error }) (Booking, error) {
	var b Booking
	err := sc.Scan(&b.ID, &b.FirstName, &b.LastName, &b.Email, &b.Phone, &b.EventDate,
		&b.Guests, &b.Venue, &b.Package, &b.PackagePrice, &b.SpecialRequests,
		&b.Images, &b.Status, &b.AssignedStaffID, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// List returns a filtered page of bookings plus the total count matching the
// same filters.  The WHERE clause is assembled from placeholders only; the
// filter values always travel as query arguments.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]Booking, int, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.Status != "" {
		where = append(where, "status=?")
		args = append(args, f.Status)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		where = append(where, "(first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR venue LIKE ?)")
		args = append(args, like, like, like, like)
	}
	if f.From != "" {
		where = append(where, "event_date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		where = append(where, "event_date <= ?")
		args = append(args, f.To)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	limit := clampLimit(f.Limit, 50)
	args = append(args, limit, f.Offset)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bookingCols+" FROM bookings WHERE "+cond+" ORDER BY created_at DESC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()
	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, mapErr(err)
		}
		out = append(out, b)
	}
	return out, total, mapErr(rows.Err())
}

// GetByID fetches one booking.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingCols+" FROM bookings WHERE id=? LIMIT 1", id))
	return b, mapErr(err)
}

// CreateTx inserts a booking inside the caller's transaction and assigns the
// generated ID.  Used by the public form and the importer, both of which
// also insert a payment row when a package price is known; the transaction
// keeps a booking from ever existing without its payment.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *Booking) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (first_name,last_name,email,phone,event_date,guests,venue,package,package_price,special_requests,images,status,assigned_staff_id)
         VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.FirstName, b.LastName, b.Email, b.Phone, b.EventDate.Format("2006-01-02"),
		b.Guests, b.Venue, b.Package, b.PackagePrice, b.SpecialRequests, b.Images,
		b.Status, b.AssignedStaffID)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return mapErr(err)
	}
	b.ID = uint64(id)
	return nil
}

// Update writes the editable booking fields.
func (r *BookingRepo) Update(ctx context.Context, b *Booking) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET first_name=?, last_name=?, email=?, phone=?, event_date=?, guests=?,
         venue=?, package=?, package_price=?, special_requests=?, images=?, status=?, assigned_staff_id=?
         WHERE id=?`,
		b.FirstName, b.LastName, b.Email, b.Phone, b.EventDate.Format("2006-01-02"),
		b.Guests, b.Venue, b.Package, b.PackagePrice, b.SpecialRequests, b.Images,
		b.Status, b.AssignedStaffID, b.ID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Row may exist with identical values; verify before reporting 404.
		var exists int
		if err := r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM bookings WHERE id=?", b.ID).Scan(&exists); err != nil {
			return mapErr(err)
		}
		if exists == 0 {
			return apperr.ErrNotFound
		}
	}
	return nil
}

// UpdateStatus transitions a booking between pending/confirmed/cancelled.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET status=? WHERE id=?", status, id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM bookings WHERE id=?", id).Scan(&exists); err != nil {
			return mapErr(err)
		}
		if exists == 0 {
			return apperr.ErrNotFound
		}
	}
	return nil
}

// AssignStaff sets or clears the staff member responsible for a booking.
func (r *BookingRepo) AssignStaff(ctx context.Context, id uint64, staffID sql.NullInt64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET assigned_staff_id=? WHERE id=?", staffID, id)
	return mapErr(err)
}

// ArchiveAndDelete copies a booking into archived_bookings and removes the
// live row inside one transaction, so a failure can neither lose the row
// nor leave it in both tables.
func (r *BookingRepo) ArchiveAndDelete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr(err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO archived_bookings (id,first_name,last_name,email,phone,event_date,guests,venue,package,package_price,special_requests,images,status,assigned_staff_id,created_at,updated_at)
         SELECT id,first_name,last_name,email,phone,event_date,guests,venue,package,package_price,special_requests,images,status,assigned_staff_id,created_at,updated_at
         FROM bookings WHERE id=?`, id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE id=?", id); err != nil {
		return mapErr(err)
	}
	return mapErr(tx.Commit())
}

// ListArchived returns a page of archived bookings for the reports view.
func (r *BookingRepo) ListArchived(ctx context.Context, limit, offset int) ([]Booking, error) {
	limit = clampLimit(limit, 50)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bookingCols+" FROM archived_bookings ORDER BY archived_at DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		out = append(out, b)
	}
	return out, mapErr(rows.Err())
}
