package importer

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/babybliss/babybliss-backend/internal/apperr"
	"github.com/babybliss/babybliss-backend/internal/repository"
	"github.com/babybliss/babybliss-backend/internal/utils"
)

// RowError describes one failed CSV row.  Row numbers are 1-based and count
// the header.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result summarizes an import run.  Duplicates are reported separately from
// errors: a row skipped because it already exists is not a failure.
type Result struct {
	Success    int        `json:"success"`
	Duplicates int        `json:"duplicates"`
	Errors     []RowError `json:"errors"`
	Total      int        `json:"total"`
}

// Options tune a run.  Strict disables placeholder backfill; Now anchors
// generated default dates so a whole run shares one reference time.
type Options struct {
	Strict bool
	Now    time.Time
}

// Service performs CSV imports against the repositories.
type Service struct {
	DB         *sql.DB
	Bookings   *repository.BookingRepo
	Payments   *repository.PaymentRepo
	Users      *repository.UserRepo
	BcryptCost int
}

// Run dispatches on the import type.  Supported types: bookings, clients,
// users.
func (s *Service) Run(ctx context.Context, typ string, r io.Reader, opts Options) (Result, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	switch typ {
	case "bookings":
		return s.importBookings(ctx, r, opts)
	case "clients", "users":
		return s.importUsers(ctx, r, typ, opts)
	default:
		return Result{}, fmt.Errorf("%w: unknown import type %q", apperr.ErrValidation, typ)
	}
}

func readAll(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // exports from the old system have ragged rows
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: malformed CSV: %v", apperr.ErrValidation, err)
	}
	if len(records) < 1 {
		return nil, nil, fmt.Errorf("%w: empty file", apperr.ErrValidation)
	}
	return records[0], records[1:], nil
}

func (s *Service) importBookings(ctx context.Context, r io.Reader, opts Options) (Result, error) {
	headers, rows, err := readAll(r)
	if err != nil {
		return Result{}, err
	}
	cols := MapHeaders(headers)
	if _, ok := cols["first_name"]; !ok {
		return Result{}, fmt.Errorf("%w: no name column recognized", apperr.ErrValidation)
	}

	res := Result{Total: len(rows)}
	for i, row := range rows {
		rowNum := i + 2 // header is row 1
		b, rerr := buildBooking(row, cols, opts)
		if rerr != "" {
			res.Errors = append(res.Errors, RowError{Row: rowNum, Reason: rerr})
			continue
		}
		dup, err := s.bookingExists(ctx, b.Email, b.EventDate)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: rowNum, Reason: "lookup failed"})
			continue
		}
		if dup {
			res.Duplicates++
			continue
		}
		if err := s.insertBookingWithPayment(ctx, &b); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				res.Duplicates++
				continue
			}
			res.Errors = append(res.Errors, RowError{Row: rowNum, Reason: "insert failed"})
			continue
		}
		res.Success++
	}
	return res, nil
}

// buildBooking parses one CSV row, backfilling missing required fields with
// placeholders unless strict mode is on.  A non-empty string return is the
// rejection reason.
func buildBooking(row []string, cols map[string]int, opts Options) (repository.Booking, string) {
	var b repository.Booking
	b.FirstName = cell(row, cols, "first_name")
	if b.FirstName == "" {
		return b, "missing name"
	}
	b.LastName = cell(row, cols, "last_name")
	b.Phone = cell(row, cols, "phone")
	b.Venue = cell(row, cols, "venue")
	b.Package = cell(row, cols, "package")
	b.Status = normalizeStatus(cell(row, cols, "status"))

	b.Email = cell(row, cols, "email")
	if b.Email == "" || !utils.ValidEmail(b.Email) {
		if opts.Strict {
			return b, "missing or invalid email"
		}
		b.Email = PlaceholderEmail()
	}

	if raw := cell(row, cols, "event_date"); raw != "" {
		d, ok := parseDate(raw)
		if !ok {
			if opts.Strict {
				return b, "unparseable event date"
			}
			d = opts.Now.AddDate(0, 1, 0)
		}
		b.EventDate = d
	} else {
		if opts.Strict {
			return b, "missing event date"
		}
		// Default the event one month out from the run start.
		b.EventDate = opts.Now.AddDate(0, 1, 0)
	}

	if raw := cell(row, cols, "guests"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			b.Guests = n
		}
	}
	if raw := cell(row, cols, "package_price"); raw != "" {
		if v, ok := parsePrice(raw); ok {
			b.PackagePrice = v
		}
	}
	return b, ""
}

func (s *Service) bookingExists(ctx context.Context, email string, date time.Time) (bool, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE email=? AND event_date=?",
		email, date.Format("2006-01-02")).Scan(&n)
	return n > 0, err
}

// insertBookingWithPayment inserts the booking and, when a package price is
// known, its pending payment row in the same transaction.
func (s *Service) insertBookingWithPayment(ctx context.Context, b *repository.Booking) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := s.Bookings.CreateTx(ctx, tx, b); err != nil {
		return err
	}
	if b.PackagePrice > 0 {
		p := repository.Payment{
			BookingID:     b.ID,
			Amount:        b.PackagePrice,
			PaymentStatus: "pending",
		}
		if err := s.Payments.CreateTx(ctx, tx, &p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Service) importUsers(ctx context.Context, r io.Reader, typ string, opts Options) (Result, error) {
	headers, rows, err := readAll(r)
	if err != nil {
		return Result{}, err
	}
	cols := MapHeaders(headers)
	if _, ok := cols["email"]; !ok {
		return Result{}, fmt.Errorf("%w: no email column recognized", apperr.ErrValidation)
	}

	res := Result{Total: len(rows)}
	for i, row := range rows {
		rowNum := i + 2
		email := cell(row, cols, "email")
		if email == "" || !utils.ValidEmail(email) {
			if opts.Strict {
				res.Errors = append(res.Errors, RowError{Row: rowNum, Reason: "missing or invalid email"})
				continue
			}
			email = PlaceholderEmail()
		}
		password := cell(row, cols, "password")
		if password == "" {
			// Imported accounts get a random password; users go through the
			// reset flow to claim them.
			password, err = utils.NewToken()
			if err != nil {
				res.Errors = append(res.Errors, RowError{Row: rowNum, Reason: "password generation failed"})
				continue
			}
		}
		role := "client"
		if typ == "users" {
			if r := cell(row, cols, "role"); r == "admin" || r == "staff" {
				role = r
			}
		}
		if _, err := s.Users.Create(ctx, email, password, role, s.BcryptCost); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				res.Duplicates++
				continue
			}
			res.Errors = append(res.Errors, RowError{Row: rowNum, Reason: "insert failed"})
			continue
		}
		res.Success++
	}
	return res, nil
}
