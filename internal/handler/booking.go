package handler

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/babybliss/babybliss-backend/internal/apperr"
	"github.com/babybliss/babybliss-backend/internal/audit"
	"github.com/babybliss/babybliss-backend/internal/middleware"
	"github.com/babybliss/babybliss-backend/internal/realtime"
	"github.com/babybliss/babybliss-backend/internal/repository"
	"github.com/babybliss/babybliss-backend/internal/utils"
)

type BookingHandler struct {
	Bookings *repository.BookingRepo
	Payments *repository.PaymentRepo
	Audit    *audit.Logger
	Notify   *realtime.Notifier
}

func NewBookingHandler(b *repository.BookingRepo, p *repository.PaymentRepo, a *audit.Logger, n *realtime.Notifier) *BookingHandler {
	return &BookingHandler{Bookings: b, Payments: p, Audit: a, Notify: n}
}

type bookingReq struct {
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	EventDate       string  `json:"event_date"`
	Guests          int     `json:"guests"`
	Venue           string  `json:"venue"`
	Package         string  `json:"package"`
	PackagePrice    float64 `json:"package_price"`
	SpecialRequests string  `json:"special_requests"`
	Images          string  `json:"images"`
	Status          string  `json:"status"`
	AssignedStaffID *uint64 `json:"assigned_staff_id"`
}

func (req *bookingReq) toBooking() (repository.Booking, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FirstName == "" || req.LastName == "" {
		return repository.Booking{}, fmt.Errorf("%w: first_name and last_name are required", apperr.ErrValidation)
	}
	if !utils.ValidEmail(req.Email) {
		return repository.Booking{}, fmt.Errorf("%w: invalid email", apperr.ErrValidation)
	}
	date, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return repository.Booking{}, fmt.Errorf("%w: event_date must be YYYY-MM-DD", apperr.ErrValidation)
	}
	if req.Guests < 0 || req.PackagePrice < 0 {
		return repository.Booking{}, fmt.Errorf("%w: guests and package_price cannot be negative", apperr.ErrValidation)
	}
	status := req.Status
	if status == "" {
		status = "pending"
	}
	switch status {
	case "pending", "confirmed", "cancelled":
	default:
		return repository.Booking{}, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, status)
	}
	b := repository.Booking{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		EventDate:    date,
		Guests:       req.Guests,
		Venue:        strings.TrimSpace(req.Venue),
		Package:      strings.TrimSpace(req.Package),
		PackagePrice: req.PackagePrice,
		Status:       status,
	}
	if req.SpecialRequests != "" {
		b.SpecialRequests = sql.NullString{String: req.SpecialRequests, Valid: true}
	}
	if req.Images != "" {
		b.Images = sql.NullString{String: req.Images, Valid: true}
	}
	if req.AssignedStaffID != nil {
		b.AssignedStaffID = sql.NullInt64{Int64: int64(*req.AssignedStaffID), Valid: true}
	}
	return b, nil
}

// List serves two audiences from one route.  Staff get full rows with the
// match total for their back-office table; anonymous callers get the
// sanitized availability view and no filters beyond the date range.
func (h *BookingHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if id, okID := queryID(c); okID {
		p, authed := middleware.Principal(c)
		if !authed || !p.IsStaff() {
			return failMsg(c, http.StatusForbidden, "forbidden", "forbidden")
		}
		b, err := h.Bookings.GetByID(ctx, id)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, http.StatusOK, echo.Map{"booking": bookingJSON(b)})
	}

	limit, offset := pagination(c, 50)
	f := repository.BookingFilter{
		From:   c.QueryParam("from"),
		To:     c.QueryParam("to"),
		Limit:  limit,
		Offset: offset,
	}

	p, authed := middleware.Principal(c)
	if authed && p.IsStaff() {
		f.Search = c.QueryParam("search")
		f.Status = c.QueryParam("status")
		rows, total, err := h.Bookings.List(ctx, f)
		if err != nil {
			return fail(c, err)
		}
		out := make([]echo.Map, 0, len(rows))
		for _, b := range rows {
			out = append(out, bookingJSON(b))
		}
		return ok(c, http.StatusOK, echo.Map{"bookings": out, "total": total})
	}

	rows, _, err := h.Bookings.List(ctx, f)
	if err != nil {
		return fail(c, err)
	}
	out := make([]echo.Map, 0, len(rows))
	for _, b := range rows {
		out = append(out, publicBookingJSON(b))
	}
	return ok(c, http.StatusOK, echo.Map{"bookings": out})
}

// Create accepts the public enquiry form.  When a package price is present
// a pending payment row is created in the same transaction, so the ledger
// never trails the bookings table.
func (h *BookingHandler) Create(c echo.Context) error {
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}
	// The public form cannot pick its own status or staff.
	if p, authed := middleware.Principal(c); !authed || !p.IsStaff() {
		req.Status = ""
		req.AssignedStaffID = nil
	}
	b, err := req.toBooking()
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return fail(c, fmt.Errorf("%w: begin: %v", apperr.ErrInternal, err))
	}
	defer tx.Rollback()
	if err := h.Bookings.CreateTx(ctx, tx, &b); err != nil {
		return fail(c, err)
	}
	if b.PackagePrice > 0 {
		pay := repository.Payment{
			BookingID:            b.ID,
			Amount:               b.PackagePrice,
			PaymentStatus:        "pending",
			PaymentMethod:        "unspecified",
			TransactionReference: fmt.Sprintf("BKG-%d-%d", b.ID, time.Now().Unix()),
		}
		if err := h.Payments.CreateTx(ctx, tx, &pay); err != nil {
			return fail(c, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fail(c, fmt.Errorf("%w: commit: %v", apperr.ErrInternal, err))
	}

	detail := fmt.Sprintf("booking #%d for %s %s on %s", b.ID, b.FirstName, b.LastName, b.EventDate.Format("2006-01-02"))
	if p, authed := middleware.Principal(c); authed {
		h.Audit.Record(ctx, p, "booking_created", detail, c.RealIP())
	} else {
		h.Audit.RecordSystem(ctx, "booking_created", detail, c.RealIP())
	}
	h.Notify.Publish(ctx, realtime.TopicBookings)
	h.Notify.Publish(ctx, realtime.TopicDashboard)

	return ok(c, http.StatusCreated, echo.Map{"booking": bookingJSON(b)})
}

// Update rewrites a booking, or just its status when only status is sent.
func (h *BookingHandler) Update(c echo.Context) error {
	id, okID := queryID(c)
	if !okID {
		return failMsg(c, http.StatusBadRequest, "id is required", "validation_error")
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, _ := middleware.Principal(c)

	if c.QueryParam("action") == "assign" {
		var staff sql.NullInt64
		if req.AssignedStaffID != nil {
			staff = sql.NullInt64{Int64: int64(*req.AssignedStaffID), Valid: true}
		}
		if _, err := h.Bookings.GetByID(ctx, id); err != nil {
			return fail(c, err)
		}
		if err := h.Bookings.AssignStaff(ctx, id, staff); err != nil {
			return fail(c, err)
		}
		h.Audit.Record(ctx, p, "booking_assigned",
			fmt.Sprintf("booking #%d staff assignment changed", id), c.RealIP())
		h.Notify.Publish(ctx, realtime.TopicBookings)
		return ok(c, http.StatusOK, echo.Map{"message": "assignment updated"})
	}

	// Status-only transition keeps the common case cheap.
	if req.FirstName == "" && req.LastName == "" && req.Email == "" && req.Status != "" {
		switch req.Status {
		case "pending", "confirmed", "cancelled":
		default:
			return failMsg(c, http.StatusBadRequest, "unknown status", "validation_error")
		}
		if err := h.Bookings.UpdateStatus(ctx, id, req.Status); err != nil {
			return fail(c, err)
		}
		h.Audit.Record(ctx, p, "booking_status",
			fmt.Sprintf("booking #%d -> %s", id, req.Status), c.RealIP())
		h.Notify.Publish(ctx, realtime.TopicBookings)
		h.Notify.Publish(ctx, realtime.TopicDashboard)
		return ok(c, http.StatusOK, echo.Map{"message": "status updated"})
	}

	b, err := req.toBooking()
	if err != nil {
		return fail(c, err)
	}
	b.ID = id
	if err := h.Bookings.Update(ctx, &b); err != nil {
		return fail(c, err)
	}
	h.Audit.Record(ctx, p, "booking_updated", fmt.Sprintf("booking #%d", id), c.RealIP())
	h.Notify.Publish(ctx, realtime.TopicBookings)

	updated, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"booking": bookingJSON(updated)})
}

// Delete archives the booking and removes the live row atomically.
func (h *BookingHandler) Delete(c echo.Context) error {
	id, okID := queryID(c)
	if !okID {
		return failMsg(c, http.StatusBadRequest, "id is required", "validation_error")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Bookings.ArchiveAndDelete(ctx, id); err != nil {
		return fail(c, err)
	}
	p, _ := middleware.Principal(c)
	h.Audit.Record(ctx, p, "booking_deleted", fmt.Sprintf("booking #%d archived", id), c.RealIP())
	h.Notify.Publish(ctx, realtime.TopicBookings)
	h.Notify.Publish(ctx, realtime.TopicDashboard)
	return ok(c, http.StatusOK, echo.Map{"message": "booking archived"})
}
