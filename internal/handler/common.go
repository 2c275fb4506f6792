// Package handler implements the HTTP surface.  Every response uses one
// envelope: success responses carry success:true plus named data fields,
// failures carry {success:false, error:{message, code}}.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/babybliss/babybliss-backend/internal/apperr"
	"github.com/babybliss/babybliss-backend/internal/logs"
	"github.com/babybliss/babybliss-backend/internal/repository"
)

// reqCtx bounds a handler's database work to five seconds.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// ok writes a success envelope merging the given fields.
func ok(c echo.Context, status int, fields echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(status, body)
}

// fail classifies err through the apperr taxonomy and writes the error
// envelope.  Internal causes are logged server-side; the client only ever
// sees the opaque class message.
func fail(c echo.Context, err error) error {
	status := apperr.Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logs.WithError(err).WithField("path", c.Path()).Error("request failed")
		msg = "internal error"
	}
	return c.JSON(status, echo.Map{
		"success": false,
		"error":   echo.Map{"message": msg, "code": apperr.Code(err)},
	})
}

// failMsg writes an error envelope with an explicit message and code.
func failMsg(c echo.Context, status int, message, code string) error {
	return c.JSON(status, echo.Map{
		"success": false,
		"error":   echo.Map{"message": message, "code": code},
	})
}

// queryID reads a numeric id from the query string.
func queryID(c echo.Context) (uint64, bool) {
	raw := c.QueryParam("id")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// pagination reads limit/offset with a per-resource default.  The hard cap
// of 200 is enforced again in the repositories.
func pagination(c echo.Context, defLimit int) (limit, offset int) {
	limit = defLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 200 {
		limit = 200
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// bookingJSON shapes a booking row for the wire.
func bookingJSON(b repository.Booking) echo.Map {
	m := echo.Map{
		"id":            b.ID,
		"first_name":    b.FirstName,
		"last_name":     b.LastName,
		"email":         b.Email,
		"phone":         b.Phone,
		"event_date":    b.EventDate.Format("2006-01-02"),
		"guests":        b.Guests,
		"venue":         b.Venue,
		"package":       b.Package,
		"package_price": b.PackagePrice,
		"status":        b.Status,
		"created_at":    b.CreatedAt,
		"updated_at":    b.UpdatedAt,
	}
	if b.SpecialRequests.Valid {
		m["special_requests"] = b.SpecialRequests.String
	}
	if b.Images.Valid {
		m["images"] = b.Images.String
	}
	if b.AssignedStaffID.Valid {
		m["assigned_staff_id"] = b.AssignedStaffID.Int64
	}
	return m
}

// publicBookingJSON is the sanitized shape served to unauthenticated
// callers: enough for an availability calendar, no client contact details.
func publicBookingJSON(b repository.Booking) echo.Map {
	return echo.Map{
		"id":         b.ID,
		"event_date": b.EventDate.Format("2006-01-02"),
		"venue":      b.Venue,
		"status":     b.Status,
	}
}

// messageJSON shapes a message row for the wire.
func messageJSON(m repository.Message) echo.Map {
	out := echo.Map{
		"id":         m.ID,
		"name":       m.Name,
		"email":      m.Email,
		"phone":      m.Phone,
		"subject":    m.Subject,
		"message":    m.Body,
		"status":     m.Status,
		"created_at": m.CreatedAt,
	}
	if m.Rating.Valid {
		out["rating"] = m.Rating.Int64
	}
	return out
}

// paymentJSON shapes a payment row for the wire.
func paymentJSON(p repository.Payment) echo.Map {
	out := echo.Map{
		"id":                    p.ID,
		"booking_id":            p.BookingID,
		"amount":                p.Amount,
		"payment_status":        p.PaymentStatus,
		"payment_method":        p.PaymentMethod,
		"transaction_reference": p.TransactionReference,
		"created_at":            p.CreatedAt,
	}
	if p.PaymentDate.Valid {
		out["payment_date"] = p.PaymentDate.Time
	}
	if p.Notes.Valid {
		out["notes"] = p.Notes.String
	}
	return out
}
