package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

// Fetching a single booking by id is a staff view; anonymous callers are
// turned away before any lookup happens.
func TestBookingByIDRequiresStaff(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/bookings?id=9", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := &BookingHandler{}
	if err := h.List(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
