package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/babybliss/babybliss-backend/internal/apperr"
	"github.com/babybliss/babybliss-backend/internal/repository"
)

func testCtx(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestQueryID(t *testing.T) {
	cases := []struct {
		target string
		want   uint64
		ok     bool
	}{
		{"/bookings?id=42", 42, true},
		{"/bookings", 0, false},
		{"/bookings?id=0", 0, false},
		{"/bookings?id=-1", 0, false},
		{"/bookings?id=abc", 0, false},
	}
	for _, tc := range cases {
		c, _ := testCtx(tc.target)
		id, ok := queryID(c)
		if id != tc.want || ok != tc.ok {
			t.Errorf("queryID(%s) = %d, %v, want %d, %v", tc.target, id, ok, tc.want, tc.ok)
		}
	}
}

func TestPagination(t *testing.T) {
	cases := []struct {
		target     string
		defLimit   int
		wantLimit  int
		wantOffset int
	}{
		{"/x", 50, 50, 0},
		{"/x?limit=10&offset=20", 50, 10, 20},
		{"/x?limit=500", 50, 200, 0}, // hard cap
		{"/x?limit=-5", 50, 50, 0},
		{"/x?offset=-1", 50, 50, 0},
		{"/x?limit=abc&offset=abc", 25, 25, 0},
	}
	for _, tc := range cases {
		c, _ := testCtx(tc.target)
		limit, offset := pagination(c, tc.defLimit)
		if limit != tc.wantLimit || offset != tc.wantOffset {
			t.Errorf("pagination(%s) = %d, %d, want %d, %d",
				tc.target, limit, offset, tc.wantLimit, tc.wantOffset)
		}
	}
}

func TestEnvelopes(t *testing.T) {
	t.Run("success merges fields", func(t *testing.T) {
		c, rec := testCtx("/")
		if err := ok(c, http.StatusCreated, echo.Map{"id": 1}); err != nil {
			t.Fatal(err)
		}
		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body["success"] != true || body["id"] != float64(1) {
			t.Errorf("body = %v", body)
		}
		if rec.Code != http.StatusCreated {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("classified failure exposes message", func(t *testing.T) {
		c, rec := testCtx("/")
		_ = fail(c, apperr.ErrNotFound)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
		var body struct {
			Success bool `json:"success"`
			Error   struct {
				Message string `json:"message"`
				Code    string `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Success || body.Error.Code != "not_found" {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("internal failure is opaque", func(t *testing.T) {
		c, rec := testCtx("/")
		_ = fail(c, sql.ErrConnDone)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
		var body struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Error.Message != "internal error" {
			t.Errorf("driver error leaked: %q", body.Error.Message)
		}
	})
}

func TestPublicBookingJSONSanitized(t *testing.T) {
	b := repository.Booking{
		ID:        9,
		FirstName: "Ana",
		LastName:  "Cruz",
		Email:     "ana@example.com",
		Phone:     "0917",
		EventDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		Venue:     "Garden Hall",
		Status:    "confirmed",
	}
	m := publicBookingJSON(b)
	for _, forbidden := range []string{"email", "phone", "first_name", "last_name", "package_price"} {
		if _, present := m[forbidden]; present {
			t.Errorf("public shape leaks %s", forbidden)
		}
	}
	if m["event_date"] != "2026-05-01" || m["venue"] != "Garden Hall" || m["status"] != "confirmed" {
		t.Errorf("public shape = %v", m)
	}
}
