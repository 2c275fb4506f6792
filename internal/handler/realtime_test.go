package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestChangedEvents(t *testing.T) {
	base := map[string]any{"pending_bookings": 2, "unread_messages": 5}

	cases := []struct {
		name string
		prev map[string]any
		cur  map[string]any
		want []string
	}{
		{"nil baseline emits initial dashboard frame", nil, base, []string{"dashboard_update"}},
		{"no movement emits nothing", base, map[string]any{"pending_bookings": 2, "unread_messages": 5}, nil},
		{"bookings moved", base, map[string]any{"pending_bookings": 3, "unread_messages": 5},
			[]string{"bookings_update", "dashboard_update"}},
		{"messages moved", base, map[string]any{"pending_bookings": 2, "unread_messages": 6},
			[]string{"messages_update", "dashboard_update"}},
		{"both moved", base, map[string]any{"pending_bookings": 3, "unread_messages": 6},
			[]string{"bookings_update", "messages_update", "dashboard_update"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := changedEvents(tc.prev, tc.cur)
			if len(got) != len(tc.want) {
				t.Fatalf("events = %v, want %v", got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("events = %v, want %v", got, tc.want)
					break
				}
			}
		})
	}
}

func TestWriteEvent(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	res := echo.NewResponse(rec, e)

	if err := writeEvent(res, "bookings_update", map[string]any{"pending_bookings": 1}); err != nil {
		t.Fatalf("writeEvent: %v", err)
	}
	out := rec.Body.String()
	if !strings.HasPrefix(out, "event: bookings_update\n") {
		t.Errorf("missing event line: %q", out)
	}
	if !strings.Contains(out, `data: {"pending_bookings":1}`) {
		t.Errorf("missing data line: %q", out)
	}
	if !strings.HasSuffix(out, "\n\n") {
		t.Errorf("frame not terminated: %q", out)
	}
}

func TestWriteHeartbeat(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	res := echo.NewResponse(rec, e)

	if err := writeHeartbeat(res); err != nil {
		t.Fatalf("writeHeartbeat: %v", err)
	}
	out := rec.Body.String()
	if !strings.HasPrefix(out, "event: heartbeat\n") {
		t.Errorf("keep-alive is not a named heartbeat event: %q", out)
	}
	if !strings.Contains(out, `"ts":`) {
		t.Errorf("heartbeat carries no timestamp: %q", out)
	}
}

func TestDispatchRejectsUnknownActions(t *testing.T) {
	e := echo.New()

	t.Run("auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth?action=register", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		h := &AuthHandler{}
		if err := h.Dispatch(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("financial", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/financial?action=payroll", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		h := &FinancialHandler{}
		if err := h.Get(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("reports", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reports?view=payroll", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		h := &ReportsHandler{}
		if err := h.Get(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}
