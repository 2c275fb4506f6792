package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

// A malformed month filter is rejected up front instead of reaching the
// database as a garbage date.
func TestFinancialRejectsBadMonth(t *testing.T) {
	e := echo.New()
	targets := []string{
		"/financial?action=expenses&month=garbage",
		"/financial?action=expenses&month=2026-13",
		"/financial?action=summary&month=not-a-month",
	}
	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, target, nil)
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
	}
}
