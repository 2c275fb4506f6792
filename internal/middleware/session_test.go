package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/babybliss/babybliss-backend/internal/apperr"
	"github.com/babybliss/babybliss-backend/internal/auth"
)

// fakeAuth resolves a single known token.
type fakeAuth struct {
	token     string
	principal auth.Principal
	err       error
}

func (f fakeAuth) Authenticate(_ context.Context, token string) (auth.Principal, error) {
	if f.err != nil {
		return auth.Principal{}, f.err
	}
	if token == f.token {
		return f.principal, nil
	}
	return auth.Principal{}, apperr.ErrUnauthorized
}

func invoke(mw echo.MiddlewareFunc, authz string) (*httptest.ResponseRecorder, bool, auth.Principal) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var reached bool
	var got auth.Principal
	handler := mw(func(c echo.Context) error {
		reached = true
		got, _ = Principal(c)
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, reached, got
}

func TestSessionAuth(t *testing.T) {
	staff := auth.Principal{UserID: 7, Email: "s@example.com", Role: auth.RoleStaff}
	mw := SessionAuth(fakeAuth{token: "good", principal: staff})

	t.Run("missing header", func(t *testing.T) {
		rec, reached, _ := invoke(mw, "")
		if reached {
			t.Fatal("handler ran without a token")
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"code":"unauthorized"`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		rec, reached, _ := invoke(mw, "Bearer nope")
		if reached || rec.Code != http.StatusUnauthorized {
			t.Errorf("reached=%v status=%d, want unreached 401", reached, rec.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		rec, reached, p := invoke(mw, "Bearer good")
		if !reached || rec.Code != http.StatusOK {
			t.Fatalf("reached=%v status=%d", reached, rec.Code)
		}
		if p.UserID != 7 || p.Role != auth.RoleStaff {
			t.Errorf("principal = %+v", p)
		}
	})

	t.Run("lookup failure is 500 not 401", func(t *testing.T) {
		broken := SessionAuth(fakeAuth{err: apperr.ErrInternal})
		rec, reached, _ := invoke(broken, "Bearer good")
		if reached || rec.Code != http.StatusInternalServerError {
			t.Errorf("reached=%v status=%d, want unreached 500", reached, rec.Code)
		}
	})
}

func TestOptionalSessionAuth(t *testing.T) {
	staff := auth.Principal{UserID: 7, Role: auth.RoleStaff}
	mw := OptionalSessionAuth(fakeAuth{token: "good", principal: staff})

	t.Run("anonymous passes", func(t *testing.T) {
		rec, reached, p := invoke(mw, "")
		if !reached || rec.Code != http.StatusOK {
			t.Fatalf("reached=%v status=%d", reached, rec.Code)
		}
		if p.UserID != 0 {
			t.Errorf("anonymous request carries principal %+v", p)
		}
	})

	t.Run("bad token still passes", func(t *testing.T) {
		_, reached, p := invoke(mw, "Bearer nope")
		if !reached {
			t.Fatal("request with bad token was blocked")
		}
		if p.UserID != 0 {
			t.Errorf("bad token produced principal %+v", p)
		}
	})

	t.Run("good token attaches principal", func(t *testing.T) {
		_, reached, p := invoke(mw, "Bearer good")
		if !reached || p.UserID != 7 {
			t.Errorf("reached=%v principal=%+v", reached, p)
		}
	})
}

func TestRequireRole(t *testing.T) {
	run := func(p *auth.Principal, roles ...auth.Role) (*httptest.ResponseRecorder, bool) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if p != nil {
			c.Set(principalKey, *p)
		}
		var reached bool
		h := RequireRole(roles...)(func(c echo.Context) error {
			reached = true
			return c.NoContent(http.StatusOK)
		})
		_ = h(c)
		return rec, reached
	}

	admin := auth.Principal{UserID: 1, Role: auth.RoleAdmin}
	staff := auth.Principal{UserID: 2, Role: auth.RoleStaff}
	client := auth.Principal{UserID: 3, Role: auth.RoleClient}

	if rec, reached := run(&client, auth.RoleAdmin, auth.RoleStaff); reached || rec.Code != http.StatusForbidden {
		t.Errorf("client allowed into staff route: status=%d", rec.Code)
	}
	if rec, reached := run(&staff, auth.RoleAdmin); reached || rec.Code != http.StatusForbidden {
		t.Errorf("staff allowed into admin route: status=%d", rec.Code)
	}
	if _, reached := run(&staff, auth.RoleAdmin, auth.RoleStaff); !reached {
		t.Error("staff blocked from staff route")
	}
	if _, reached := run(&admin, auth.RoleAdmin); !reached {
		t.Error("admin blocked from admin route")
	}
	if rec, reached := run(nil, auth.RoleStaff); reached || rec.Code != http.StatusForbidden {
		t.Errorf("anonymous allowed through RequireRole: status=%d", rec.Code)
	}
}
