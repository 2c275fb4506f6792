package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/babybliss/babybliss-backend/internal/apperr"
	"github.com/babybliss/babybliss-backend/internal/audit"
	"github.com/babybliss/babybliss-backend/internal/config"
	"github.com/babybliss/babybliss-backend/internal/middleware"
	"github.com/babybliss/babybliss-backend/internal/repository"
	"github.com/babybliss/babybliss-backend/internal/utils"
)

// ClientHandler manages client accounts for the back office.  Clients are
// the accounts created by the importer and the booking form; they have no
// dedicated signup flow, so staff create and correct them here.
type ClientHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Bookings *repository.BookingRepo
	Audit    *audit.Logger
}

func NewClientHandler(cfg config.Config, u *repository.UserRepo, b *repository.BookingRepo, a *audit.Logger) *ClientHandler {
	return &ClientHandler{Cfg: cfg, Users: u, Bookings: b, Audit: a}
}

func (h *ClientHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	limit, offset := pagination(c, 50)
	users, err := h.Users.ListByRole(ctx, "client", limit, offset)
	if err != nil {
		return fail(c, err)
	}

	out := make([]echo.Map, 0, len(users))
	for _, u := range users {
		// One page of clients means at most one extra count query each;
		// acceptable at this volume, revisit if the client base grows.
		_, total, err := h.Bookings.List(ctx, repository.BookingFilter{Search: u.Email, Limit: 1})
		if err != nil {
			return fail(c, err)
		}
		out = append(out, echo.Map{
			"id":            u.ID,
			"email":         u.Email,
			"created_at":    u.CreatedAt,
			"booking_count": total,
		})
	}
	return ok(c, http.StatusOK, echo.Map{"clients": out})
}

type clientReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Create registers a client account.  Without a password the account gets a
// random one and is claimed through the reset flow, same as imported rows.
func (h *ClientHandler) Create(c echo.Context) error {
	var req clientReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.ValidEmail(req.Email) {
		return failMsg(c, http.StatusBadRequest, "invalid email", "validation_error")
	}
	password := req.Password
	if password == "" {
		tok, err := utils.NewToken()
		if err != nil {
			return fail(c, fmt.Errorf("%w: password generation: %v", apperr.ErrInternal, err))
		}
		password = tok
	} else if len(password) < utils.MinPasswordLen {
		return failMsg(c, http.StatusBadRequest, "password must be at least 6 characters", "validation_error")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Users.Create(ctx, req.Email, password, "client", h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, err)
	}
	p, _ := middleware.Principal(c)
	h.Audit.Record(ctx, p, "client_created", fmt.Sprintf("client account %s (#%d)", req.Email, id), c.RealIP())
	return ok(c, http.StatusCreated, echo.Map{"client": echo.Map{"id": id, "email": req.Email}})
}

// Update corrects a client's login address.
func (h *ClientHandler) Update(c echo.Context) error {
	id, okID := queryID(c)
	if !okID {
		return failMsg(c, http.StatusBadRequest, "id is required", "validation_error")
	}
	var req clientReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.ValidEmail(req.Email) {
		return failMsg(c, http.StatusBadRequest, "invalid email", "validation_error")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if u.Role != "client" {
		return failMsg(c, http.StatusConflict, "only client accounts can be edited here", "conflict")
	}
	if err := h.Users.UpdateEmail(ctx, id, req.Email); err != nil {
		return fail(c, err)
	}
	p, _ := middleware.Principal(c)
	h.Audit.Record(ctx, p, "client_updated",
		fmt.Sprintf("client #%d email %s -> %s", id, u.Email, req.Email), c.RealIP())
	return ok(c, http.StatusOK, echo.Map{"message": "client updated"})
}

// Delete removes a client account.  Bookings keep their copied contact
// details, so history survives the account.
func (h *ClientHandler) Delete(c echo.Context) error {
	id, okID := queryID(c)
	if !okID {
		return failMsg(c, http.StatusBadRequest, "id is required", "validation_error")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if u.Role != "client" {
		return failMsg(c, http.StatusConflict, "only client accounts can be removed here", "conflict")
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	p, _ := middleware.Principal(c)
	h.Audit.Record(ctx, p, "client_deleted", fmt.Sprintf("client account %s (#%d)", u.Email, id), c.RealIP())
	return ok(c, http.StatusOK, echo.Map{"message": "client account removed"})
}
