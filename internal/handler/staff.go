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

// StaffHandler manages staff accounts.  Admin only; the router enforces the
// role.
type StaffHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Audit *audit.Logger
}

func NewStaffHandler(cfg config.Config, u *repository.UserRepo, a *audit.Logger) *StaffHandler {
	return &StaffHandler{Cfg: cfg, Users: u, Audit: a}
}

func (h *StaffHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	limit, offset := pagination(c, 50)
	users, err := h.Users.ListByRole(ctx, "staff", limit, offset)
	if err != nil {
		return fail(c, err)
	}
	out := make([]echo.Map, 0, len(users))
	for _, u := range users {
		out = append(out, echo.Map{
			"id":         u.ID,
			"email":      u.Email,
			"role":       u.Role,
			"created_at": u.CreatedAt,
		})
	}
	return ok(c, http.StatusOK, echo.Map{"staff": out})
}

type staffReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *StaffHandler) Create(c echo.Context) error {
	var req staffReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.ValidEmail(req.Email) {
		return failMsg(c, http.StatusBadRequest, "invalid email", "validation_error")
	}
	if len(req.Password) < utils.MinPasswordLen {
		return failMsg(c, http.StatusBadRequest, "password must be at least 6 characters", "validation_error")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Users.Create(ctx, req.Email, req.Password, "staff", h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, err)
	}
	p, _ := middleware.Principal(c)
	h.Audit.Record(ctx, p, "staff_created", fmt.Sprintf("staff account %s (#%d)", req.Email, id), c.RealIP())
	return ok(c, http.StatusCreated, echo.Map{"staff": echo.Map{"id": id, "email": req.Email, "role": "staff"}})
}

// Update lets an admin correct a staff address or force a new password.
func (h *StaffHandler) Update(c echo.Context) error {
	id, okID := queryID(c)
	if !okID {
		return failMsg(c, http.StatusBadRequest, "id is required", "validation_error")
	}
	var req staffReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" && req.Password == "" {
		return failMsg(c, http.StatusBadRequest, "nothing to update", "validation_error")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if u.Role != "staff" {
		return failMsg(c, http.StatusConflict, "only staff accounts can be edited here", "conflict")
	}
	if req.Email != "" {
		if !utils.ValidEmail(req.Email) {
			return failMsg(c, http.StatusBadRequest, "invalid email", "validation_error")
		}
		if err := h.Users.UpdateEmail(ctx, id, req.Email); err != nil {
			return fail(c, err)
		}
	}
	if req.Password != "" {
		if len(req.Password) < utils.MinPasswordLen {
			return failMsg(c, http.StatusBadRequest, "password must be at least 6 characters", "validation_error")
		}
		hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return fail(c, fmt.Errorf("%w: hash: %v", apperr.ErrInternal, err))
		}
		if err := h.Users.UpdatePassword(ctx, id, hash); err != nil {
			return fail(c, err)
		}
	}
	p, _ := middleware.Principal(c)
	h.Audit.Record(ctx, p, "staff_updated", fmt.Sprintf("staff account #%d", id), c.RealIP())
	return ok(c, http.StatusOK, echo.Map{"message": "staff account updated"})
}

func (h *StaffHandler) Delete(c echo.Context) error {
	id, okID := queryID(c)
	if !okID {
		return failMsg(c, http.StatusBadRequest, "id is required", "validation_error")
	}
	p, _ := middleware.Principal(c)
	if p.UserID == id {
		return failMsg(c, http.StatusConflict, "cannot delete your own account", "conflict")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if u.Role != "staff" {
		return failMsg(c, http.StatusConflict, "only staff accounts can be removed here", "conflict")
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	h.Audit.Record(ctx, p, "staff_deleted", fmt.Sprintf("staff account %s (#%d)", u.Email, id), c.RealIP())
	return ok(c, http.StatusOK, echo.Map{"message": "staff account removed"})
}
