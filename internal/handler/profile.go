package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/babybliss/babybliss-backend/internal/apperr"
	"github.com/babybliss/babybliss-backend/internal/audit"
	"github.com/babybliss/babybliss-backend/internal/config"
	"github.com/babybliss/babybliss-backend/internal/middleware"
	"github.com/babybliss/babybliss-backend/internal/repository"
	"github.com/babybliss/babybliss-backend/internal/utils"
)

const maxImageBytes = 5 << 20 // 5 MiB

type ProfileHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Profiles *repository.ProfileRepo
	Audit    *audit.Logger
}

func NewProfileHandler(cfg config.Config, u *repository.UserRepo, p *repository.ProfileRepo, a *audit.Logger) *ProfileHandler {
	return &ProfileHandler{Cfg: cfg, Users: u, Profiles: p, Audit: a}
}

func profileJSON(p repository.Profile, email, role string) echo.Map {
	out := echo.Map{
		"user_id":          p.UserID,
		"email":            email,
		"role":             role,
		"first_name":       p.FirstName,
		"last_name":        p.LastName,
		"full_name":        p.FullName,
		"phone":            p.Phone,
		"business_name":    p.BusinessName,
		"business_address": p.BusinessAddress,
	}
	if p.Bio.Valid {
		out["bio"] = p.Bio.String
	}
	if p.ProfileImage.Valid {
		out["profile_image"] = p.ProfileImage.String
	}
	return out
}

// Get returns the caller's profile, creating the row on first access.
func (h *ProfileHandler) Get(c echo.Context) error {
	principal, _ := middleware.Principal(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	prof, err := h.Profiles.GetOrCreate(ctx, principal.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"profile": profileJSON(prof, principal.Email, string(principal.Role))})
}

// Post dispatches the profile mutations on the action query parameter.
func (h *ProfileHandler) Post(c echo.Context) error {
	switch c.QueryParam("action") {
	case "", "update":
		return h.update(c)
	case "change_password":
		return h.changePassword(c)
	case "upload_image":
		return h.uploadImage(c)
	default:
		return failMsg(c, http.StatusBadRequest, "unknown profile action", "validation_error")
	}
}

type profileReq struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
	Bio             string `json:"bio"`
	BusinessName    string `json:"business_name"`
	BusinessAddress string `json:"business_address"`
}

func (h *ProfileHandler) update(c echo.Context) error {
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}
	principal, _ := middleware.Principal(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	// Ensure the row exists before the UPDATE.
	if _, err := h.Profiles.GetOrCreate(ctx, principal.UserID); err != nil {
		return fail(c, err)
	}
	if err := h.Profiles.Update(ctx, principal.UserID,
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName),
		strings.TrimSpace(req.Phone), req.Bio,
		strings.TrimSpace(req.BusinessName), strings.TrimSpace(req.BusinessAddress)); err != nil {
		return fail(c, err)
	}

	prof, err := h.Profiles.GetOrCreate(ctx, principal.UserID)
	if err != nil {
		return fail(c, err)
	}
	h.Audit.Record(ctx, principal, "profile_updated", "profile details changed", c.RealIP())
	return ok(c, http.StatusOK, echo.Map{"profile": profileJSON(prof, principal.Email, string(principal.Role))})
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *ProfileHandler) changePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}
	if len(req.NewPassword) < utils.MinPasswordLen {
		return failMsg(c, http.StatusBadRequest, "password must be at least 6 characters", "validation_error")
	}
	principal, _ := middleware.Principal(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, principal.UserID)
	if err != nil {
		return fail(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return failMsg(c, http.StatusUnauthorized, "current password is incorrect", "unauthorized")
	}
	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, fmt.Errorf("%w: hash: %v", apperr.ErrInternal, err))
	}
	if err := h.Users.UpdatePassword(ctx, principal.UserID, hash); err != nil {
		return fail(c, err)
	}
	h.Audit.Record(ctx, principal, "password_changed", "password changed from profile", c.RealIP())
	return ok(c, http.StatusOK, echo.Map{"message": "password updated"})
}

// uploadImage stores a profile picture under the upload directory and
// records its public path.  Only common image types are accepted and the
// stored name is derived from the user ID, never from the upload.
func (h *ProfileHandler) uploadImage(c echo.Context) error {
	principal, _ := middleware.Principal(c)

	file, err := c.FormFile("image")
	if err != nil {
		return failMsg(c, http.StatusBadRequest, "image file is required", "validation_error")
	}
	if file.Size > maxImageBytes {
		return failMsg(c, http.StatusBadRequest, "image exceeds 5MB", "validation_error")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return failMsg(c, http.StatusBadRequest, "unsupported image type", "validation_error")
	}

	src, err := file.Open()
	if err != nil {
		return fail(c, fmt.Errorf("%w: open upload: %v", apperr.ErrInternal, err))
	}
	defer src.Close()

	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		return fail(c, fmt.Errorf("%w: upload dir: %v", apperr.ErrInternal, err))
	}
	name := fmt.Sprintf("profile-%d%s", principal.UserID, ext)
	dstPath := filepath.Join(h.Cfg.UploadDir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return fail(c, fmt.Errorf("%w: create file: %v", apperr.ErrInternal, err))
	}
	defer dst.Close()
	if _, err := io.Copy(dst, io.LimitReader(src, maxImageBytes+1)); err != nil {
		return fail(c, fmt.Errorf("%w: write file: %v", apperr.ErrInternal, err))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	public := "/uploads/" + name
	if _, err := h.Profiles.GetOrCreate(ctx, principal.UserID); err != nil {
		return fail(c, err)
	}
	if err := h.Profiles.SetImage(ctx, principal.UserID, public); err != nil {
		return fail(c, err)
	}
	h.Audit.Record(ctx, principal, "profile_image", "profile image replaced", c.RealIP())
	return ok(c, http.StatusOK, echo.Map{"profile_image": public})
}
