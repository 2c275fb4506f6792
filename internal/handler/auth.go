package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/babybliss/babybliss-backend/internal/apperr"
	"github.com/babybliss/babybliss-backend/internal/audit"
	"github.com/babybliss/babybliss-backend/internal/auth"
	"github.com/babybliss/babybliss-backend/internal/config"
	"github.com/babybliss/babybliss-backend/internal/logs"
	"github.com/babybliss/babybliss-backend/internal/mailer"
	"github.com/babybliss/babybliss-backend/internal/queue"
	"github.com/babybliss/babybliss-backend/internal/repository"
	"github.com/babybliss/babybliss-backend/internal/utils"
)

// AuthHandler bundles dependencies for the /auth endpoint family.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Resets *repository.ResetTokenRepo
	Mail   *mailer.Mailer
	Audit  *audit.Logger
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, rt *repository.ResetTokenRepo, m *mailer.Mailer, a *audit.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Resets: rt, Mail: m, Audit: a}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type sessionPart struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Dispatch routes /auth by its action query parameter, preserving the wire
// contract the frontend API client already speaks.
func (h *AuthHandler) Dispatch(c echo.Context) error {
	switch c.QueryParam("action") {
	case "login":
		return h.Login(c)
	case "logout":
		return h.Logout(c)
	case "session":
		return h.Session(c)
	case "forgot_password":
		return h.ForgotPassword(c)
	case "reset_password":
		return h.ResetPassword(c)
	default:
		return failMsg(c, http.StatusBadRequest, "unknown auth action", "validation_error")
	}
}

// Login verifies credentials and issues a fresh session token.  The new
// token overwrites any previous one, so logging in ends every other active
// session for the account.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return failMsg(c, http.StatusBadRequest, "email and password required", "validation_error")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return failMsg(c, http.StatusUnauthorized, "invalid credentials", "unauthorized")
		}
		return fail(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return failMsg(c, http.StatusUnauthorized, "invalid credentials", "unauthorized")
	}

	token, err := utils.NewToken()
	if err != nil {
		return fail(c, fmt.Errorf("%w: token generation: %v", apperr.ErrInternal, err))
	}
	expires := time.Now().UTC().Add(time.Duration(h.Cfg.SessionTTLHours) * time.Hour)
	if err := h.Users.SetSession(ctx, u.ID, token, expires); err != nil {
		return fail(c, err)
	}

	p := auth.Principal{UserID: u.ID, Email: u.Email, Role: auth.ParseRole(u.Role)}
	h.Audit.Record(ctx, p, "login", "user logged in", c.RealIP())

	return ok(c, http.StatusOK, echo.Map{
		"user":    userPart{ID: u.ID, Email: u.Email, Role: u.Role},
		"session": sessionPart{AccessToken: token, TokenType: "bearer", ExpiresAt: expires},
	})
}

// Logout requires a currently valid token and clears the session columns,
// returning the account to the no-session state.
func (h *AuthHandler) Logout(c echo.Context) error {
	token := utils.BearerToken(c.Request().Header.Get("Authorization"))
	if token == "" {
		return failMsg(c, http.StatusUnauthorized, "Unauthorized", "unauthorized")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Users.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			return failMsg(c, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		}
		return fail(c, err)
	}
	if err := h.Users.ClearSession(ctx, p.UserID); err != nil {
		return fail(c, err)
	}
	h.Audit.Record(ctx, p, "logout", "user logged out", c.RealIP())
	return ok(c, http.StatusOK, echo.Map{"message": "logged out"})
}

// Session reports the current principal, or nulls for anonymous callers.
// It never fails on a bad token; the frontend uses it to decide whether a
// stored token is still worth keeping.
func (h *AuthHandler) Session(c echo.Context) error {
	token := utils.BearerToken(c.Request().Header.Get("Authorization"))
	if token == "" {
		return ok(c, http.StatusOK, echo.Map{"user": nil, "session": nil})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Users.Authenticate(ctx, token)
	if err != nil {
		return ok(c, http.StatusOK, echo.Map{"user": nil, "session": nil})
	}
	u, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		return ok(c, http.StatusOK, echo.Map{"user": nil, "session": nil})
	}
	sess := sessionPart{AccessToken: token, TokenType: "bearer"}
	if u.SessionExpires.Valid {
		sess.ExpiresAt = u.SessionExpires.Time
	}
	return ok(c, http.StatusOK, echo.Map{
		"user":    userPart{ID: u.ID, Email: u.Email, Role: u.Role},
		"session": sess,
	})
}

const genericResetMsg = "If that email is registered, a reset link has been sent"

// ForgotPassword always answers with the same generic message so the
// endpoint cannot be used to enumerate accounts.  Email delivery is queued
// through the broker; if the broker is down the send happens inline, and if
// that fails too the request still succeeds.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.ValidEmail(req.Email) {
		return failMsg(c, http.StatusBadRequest, "invalid email", "validation_error")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Unknown address: same response, no token row.
		return ok(c, http.StatusOK, echo.Map{"message": genericResetMsg})
	}

	token, err := utils.NewToken()
	if err != nil {
		return fail(c, fmt.Errorf("%w: token generation: %v", apperr.ErrInternal, err))
	}
	expires := time.Now().UTC().Add(time.Duration(h.Cfg.ResetTTLMin) * time.Minute)
	if err := h.Resets.Insert(ctx, u.ID, u.Email, token, expires); err != nil {
		return fail(c, err)
	}

	subject, body := mailer.ResetEmail(h.Cfg.PublicBaseURL, token)
	h.sendBestEffort(ctx, queue.EmailJob{
		To: u.Email, Subject: subject, HTMLBody: body, Kind: "password_reset",
	})
	h.Audit.Record(ctx, auth.Principal{UserID: u.ID, Email: u.Email}, "forgot_password", "reset link requested", c.RealIP())

	return ok(c, http.StatusOK, echo.Map{"message": genericResetMsg})
}

// sendBestEffort queues the job, falling back to a synchronous send when
// the broker is unreachable.  All failures end here; mail never fails a
// request.
func (h *AuthHandler) sendBestEffort(ctx context.Context, job queue.EmailJob) {
	if err := queue.PublishEmail(ctx, job); err == nil {
		return
	}
	if err := h.Mail.Send(job.To, job.Subject, job.HTMLBody); err != nil {
		logs.WithError(err).WithField("kind", job.Kind).Warn("mail delivery failed")
	}
}

// ResetPassword redeems a reset token exactly once.  The used flag and the
// expiry are independent checks, and the flag flips inside the same
// transaction that rewrites the password hash.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		return failMsg(c, http.StatusBadRequest, "token required", "validation_error")
	}
	if len(req.Password) < utils.MinPasswordLen {
		return failMsg(c, http.StatusBadRequest, "password must be at least 6 characters", "validation_error")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Resets.GetByToken(ctx, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrResetUsed):
			return failMsg(c, http.StatusBadRequest, "token already used", "token_used")
		case errors.Is(err, repository.ErrResetExpired):
			return failMsg(c, http.StatusBadRequest, "token expired", "token_expired")
		case errors.Is(err, repository.ErrResetInvalid):
			return failMsg(c, http.StatusBadRequest, "invalid or expired token", "invalid_token")
		default:
			return fail(c, err)
		}
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, fmt.Errorf("%w: hash: %v", apperr.ErrInternal, err))
	}

	tx, err := h.Users.DB().BeginTx(ctx, nil)
	if err != nil {
		return fail(c, fmt.Errorf("%w: begin: %v", apperr.ErrInternal, err))
	}
	defer tx.Rollback()
	if err := h.Users.UpdatePasswordTx(ctx, tx, t.UserID, hash); err != nil {
		return fail(c, err)
	}
	if err := h.Resets.MarkUsedTx(ctx, tx, t.ID); err != nil {
		if errors.Is(err, repository.ErrResetUsed) {
			// Lost a race with a concurrent redemption of the same token.
			return failMsg(c, http.StatusBadRequest, "token already used", "token_used")
		}
		return fail(c, err)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, fmt.Errorf("%w: commit: %v", apperr.ErrInternal, err))
	}

	h.Audit.Record(ctx, auth.Principal{UserID: t.UserID, Email: t.Email}, "reset_password", "password reset via emailed token", c.RealIP())
	return ok(c, http.StatusOK, echo.Map{"message": "password updated"})
}
