// Package router wires the HTTP surface: routes, CORS, auth guards and the
// Redis-backed rate limit and response cache where they pay off.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/babybliss/babybliss-backend/internal/auth"
	"github.com/babybliss/babybliss-backend/internal/config"
	"github.com/babybliss/babybliss-backend/internal/handler"
	"github.com/babybliss/babybliss-backend/internal/middleware"
)

// Handlers collects every handler the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Bookings  *handler.BookingHandler
	Clients   *handler.ClientHandler
	Financial *handler.FinancialHandler
	Messages  *handler.MessageHandler
	Profile   *handler.ProfileHandler
	Settings  *handler.SettingsHandler
	Staff     *handler.StaffHandler
	Reports   *handler.ReportsHandler
	Import    *handler.ImportHandler
	Realtime  *handler.RealtimeHandler
	Health    *handler.HealthHandler
}

// New builds the Echo instance.  rdb may be nil, which disables the rate
// limiter and the settings cache but changes nothing else.
func New(cfg config.Config, users middleware.Authenticator, h Handlers, rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	sessionRequired := middleware.SessionAuth(users)
	sessionOptional := middleware.OptionalSessionAuth(users)
	staffOnly := middleware.RequireRole(auth.RoleAdmin, auth.RoleStaff)
	adminOnly := middleware.RequireRole(auth.RoleAdmin)

	e.GET("/healthz", h.Health.Check)

	// Credential endpoints carry the brute-force limiter.
	authGroup := e.Group("")
	if rdb != nil {
		authGroup.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}
	authGroup.POST("/auth", h.Auth.Dispatch)
	e.GET("/auth", h.Auth.Session)

	// Public surfaces: enquiry form, contact form, availability, settings.
	e.POST("/bookings", h.Bookings.Create, sessionOptional)
	e.GET("/bookings", h.Bookings.List, sessionOptional)
	e.POST("/messages", h.Messages.Create)

	settingsGet := e.Group("")
	if rdb != nil {
		settingsGet.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	}
	settingsGet.GET("/settings", h.Settings.Get)

	// Back office: any staff role.
	back := e.Group("", sessionRequired, staffOnly)
	back.PUT("/bookings", h.Bookings.Update)
	back.DELETE("/bookings", h.Bookings.Delete)
	back.GET("/clients", h.Clients.List)
	back.POST("/clients", h.Clients.Create)
	back.PUT("/clients", h.Clients.Update)
	back.DELETE("/clients", h.Clients.Delete)
	back.GET("/financial", h.Financial.Get)
	back.POST("/financial", h.Financial.Post)
	back.PUT("/financial", h.Financial.Put)
	back.DELETE("/financial", h.Financial.Delete)
	back.GET("/messages", h.Messages.List)
	back.PUT("/messages", h.Messages.Update)
	back.DELETE("/messages", h.Messages.Delete)
	back.GET("/reports", h.Reports.Get)
	back.POST("/import", h.Import.Post)
	back.PUT("/settings", h.Settings.Put)
	back.GET("/realtime", h.Realtime.Stream)

	// Any signed-in account manages its own profile.
	profile := e.Group("", sessionRequired)
	profile.GET("/profile", h.Profile.Get)
	profile.POST("/profile", h.Profile.Post)
	profile.PUT("/profile", h.Profile.Post)

	// Staff account management is admin territory.
	admin := e.Group("", sessionRequired, adminOnly)
	admin.GET("/staff", h.Staff.List)
	admin.POST("/staff", h.Staff.Create)
	admin.PUT("/staff", h.Staff.Update)
	admin.DELETE("/staff", h.Staff.Delete)

	// Uploaded profile images are served statically.
	e.Static("/uploads", cfg.UploadDir)

	return e
}
