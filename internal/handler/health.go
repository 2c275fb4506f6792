package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	DB *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler { return &HealthHandler{DB: db} }

// Check pings the database; anything else degraded still answers 200 so
// load balancers keep routing while dependencies recover.
func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	status := "ok"
	if err := h.DB.PingContext(ctx); err != nil {
		status = "degraded"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
