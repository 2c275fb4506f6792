package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/babybliss/babybliss-backend/internal/audit"
	"github.com/babybliss/babybliss-backend/internal/importer"
	"github.com/babybliss/babybliss-backend/internal/middleware"
	"github.com/babybliss/babybliss-backend/internal/realtime"
)

type ImportHandler struct {
	Importer *importer.Service
	Strict   bool
	Audit    *audit.Logger
	Notify   *realtime.Notifier
}

func NewImportHandler(svc *importer.Service, strict bool, a *audit.Logger, n *realtime.Notifier) *ImportHandler {
	return &ImportHandler{Importer: svc, Strict: strict, Audit: a, Notify: n}
}

// Post ingests a CSV upload.  The multipart field is "file" and the type
// query parameter selects the row shape (bookings, clients, users).
// Per-row failures are collected and reported, never fatal; only an
// unreadable upload fails the request.
func (h *ImportHandler) Post(c echo.Context) error {
	typ := c.QueryParam("type")
	if typ == "" {
		typ = "bookings"
	}
	switch typ {
	case "bookings", "clients", "users":
	default:
		return failMsg(c, http.StatusBadRequest, "type must be bookings, clients or users", "validation_error")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return failMsg(c, http.StatusBadRequest, "file is required", "validation_error")
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".csv") {
		return failMsg(c, http.StatusBadRequest, "only .csv files are accepted", "validation_error")
	}
	src, err := file.Open()
	if err != nil {
		return failMsg(c, http.StatusBadRequest, "could not read upload", "validation_error")
	}
	defer src.Close()

	// Imports get a longer budget than ordinary requests.
	ctx := c.Request().Context()

	res, err := h.Importer.Run(ctx, typ, src, importer.Options{
		Strict: h.Strict,
		Now:    time.Now().UTC(),
	})
	if err != nil {
		return fail(c, err)
	}

	p, _ := middleware.Principal(c)
	h.Audit.Record(ctx, p, "csv_import",
		fmt.Sprintf("%s import: %d ok, %d duplicates, %d errors of %d rows",
			typ, res.Success, res.Duplicates, len(res.Errors), res.Total),
		c.RealIP())
	if res.Success > 0 {
		h.Notify.Publish(ctx, realtime.TopicBookings)
		h.Notify.Publish(ctx, realtime.TopicDashboard)
	}

	return ok(c, http.StatusOK, echo.Map{
		"imported":   res.Success,
		"duplicates": res.Duplicates,
		"errors":     res.Errors,
		"total":      res.Total,
	})
}
