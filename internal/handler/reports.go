package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/babybliss/babybliss-backend/internal/repository"
)

// ReportsHandler serves the dashboard aggregates plus the activity and
// archive views, dispatched on the view query parameter.
type ReportsHandler struct {
	Stats    *repository.StatsRepo
	Bookings *repository.BookingRepo
	Messages *repository.MessageRepo
	Audits   *repository.AuditRepo
}

func NewReportsHandler(s *repository.StatsRepo, b *repository.BookingRepo, m *repository.MessageRepo, a *repository.AuditRepo) *ReportsHandler {
	return &ReportsHandler{Stats: s, Bookings: b, Messages: m, Audits: a}
}

func (h *ReportsHandler) Get(c echo.Context) error {
	switch c.QueryParam("view") {
	case "", "dashboard":
		return h.dashboard(c)
	case "activity":
		return h.activity(c)
	case "archived":
		return h.archived(c)
	default:
		return failMsg(c, http.StatusBadRequest, "unknown report view", "validation_error")
	}
}

// dashboard assembles the landing-page numbers in one response: status
// counts, lifetime revenue, unread messages and a six-month trend.  An
// optional month parameter (YYYY-MM) re-anchors the trend window.
func (h *ReportsHandler) dashboard(c echo.Context) error {
	anchor := time.Now().UTC()
	if raw := c.QueryParam("month"); raw != "" {
		m, err := time.Parse("2006-01", raw)
		if err != nil {
			return failMsg(c, http.StatusBadRequest, "month must be YYYY-MM", "validation_error")
		}
		anchor = m
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	counts, err := h.Stats.CountsByStatus(ctx)
	if err != nil {
		return fail(c, err)
	}
	revenue, err := h.Stats.TotalRevenue(ctx)
	if err != nil {
		return fail(c, err)
	}
	unread, err := h.Messages.CountUnread(ctx)
	if err != nil {
		return fail(c, err)
	}
	trend, err := h.Stats.MonthlyTrend(ctx, 6, anchor)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{
		"stats": echo.Map{
			"bookings":        counts,
			"total_revenue":   revenue,
			"unread_messages": unread,
			"monthly_trend":   trend,
		},
	})
}

func (h *ReportsHandler) activity(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	limit, offset := pagination(c, 50)
	rows, err := h.Audits.List(ctx, limit, offset)
	if err != nil {
		return fail(c, err)
	}
	out := make([]echo.Map, 0, len(rows))
	for _, a := range rows {
		entry := echo.Map{
			"id":         a.ID,
			"user_name":  a.UserName,
			"activity":   a.Activity,
			"details":    a.Details,
			"ip_address": a.IPAddress,
			"created_at": a.CreatedAt,
		}
		if a.UserID.Valid {
			entry["user_id"] = a.UserID.Int64
		}
		out = append(out, entry)
	}
	return ok(c, http.StatusOK, echo.Map{"activity": out})
}

func (h *ReportsHandler) archived(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	limit, offset := pagination(c, 50)
	bookings, err := h.Bookings.ListArchived(ctx, limit, offset)
	if err != nil {
		return fail(c, err)
	}
	messages, err := h.Messages.ListArchived(ctx, limit, offset)
	if err != nil {
		return fail(c, err)
	}
	bOut := make([]echo.Map, 0, len(bookings))
	for _, b := range bookings {
		bOut = append(bOut, bookingJSON(b))
	}
	mOut := make([]echo.Map, 0, len(messages))
	for _, m := range messages {
		mOut = append(mOut, messageJSON(m))
	}
	return ok(c, http.StatusOK, echo.Map{"bookings": bOut, "messages": mOut})
}
