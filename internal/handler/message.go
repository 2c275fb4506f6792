package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/babybliss/babybliss-backend/internal/audit"
	"github.com/babybliss/babybliss-backend/internal/logs"
	"github.com/babybliss/babybliss-backend/internal/mailer"
	"github.com/babybliss/babybliss-backend/internal/middleware"
	"github.com/babybliss/babybliss-backend/internal/queue"
	"github.com/babybliss/babybliss-backend/internal/realtime"
	"github.com/babybliss/babybliss-backend/internal/repository"
	"github.com/babybliss/babybliss-backend/internal/utils"
)

type MessageHandler struct {
	Messages *repository.MessageRepo
	Mail     *mailer.Mailer
	Audit    *audit.Logger
	Notify   *realtime.Notifier
}

func NewMessageHandler(m *repository.MessageRepo, ml *mailer.Mailer, a *audit.Logger, n *realtime.Notifier) *MessageHandler {
	return &MessageHandler{Messages: m, Mail: ml, Audit: a, Notify: n}
}

type messageReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Rating  *int64 `json:"rating"`
}

// List returns the inbox for staff, with the unread count riding along so
// the sidebar badge costs no extra request.
func (h *MessageHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	limit, offset := pagination(c, 20)
	rows, total, err := h.Messages.List(ctx, c.QueryParam("status"), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	unread, err := h.Messages.CountUnread(ctx)
	if err != nil {
		return fail(c, err)
	}
	out := make([]echo.Map, 0, len(rows))
	for _, m := range rows {
		out = append(out, messageJSON(m))
	}
	return ok(c, http.StatusOK, echo.Map{"messages": out, "total": total, "unread": unread})
}

// Create receives the public contact form.  The sender gets a best-effort
// acknowledgement email; its failure never fails the submission.
func (h *MessageHandler) Create(c echo.Context) error {
	var req messageReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Message == "" {
		return failMsg(c, http.StatusBadRequest, "name and message are required", "validation_error")
	}
	if !utils.ValidEmail(req.Email) {
		return failMsg(c, http.StatusBadRequest, "invalid email", "validation_error")
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return failMsg(c, http.StatusBadRequest, "rating must be between 1 and 5", "validation_error")
	}

	m := repository.Message{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   strings.TrimSpace(req.Phone),
		Subject: strings.TrimSpace(req.Subject),
		Body:    req.Message,
		Status:  "unread",
	}
	if req.Rating != nil {
		m.Rating = sql.NullInt64{Int64: *req.Rating, Valid: true}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Messages.Create(ctx, &m); err != nil {
		return fail(c, err)
	}

	h.Audit.RecordSystem(ctx, "message_received",
		fmt.Sprintf("contact message #%d from %s", m.ID, m.Email), c.RealIP())

	subject, body := mailer.ContactAckEmail(m.Name)
	h.ackBestEffort(ctx, queue.EmailJob{To: m.Email, Subject: subject, HTMLBody: body, Kind: "contact_ack"})
	h.Notify.Publish(ctx, realtime.TopicMessages)

	return ok(c, http.StatusCreated, echo.Map{"message": messageJSON(m)})
}

func (h *MessageHandler) ackBestEffort(ctx context.Context, job queue.EmailJob) {
	if err := queue.PublishEmail(ctx, job); err == nil {
		return
	}
	if err := h.Mail.Send(job.To, job.Subject, job.HTMLBody); err != nil {
		logs.WithError(err).WithField("kind", job.Kind).Warn("mail delivery failed")
	}
}

// Update marks a message read.
func (h *MessageHandler) Update(c echo.Context) error {
	id, okID := queryID(c)
	if !okID {
		return failMsg(c, http.StatusBadRequest, "id is required", "validation_error")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Messages.MarkRead(ctx, id); err != nil {
		return fail(c, err)
	}
	h.Notify.Publish(ctx, realtime.TopicMessages)
	return ok(c, http.StatusOK, echo.Map{"message": "marked read"})
}

// Delete archives the message, or purges an already archived one when
// permanent=true.  Both paths move the row rather than dropping it.
func (h *MessageHandler) Delete(c echo.Context) error {
	id, okID := queryID(c)
	if !okID {
		return failMsg(c, http.StatusBadRequest, "id is required", "validation_error")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, _ := middleware.Principal(c)
	if c.QueryParam("permanent") == "true" {
		if err := h.Messages.PermanentDelete(ctx, id); err != nil {
			return fail(c, err)
		}
		h.Audit.Record(ctx, p, "message_purged", fmt.Sprintf("archived message #%d permanently removed", id), c.RealIP())
		return ok(c, http.StatusOK, echo.Map{"message": "message permanently deleted"})
	}

	if err := h.Messages.ArchiveAndDelete(ctx, id); err != nil {
		return fail(c, err)
	}
	h.Audit.Record(ctx, p, "message_deleted", fmt.Sprintf("message #%d archived", id), c.RealIP())
	h.Notify.Publish(ctx, realtime.TopicMessages)
	return ok(c, http.StatusOK, echo.Map{"message": "message archived"})
}
