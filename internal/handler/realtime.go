package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/babybliss/babybliss-backend/internal/realtime"
	"github.com/babybliss/babybliss-backend/internal/repository"
)

const (
	ssePollInterval = time.Second
	sseHeartbeat    = 30 * time.Second
	sseMaxLifetime  = time.Hour
)

// RealtimeHandler streams back-office change notifications over SSE.  With
// Redis available it wakes on published topics; without it each connection
// polls the pending-booking and unread-message counts once a second and
// emits events when they move.  Both modes speak the same event set:
// bookings_update, messages_update, dashboard_update and heartbeat.
type RealtimeHandler struct {
	Notify   *realtime.Notifier
	Stats    *repository.StatsRepo
	Messages *repository.MessageRepo
}

func NewRealtimeHandler(n *realtime.Notifier, s *repository.StatsRepo, m *repository.MessageRepo) *RealtimeHandler {
	return &RealtimeHandler{Notify: n, Stats: s, Messages: m}
}

// Stream handles GET /realtime.  Connections live at most an hour; the
// browser's EventSource reconnects transparently.
func (h *RealtimeHandler) Stream(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx, cancel := context.WithTimeout(c.Request().Context(), sseMaxLifetime)
	defer cancel()

	if err := writeEvent(w, "connected", map[string]any{"mode": h.mode()}); err != nil {
		return nil
	}

	if h.Notify.Enabled() {
		return h.streamPush(ctx, w)
	}
	return h.streamPoll(ctx, w)
}

func (h *RealtimeHandler) mode() string {
	if h.Notify.Enabled() {
		return "push"
	}
	return "poll"
}

// streamPush forwards Redis topic wake-ups, re-querying the payload for
// each so the client always receives fresh counts rather than stale
// fan-out data.
func (h *RealtimeHandler) streamPush(ctx context.Context, w *echo.Response) error {
	topics, stop := h.Notify.Subscribe(ctx)
	defer stop()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			if err := writeHeartbeat(w); err != nil {
				return nil
			}
		case topic, open := <-topics:
			if !open {
				return nil
			}
			payload, err := h.snapshot(ctx)
			if err != nil {
				continue
			}
			if err := writeEvent(w, topic+"_update", payload); err != nil {
				return nil
			}
		}
	}
}

// streamPoll compares successive snapshots and emits the per-topic events
// whose counts moved, so an idle dashboard costs two queries a second and
// no traffic beyond heartbeats.
func (h *RealtimeHandler) streamPoll(ctx context.Context, w *echo.Response) error {
	poll := time.NewTicker(ssePollInterval)
	defer poll.Stop()
	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	var last map[string]any
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			if err := writeHeartbeat(w); err != nil {
				return nil
			}
		case <-poll.C:
			payload, err := h.snapshot(ctx)
			if err != nil {
				continue
			}
			events := changedEvents(last, payload)
			last = payload
			for _, event := range events {
				if err := writeEvent(w, event, payload); err != nil {
					return nil
				}
			}
		}
	}
}

// changedEvents names the SSE events a snapshot transition triggers: the
// per-topic event for each count that moved, plus dashboard_update whenever
// anything moved.  A nil baseline emits only the dashboard event so a new
// connection gets one initial state frame.
func changedEvents(prev, cur map[string]any) []string {
	if prev == nil {
		return []string{"dashboard_update"}
	}
	var events []string
	if prev["pending_bookings"] != cur["pending_bookings"] {
		events = append(events, "bookings_update")
	}
	if prev["unread_messages"] != cur["unread_messages"] {
		events = append(events, "messages_update")
	}
	if len(events) > 0 {
		events = append(events, "dashboard_update")
	}
	return events
}

func (h *RealtimeHandler) snapshot(ctx context.Context) (map[string]any, error) {
	qctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	pending, err := h.Stats.PendingCount(qctx)
	if err != nil {
		return nil, err
	}
	unread, err := h.Messages.CountUnread(qctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"pending_bookings": pending, "unread_messages": unread}, nil
}

func writeEvent(w *echo.Response, event string, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, body); err != nil {
		return err
	}
	w.Flush()
	return nil
}

// writeHeartbeat emits the named keep-alive event.  Proxies drop silent
// connections; clients also use it to detect a dead stream.
func writeHeartbeat(w *echo.Response) error {
	return writeEvent(w, "heartbeat", map[string]any{
		"ts": time.Now().UTC().Format(time.RFC3339),
	})
}
