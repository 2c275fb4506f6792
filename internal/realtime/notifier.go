// Package realtime fans mutation notifications out to connected back-office
// clients.  Mutating handlers call Publish with a topic; each SSE connection
// subscribes and re-queries the counts it cares about.  With no Redis the
// notifier is inert and the SSE handler falls back to periodic polling.
package realtime

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/babybliss/babybliss-backend/internal/logs"
)

// Topics understood by the notifier.  They map one-to-one onto the SSE
// event names <topic>_update.
const (
	TopicBookings  = "bookings"
	TopicMessages  = "messages"
	TopicDashboard = "dashboard"
)

const channelPrefix = "notify:"

// Notifier publishes and subscribes through Redis pub/sub.  A nil client
// disables it; Enabled reports which mode the SSE handler should use.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier { return &Notifier{rdb: rdb} }

// Enabled reports whether push notifications are available.
func (n *Notifier) Enabled() bool { return n != nil && n.rdb != nil }

// Publish announces a change on a topic.  Best-effort: failures are logged
// and dropped, because a notification is advisory and the data is already
// committed.
func (n *Notifier) Publish(ctx context.Context, topic string) {
	if !n.Enabled() {
		return
	}
	if err := n.rdb.Publish(ctx, channelPrefix+topic, "1").Err(); err != nil {
		logs.WithError(err).WithField("topic", topic).Warn("realtime publish failed")
	}
}

// Subscribe returns a channel of topic names and a cancel function.  The
// channel closes when the context ends or cancel is called.
func (n *Notifier) Subscribe(ctx context.Context) (<-chan string, func()) {
	out := make(chan string, 16)
	if !n.Enabled() {
		close(out)
		return out, func() {}
	}
	sub := n.rdb.PSubscribe(ctx, channelPrefix+"*")
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			topic := msg.Channel[len(channelPrefix):]
			select {
			case out <- topic:
			default:
				// Slow consumer; the SSE loop re-queries counts anyway, so
				// dropping a duplicate wake-up loses nothing.
			}
		}
	}()
	return out, func() { _ = sub.Close() }
}
