// Background consumer for the mail.outbound queue.  Each job is delivered
// through the mailer; a send failure is logged and the message rejected
// without requeue, because email is a best-effort side channel and a
// poisoned job must not loop forever.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/babybliss/babybliss-backend/internal/logs"
	"github.com/babybliss/babybliss-backend/internal/mailer"
)

// StartMailConsumer connects to the broker, declares the durable
// mail.outbound queue and consumes jobs until the process exits.  It runs a
// reconnect loop with capped backoff so a broker restart does not take the
// consumer down with it.
func StartMailConsumer(m *mailer.Mailer) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(BrokerURL())
		if err != nil {
			logs.WithError(err).Warnf("mail-consumer: dial failed; retrying in %s", backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, m); err != nil {
			logs.WithError(err).Warn("mail-consumer: consume loop ended; reconnecting")
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, m *mailer.Mailer) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		logs.WithError(err).Warn("mail-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(MailQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(MailQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleJob(d.Body, m); err != nil {
			logs.WithError(err).Warn("mail-consumer: job failed")
			_ = d.Nack(false, false) // reject, do not requeue
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleJob(body []byte, m *mailer.Mailer) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := m.Send(job.To, job.Subject, job.HTMLBody); err != nil {
		return fmt.Errorf("send %s to %s: %w", job.Kind, job.To, err)
	}
	return nil
}
