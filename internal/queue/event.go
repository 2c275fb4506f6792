// Package queue defines message payloads exchanged over the message broker.
package queue

// MailQueueName is the durable queue carrying outbound email jobs.
const MailQueueName = "mail.outbound"

// EmailJob is published when a handler wants a message delivered without
// blocking the request on SMTP.  The consumer performs the actual send.
type EmailJob struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	Kind     string `json:"kind"` // password_reset | contact_ack
	QueuedAt string `json:"queued_at"`
}
