// Package mailer delivers transactional email over SMTP.  Delivery is a
// best-effort side channel everywhere it is used: callers log failures and
// carry on, so a misconfigured mail server never breaks a user-facing flow.
package mailer

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/babybliss/babybliss-backend/internal/config"
	"github.com/babybliss/babybliss-backend/internal/logs"
)

// Mailer sends mail through the configured SMTP server.  With no
// credentials configured it runs in dev mode and only logs the message.
type Mailer struct {
	cfg     config.Config
	devMode bool
}

func New(cfg config.Config) *Mailer {
	dev := cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPass == ""
	if dev {
		logs.Logger.Info("mailer running in dev mode; outbound mail will be logged, not sent")
	}
	return &Mailer{cfg: cfg, devMode: dev}
}

// Send delivers one HTML message.  In dev mode the message is logged and
// reported as sent.
func (m *Mailer) Send(to, subject, htmlBody string) error {
	if m.devMode {
		logs.Logger.WithFields(map[string]interface{}{
			"to": to, "subject": subject,
		}).Info("dev mode mail (not delivered)")
		return nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: Baby Bliss <%s>\r\n", m.cfg.SMTPFrom)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	auth := smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)

	c, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.SMTPHost}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(m.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(msg.String())); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return c.Quit()
}

// ResetEmail builds the password-reset message body.
func ResetEmail(baseURL, token string) (subject, body string) {
	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(baseURL, "/"), token)
	subject = "Reset your Baby Bliss password"
	body = fmt.Sprintf(`
        <h2>Password Reset</h2>
        <p>We received a request to reset your password. The link below is valid for one hour and can be used once.</p>
        <p><a href="%s">Reset your password</a></p>
        <p>If you did not request this, you can ignore this email.</p>`, link)
	return subject, body
}

// ContactAckEmail builds the auto-reply for a contact form submission.
func ContactAckEmail(name string) (subject, body string) {
	subject = "We received your message"
	body = fmt.Sprintf(`
        <h2>Thank you, %s!</h2>
        <p>Your message has reached the Baby Bliss team. We usually reply within one business day.</p>`, name)
	return subject, body
}
