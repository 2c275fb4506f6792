package mailer

import (
	"strings"
	"testing"
)

func TestResetEmail(t *testing.T) {
	subject, body := ResetEmail("https://babybliss.example/", "tok123")
	if subject == "" {
		t.Error("empty subject")
	}
	if !strings.Contains(body, "https://babybliss.example/reset-password?token=tok123") {
		t.Errorf("reset link missing or malformed:\n%s", body)
	}
	// Trailing slash on the base URL must not double up.
	if strings.Contains(body, "example//reset-password") {
		t.Errorf("double slash in link:\n%s", body)
	}
}

func TestContactAckEmail(t *testing.T) {
	_, body := ContactAckEmail("Ana")
	if !strings.Contains(body, "Ana") {
		t.Errorf("sender name missing:\n%s", body)
	}
}
