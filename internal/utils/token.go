package utils

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
)

// NewToken returns a cryptographically random opaque token encoded as hex.
// Used for both session tokens and password reset tokens.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// BearerToken extracts the token from an Authorization header value.  The
// "Bearer" keyword is matched case-insensitively; an empty string means the
// header is absent or malformed.
func BearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether s passes a standard email-format check.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}
