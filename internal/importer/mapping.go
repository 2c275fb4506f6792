// Package importer ingests CSV exports from the previous booking system.
// Column mapping is header-driven: each logical field has an ordered list
// of acceptable header aliases and the first case-insensitive match wins.
// Missing required fields are backfilled with generated placeholders unless
// strict mode is on, because finishing the import matters more to the
// business than per-row data quality.
package importer

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// fieldAliases maps a logical field to the headers that may carry it.
var fieldAliases = map[string][]string{
	"first_name":    {"first_name", "firstname", "first name", "name", "client_name", "client"},
	"last_name":     {"last_name", "lastname", "last name", "surname"},
	"email":         {"email", "e-mail", "email_address", "email address", "mail"},
	"phone":         {"phone", "phone_number", "phone number", "mobile", "telephone", "contact"},
	"event_date":    {"event_date", "event date", "date", "eventdate", "booking_date"},
	"guests":        {"guests", "guest_count", "guest count", "attendees", "pax"},
	"venue":         {"venue", "location", "place"},
	"package":       {"package", "package_name", "plan"},
	"package_price": {"package_price", "price", "amount", "total", "package price"},
	"status":        {"status", "booking_status", "state"},
	"password":      {"password", "pass", "pwd"},
	"role":          {"role", "user_role", "type"},
}

// MapHeaders resolves CSV headers to logical field positions.  Unmatched
// fields are simply absent from the result; callers decide whether that is
// fatal.
func MapHeaders(headers []string) map[string]int {
	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	out := map[string]int{}
	for field, aliases := range fieldAliases {
		for _, alias := range aliases {
			found := -1
			for i, h := range norm {
				if h == alias {
					found = i
					break
				}
			}
			if found >= 0 {
				out[field] = found
				break
			}
		}
	}
	return out
}

// cell returns the mapped column value for a field, or "" when the field is
// unmapped or the row is short.
func cell(row []string, cols map[string]int, field string) string {
	i, ok := cols[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// PlaceholderEmail generates a syntactically valid fallback address.  The
// random component makes collisions unlikely within a run, but uniqueness
// is not guaranteed.
func PlaceholderEmail() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("import-%d@placeholder.invalid", time.Now().UnixNano())
	}
	return fmt.Sprintf("import-%s@placeholder.invalid", hex.EncodeToString(buf))
}

// parseDate accepts the date layouts seen in exports from the old system.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "02/01/2006", "01/02/2006", "2006/01/02", "2 January 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parsePrice strips currency symbols and thousands separators.
func parsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimLeft(s, "$€£₱ "))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// normalizeStatus maps free-form status text onto the closed booking enum.
func normalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "confirmed", "confirm", "approved":
		return "confirmed"
	case "cancelled", "canceled", "cancel":
		return "cancelled"
	default:
		return "pending"
	}
}
