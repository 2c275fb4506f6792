package importer

import (
	"strings"
	"testing"
	"time"
)

func TestMapHeaders(t *testing.T) {
	cases := []struct {
		name    string
		headers []string
		field   string
		wantIdx int
	}{
		{"exact", []string{"first_name", "email"}, "email", 1},
		{"case insensitive", []string{"First_Name", "EMAIL"}, "email", 1},
		{"alias firstname", []string{"FirstName", "Mail"}, "first_name", 0},
		{"alias surname", []string{"name", "surname"}, "last_name", 1},
		{"alias pax", []string{"name", "pax"}, "guests", 1},
		{"alias price", []string{"name", "Total"}, "package_price", 1},
		{"spaced header", []string{"name", "event date"}, "event_date", 1},
		{"bom stripped", []string{"\ufefffirst_name"}, "first_name", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapHeaders(tc.headers)
			idx, ok := got[tc.field]
			if !ok {
				t.Fatalf("field %q not mapped from %v", tc.field, tc.headers)
			}
			if idx != tc.wantIdx {
				t.Errorf("field %q mapped to column %d, want %d", tc.field, idx, tc.wantIdx)
			}
		})
	}

	t.Run("first alias wins", func(t *testing.T) {
		// first_name prefers an explicit header over the generic "name".
		got := MapHeaders([]string{"name", "first_name"})
		if got["first_name"] != 1 {
			t.Errorf("first_name mapped to %d, want 1", got["first_name"])
		}
	})

	t.Run("unmatched absent", func(t *testing.T) {
		got := MapHeaders([]string{"colour", "size"})
		if len(got) != 0 {
			t.Errorf("unexpected mappings: %v", got)
		}
	})
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-06-15", "2025-06-15", true},
		{"15/06/2025", "2025-06-15", true},
		{"2025/06/15", "2025-06-15", true},
		{"2 January 2026", "2026-01-02", true},
		{"yesterday", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := parseDate(tc.in)
		if ok != tc.ok {
			t.Errorf("parseDate(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != tc.want {
			t.Errorf("parseDate(%q) = %s, want %s", tc.in, got.Format("2006-01-02"), tc.want)
		}
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1500", 1500, true},
		{"1,500.50", 1500.50, true},
		{"$2500", 2500, true},
		{"₱10,000", 10000, true},
		{" € 99.95 ", 99.95, true},
		{"", 0, false},
		{"free", 0, false},
	}
	for _, tc := range cases {
		got, ok := parsePrice(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parsePrice(%q) = %v, %v, want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]string{
		"confirmed": "confirmed",
		"Confirm":   "confirmed",
		"APPROVED":  "confirmed",
		"cancelled": "cancelled",
		"canceled":  "cancelled",
		"Cancel":    "cancelled",
		"pending":   "pending",
		"":          "pending",
		"whatever":  "pending",
	}
	for in, want := range cases {
		if got := normalizeStatus(in); got != want {
			t.Errorf("normalizeStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPlaceholderEmail(t *testing.T) {
	a := PlaceholderEmail()
	if !strings.HasPrefix(a, "import-") || !strings.HasSuffix(a, "@placeholder.invalid") {
		t.Errorf("unexpected placeholder shape: %s", a)
	}
	if b := PlaceholderEmail(); a == b {
		t.Error("two placeholders collided")
	}
}

func TestBuildBookingBackfill(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	cols := MapHeaders([]string{"first_name", "last_name", "email", "event_date", "guests", "package_price", "status"})

	t.Run("complete row", func(t *testing.T) {
		b, reason := buildBooking(
			[]string{"Ana", "Cruz", "ana@example.com", "2026-05-01", "30", "₱15,000", "confirmed"},
			cols, Options{Now: now})
		if reason != "" {
			t.Fatalf("rejected: %s", reason)
		}
		if b.Email != "ana@example.com" || b.Guests != 30 || b.PackagePrice != 15000 || b.Status != "confirmed" {
			t.Errorf("unexpected booking: %+v", b)
		}
	})

	t.Run("missing email backfilled", func(t *testing.T) {
		b, reason := buildBooking(
			[]string{"Ana", "Cruz", "", "2026-05-01", "", "", ""},
			cols, Options{Now: now})
		if reason != "" {
			t.Fatalf("rejected: %s", reason)
		}
		if !strings.HasSuffix(b.Email, "@placeholder.invalid") {
			t.Errorf("email not backfilled: %s", b.Email)
		}
		if b.Status != "pending" {
			t.Errorf("status = %s, want pending", b.Status)
		}
	})

	t.Run("missing date defaults one month out", func(t *testing.T) {
		b, reason := buildBooking(
			[]string{"Ana", "Cruz", "ana@example.com", "", "", "", ""},
			cols, Options{Now: now})
		if reason != "" {
			t.Fatalf("rejected: %s", reason)
		}
		if want := now.AddDate(0, 1, 0); !b.EventDate.Equal(want) {
			t.Errorf("event date = %s, want %s", b.EventDate, want)
		}
	})

	t.Run("missing name rejected", func(t *testing.T) {
		if _, reason := buildBooking(
			[]string{"", "Cruz", "ana@example.com", "2026-05-01", "", "", ""},
			cols, Options{Now: now}); reason == "" {
			t.Error("row without a name accepted")
		}
	})

	t.Run("strict rejects gaps", func(t *testing.T) {
		strict := Options{Now: now, Strict: true}
		if _, reason := buildBooking(
			[]string{"Ana", "Cruz", "", "2026-05-01", "", "", ""}, cols, strict); reason == "" {
			t.Error("strict mode accepted missing email")
		}
		if _, reason := buildBooking(
			[]string{"Ana", "Cruz", "ana@example.com", "", "", "", ""}, cols, strict); reason == "" {
			t.Error("strict mode accepted missing date")
		}
		if _, reason := buildBooking(
			[]string{"Ana", "Cruz", "ana@example.com", "not a date", "", "", ""}, cols, strict); reason == "" {
			t.Error("strict mode accepted unparseable date")
		}
	})
}
