package handler

import (
	"errors"
	"testing"

	"github.com/babybliss/babybliss-backend/internal/apperr"
	"github.com/babybliss/babybliss-backend/internal/repository"
)

func TestParseSettingsBody(t *testing.T) {
	t.Run("sectioned map round-trips the GET shape", func(t *testing.T) {
		got, err := parseSettingsBody([]byte(
			`{"settings":{"business":{"business_name":"Baby Bliss","phone":"0917"},"hours":{"open":"09:00"}}}`))
		if err != nil {
			t.Fatalf("parseSettingsBody: %v", err)
		}
		want := []repository.Setting{
			{Key: "business_name", Value: "Baby Bliss", Section: "business"},
			{Key: "phone", Value: "0917", Section: "business"},
			{Key: "open", Value: "09:00", Section: "hours"},
		}
		if len(got) != len(want) {
			t.Fatalf("got %d settings, want %d: %+v", len(got), len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("settings[%d] = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("flat map defaults to general section", func(t *testing.T) {
		got, err := parseSettingsBody([]byte(`{"settings":{"business_name":"Baby Bliss"}}`))
		if err != nil {
			t.Fatalf("parseSettingsBody: %v", err)
		}
		if len(got) != 1 || got[0].Key != "business_name" || got[0].Section != "general" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("explicit list", func(t *testing.T) {
		got, err := parseSettingsBody([]byte(
			`{"settings":[{"key":"open","value":"09:00","section":"hours"}]}`))
		if err != nil {
			t.Fatalf("parseSettingsBody: %v", err)
		}
		if len(got) != 1 || got[0].Section != "hours" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("rejects bad shapes", func(t *testing.T) {
		for name, body := range map[string]string{
			"no settings field": `{}`,
			"empty map":         `{"settings":{}}`,
			"empty list":        `{"settings":[]}`,
			"scalar":            `{"settings":42}`,
			"keyless entry":     `{"settings":[{"value":"x"}]}`,
			"nested non-string": `{"settings":{"hours":{"open":5}}}`,
			"not json":          `{`,
		} {
			if _, err := parseSettingsBody([]byte(body)); !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("%s: err = %v, want validation error", name, err)
			}
		}
	})
}
