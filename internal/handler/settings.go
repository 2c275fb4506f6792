package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/babybliss/babybliss-backend/internal/apperr"
	"github.com/babybliss/babybliss-backend/internal/audit"
	"github.com/babybliss/babybliss-backend/internal/middleware"
	"github.com/babybliss/babybliss-backend/internal/repository"
)

type SettingsHandler struct {
	Settings *repository.SettingRepo
	Audit    *audit.Logger
}

func NewSettingsHandler(s *repository.SettingRepo, a *audit.Logger) *SettingsHandler {
	return &SettingsHandler{Settings: s, Audit: a}
}

// Get returns every setting grouped by section.  This is public: the
// frontend reads business hours and contact details before anyone logs in.
func (h *SettingsHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	all, err := h.Settings.GetAll(ctx)
	if err != nil {
		return fail(c, err)
	}
	sections := map[string]map[string]string{}
	for _, s := range all {
		sec := s.Section
		if sec == "" {
			sec = "general"
		}
		if sections[sec] == nil {
			sections[sec] = map[string]string{}
		}
		sections[sec][s.Key] = s.Value
	}
	return ok(c, http.StatusOK, echo.Map{"settings": sections})
}

// parseSettingsBody accepts the three shapes clients send under "settings":
// the sectioned map GET returns, a flat key/value map, or an explicit list
// of {key,value,section} objects.  Map entries come back sorted by key so
// the write order is stable.
func parseSettingsBody(body []byte) ([]repository.Setting, error) {
	var envelope struct {
		Settings json.RawMessage `json:"settings"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Settings) == 0 {
		return nil, fmt.Errorf("%w: settings field is required", apperr.ErrValidation)
	}

	var list []repository.Setting
	if err := json.Unmarshal(envelope.Settings, &list); err == nil {
		for _, s := range list {
			if s.Key == "" {
				return nil, fmt.Errorf("%w: every setting needs a key", apperr.ErrValidation)
			}
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: settings list is empty", apperr.ErrValidation)
		}
		return list, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(envelope.Settings, &raw); err != nil || len(raw) == 0 {
		return nil, fmt.Errorf("%w: settings must be a map or a list", apperr.ErrValidation)
	}
	var out []repository.Setting
	for k, v := range raw {
		var flat string
		if err := json.Unmarshal(v, &flat); err == nil {
			out = append(out, repository.Setting{Key: k, Value: flat, Section: "general"})
			continue
		}
		var section map[string]string
		if err := json.Unmarshal(v, &section); err != nil {
			return nil, fmt.Errorf("%w: setting %q must be a string or a section map", apperr.ErrValidation, k)
		}
		for sk, sv := range section {
			out = append(out, repository.Setting{Key: sk, Value: sv, Section: k})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: settings map is empty", apperr.ErrValidation)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Section != out[j].Section {
			return out[i].Section < out[j].Section
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// Put replaces the submitted keys, leaving everything else untouched.  The
// body mirrors what Get serves, so a client can PUT back what it read; the
// upsert makes retries harmless.
func (h *SettingsHandler) Put(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}
	settings, err := parseSettingsBody(body)
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Settings.Upsert(ctx, settings); err != nil {
		return fail(c, err)
	}
	p, _ := middleware.Principal(c)
	h.Audit.Record(ctx, p, "settings_updated", "business settings changed", c.RealIP())
	return ok(c, http.StatusOK, echo.Map{"message": "settings saved"})
}
