// Package repository contains the data access layer.  Every query is
// parameterized; no user input is ever concatenated into SQL text.  Repos
// translate driver failures into the shared apperr taxonomy so handlers can
// map them to HTTP statuses without inspecting driver error strings.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/babybliss/babybliss-backend/internal/apperr"
)

// mapErr converts a driver error into the shared taxonomy.  sql.ErrNoRows
// becomes ErrNotFound and MySQL duplicate-key (1062) becomes ErrConflict;
// anything else is wrapped as ErrInternal with the cause preserved for
// server-side logging.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if isDuplicate(err) {
		return apperr.ErrConflict
	}
	return fmt.Errorf("%w: %v", apperr.ErrInternal, err)
}

// isDuplicate detects a MySQL unique-key violation.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// clampLimit applies the per-resource default and the global cap of 200.
func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > 200 {
		return 200
	}
	return limit
}
