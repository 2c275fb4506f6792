package repository

import (
	"context"
	"database/sql"
)

// Setting is one key/value row.  Values are stored as strings; callers that
// keep JSON in a value are responsible for encoding it.
type Setting struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Section string `json:"section"`
}

type SettingRepo struct{ db *sql.DB }

func NewSettingRepo(db *sql.DB) *SettingRepo { return &SettingRepo{db: db} }

// GetAll returns every setting keyed by setting_key.
func (r *SettingRepo) GetAll(ctx context.Context) (map[string]Setting, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT setting_key, setting_value, section FROM settings ORDER BY setting_key")
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := map[string]Setting{}
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Section); err != nil {
			return nil, mapErr(err)
		}
		out[s.Key] = s
	}
	return out, mapErr(rows.Err())
}

// Upsert writes a batch of settings.  ON DUPLICATE KEY UPDATE makes the
// operation idempotent: writing the same map twice leaves the same stored
// state as writing it once.
func (r *SettingRepo) Upsert(ctx context.Context, settings []Setting) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr(err)
	}
	defer tx.Rollback()
	for _, s := range settings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (setting_key, setting_value, section) VALUES (?,?,?)
             ON DUPLICATE KEY UPDATE setting_value=VALUES(setting_value), section=VALUES(section)`,
			s.Key, s.Value, s.Section); err != nil {
			return mapErr(err)
		}
	}
	return mapErr(tx.Commit())
}
