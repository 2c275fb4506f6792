package repository

import (
	"context"
	"database/sql"
	"time"
)

// AuditLog mirrors the append-only 'audit_logs' table.  The application
// never updates or deletes rows here.
type AuditLog struct {
	ID        uint64
	UserID    sql.NullInt64
	UserName  string
	Activity  string
	Details   string
	IPAddress string
	CreatedAt time.Time
}

type AuditRepo struct{ db *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// Insert appends one audit row.
func (r *AuditRepo) Insert(ctx context.Context, userID uint64, userName, activity, details, ip string) error {
	uid := sql.NullInt64{Int64: int64(userID), Valid: userID != 0}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO audit_logs (user_id, user_name, activity, details, ip_address) VALUES (?,?,?,?,?)",
		uid, userName, activity, details, ip)
	return mapErr(err)
}

// List returns a page of recent activity, newest first.
func (r *AuditRepo) List(ctx context.Context, limit, offset int) ([]AuditLog, error) {
	limit = clampLimit(limit, 50)
	rows, err := r.db.QueryContext(ctx,
		"SELECT id,user_id,user_name,activity,details,ip_address,created_at FROM audit_logs ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []AuditLog
	for rows.Next() {
		var a AuditLog
		var details sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &a.UserName, &a.Activity, &details, &a.IPAddress, &a.CreatedAt); err != nil {
			return nil, mapErr(err)
		}
		a.Details = details.String
		out = append(out, a)
	}
	return out, mapErr(rows.Err())
}
