// Package audit records back-office activity.  Writes are best-effort: a
// failed insert is logged server-side and swallowed so an audit problem can
// never fail the request that triggered it.
package audit

import (
	"context"

	"github.com/babybliss/babybliss-backend/internal/auth"
	"github.com/babybliss/babybliss-backend/internal/logs"
	"github.com/babybliss/babybliss-backend/internal/repository"
)

// Logger appends audit rows through the repository.
type Logger struct {
	repo *repository.AuditRepo
}

func New(repo *repository.AuditRepo) *Logger { return &Logger{repo: repo} }

// Record appends one activity row for the given principal.  ip may be empty
// for internal operations.
func (l *Logger) Record(ctx context.Context, p auth.Principal, activity, details, ip string) {
	if l == nil || l.repo == nil {
		return
	}
	if err := l.repo.Insert(ctx, p.UserID, p.Email, activity, details, ip); err != nil {
		logs.WithError(err).WithField("activity", activity).Warn("audit insert failed")
	}
}

// RecordSystem appends a row with no acting user (public form submissions,
// import runs started before authentication context is relevant).
func (l *Logger) RecordSystem(ctx context.Context, activity, details, ip string) {
	l.Record(ctx, auth.Principal{}, activity, details, ip)
}
