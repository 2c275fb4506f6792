package audit

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/babybliss/babybliss-backend/internal/auth"
	"github.com/babybliss/babybliss-backend/internal/repository"
)

const auditInsert = "INSERT INTO audit_logs (user_id, user_name, activity, details, ip_address) VALUES (?,?,?,?,?)"

// Public form submissions have no acting user; the row gets a NULL user_id.
func TestRecordSystemNullUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	mock.ExpectExec(regexp.QuoteMeta(auditInsert)).
		WithArgs(nil, "", "message_received", "contact message #5", "203.0.113.9").
		WillReturnResult(sqlmock.NewResult(1, 1))

	l := New(repository.NewAuditRepo(db))
	l.RecordSystem(context.Background(), "message_received", "contact message #5", "203.0.113.9")
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRecordWithPrincipal(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	mock.ExpectExec(regexp.QuoteMeta(auditInsert)).
		WithArgs(3, "admin@babybliss.local", "booking_deleted", "booking #9 archived", "203.0.113.9").
		WillReturnResult(sqlmock.NewResult(1, 1))

	l := New(repository.NewAuditRepo(db))
	p := auth.Principal{UserID: 3, Email: "admin@babybliss.local"}
	l.Record(context.Background(), p, "booking_deleted", "booking #9 archived", "203.0.113.9")
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
