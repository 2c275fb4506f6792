package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/babybliss/babybliss-backend/internal/apperr"
)

// Archiving must copy every column of the live row, field for field, then
// delete it in the same transaction.
func TestArchiveAndDelete(t *testing.T) {
	cols := "id,first_name,last_name,email,phone,event_date,guests,venue,package,package_price,special_requests,images,status,assigned_staff_id,created_at,updated_at"
	archive := regexp.QuoteMeta("INSERT INTO archived_bookings ("+cols+") SELECT "+cols+" FROM bookings WHERE id=?")

	t.Run("copies then deletes in one transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectExec(archive).WithArgs(42).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE id=?")).WithArgs(42).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		if err := NewBookingRepo(db).ArchiveAndDelete(context.Background(), 42); err != nil {
			t.Fatalf("ArchiveAndDelete: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("missing booking rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectExec(archive).WithArgs(42).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		if err := NewBookingRepo(db).ArchiveAndDelete(context.Background(), 42); !errors.Is(err, apperr.ErrNotFound) {
			t.Fatalf("ArchiveAndDelete error = %v, want %v", err, apperr.ErrNotFound)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatal(err)
		}
	})
}
