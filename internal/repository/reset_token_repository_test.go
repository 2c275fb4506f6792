package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

const resetSelect = "SELECT id, user_id, email, token, expires_at, used, created_at FROM password_reset_tokens WHERE token=? LIMIT 1"

func resetRow(used bool, expires time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "email", "token", "expires_at", "used", "created_at"}).
		AddRow(7, 3, "user@example.com", "tok", expires, used, time.Now())
}

func TestResetTokenGetByTokenClassification(t *testing.T) {
	future := time.Now().UTC().Add(time.Hour)
	past := time.Now().UTC().Add(-time.Hour)

	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		wantErr error
	}{
		{"no row", sqlmock.NewRows([]string{"id", "user_id", "email", "token", "expires_at", "used", "created_at"}), ErrResetInvalid},
		{"already used", resetRow(true, future), ErrResetUsed},
		{"expired", resetRow(false, past), ErrResetExpired},
		{"valid", resetRow(false, future), nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatal(err)
			}
			defer db.Close()
			mock.ExpectQuery(regexp.QuoteMeta(resetSelect)).WithArgs("tok").WillReturnRows(tc.rows)

			got, err := NewResetTokenRepo(db).GetByToken(context.Background(), "tok")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("GetByToken error = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr == nil && got.ID != 7 {
				t.Fatalf("GetByToken ID = %d, want 7", got.ID)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

// A second redemption of the same token must fail: the used=0 guard leaves
// the UPDATE with zero affected rows.
func TestResetTokenMarkUsedOnce(t *testing.T) {
	const markUsed = "UPDATE password_reset_tokens SET used=1 WHERE id=? AND used=0"

	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"first redemption", 1, nil},
		{"second redemption", 0, ErrResetUsed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatal(err)
			}
			defer db.Close()
			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(markUsed)).WithArgs(7).
				WillReturnResult(sqlmock.NewResult(0, tc.affected))
			mock.ExpectRollback()

			tx, err := db.Begin()
			if err != nil {
				t.Fatal(err)
			}
			got := NewResetTokenRepo(db).MarkUsedTx(context.Background(), tx, 7)
			if !errors.Is(got, tc.wantErr) {
				t.Fatalf("MarkUsedTx error = %v, want %v", got, tc.wantErr)
			}
			tx.Rollback()
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatal(err)
			}
		})
	}
}
