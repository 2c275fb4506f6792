package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

// A payment recorded as paid carries its payment_date in the insert itself;
// no follow-up UPDATE is involved.
func TestPaymentCreateStampsDate(t *testing.T) {
	insert := regexp.QuoteMeta("INSERT INTO payments (booking_id,amount,payment_status,payment_method,payment_date,transaction_reference,notes) VALUES (?,?,?,?,?,?,?)")
	paidAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		date     sql.NullTime
		wantDate any
	}{
		{"paid stamps date", sql.NullTime{Time: paidAt, Valid: true}, paidAt},
		{"pending stays null", sql.NullTime{}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatal(err)
			}
			defer db.Close()
			mock.ExpectBegin()
			mock.ExpectExec(insert).
				WithArgs(4, 250.0, "paid", "card", tc.wantDate, "PAY-4-1", nil).
				WillReturnResult(sqlmock.NewResult(11, 1))
			mock.ExpectCommit()

			p := Payment{
				BookingID:            4,
				Amount:               250.0,
				PaymentStatus:        "paid",
				PaymentMethod:        "card",
				PaymentDate:          tc.date,
				TransactionReference: "PAY-4-1",
			}
			if err := NewPaymentRepo(db).Create(context.Background(), &p); err != nil {
				t.Fatalf("Create: %v", err)
			}
			if p.ID != 11 {
				t.Errorf("ID = %d, want 11", p.ID)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatal(err)
			}
		})
	}
}
