package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// Writing the same batch twice issues the same ON DUPLICATE KEY statements
// and succeeds both times.
func TestSettingUpsertIdempotent(t *testing.T) {
	upsert := regexp.QuoteMeta("INSERT INTO settings (setting_key, setting_value, section) VALUES (?,?,?) ON DUPLICATE KEY UPDATE setting_value=VALUES(setting_value), section=VALUES(section)")
	batch := []Setting{
		{Key: "business_name", Value: "Baby Bliss", Section: "general"},
		{Key: "notify_email", Value: "owner@example.com", Section: "notifications"},
	}

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	for pass := 0; pass < 2; pass++ {
		mock.ExpectBegin()
		for _, s := range batch {
			mock.ExpectExec(upsert).WithArgs(s.Key, s.Value, s.Section).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
		mock.ExpectCommit()
	}

	repo := NewSettingRepo(db)
	for i := 0; i < 2; i++ {
		if err := repo.Upsert(context.Background(), batch); err != nil {
			t.Fatalf("Upsert pass %d: %v", i+1, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
