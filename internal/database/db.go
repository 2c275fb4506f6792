// Package database opens the MySQL pool and runs schema migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/babybliss/babybliss-backend/internal/logs"
)

// Open connects to MySQL with retries and verifies the connection.  The
// booking tables hold DATE and DATETIME columns, so parseTime is required;
// loc=UTC keeps every timestamp comparable regardless of server timezone.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Container starts race the database; a short retry window covers it.
	var pingErr error
	for attempt := 1; attempt <= 5; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		pingErr = db.PingContext(ctx)
		cancel()
		if pingErr == nil {
			return db, nil
		}
		logs.WithError(pingErr).WithField("attempt", attempt).Warn("database not ready")
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	db.Close()
	return nil, fmt.Errorf("database unreachable: %w", pingErr)
}
