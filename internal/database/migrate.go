package database

// Versioned schema migrations, applied exactly once at startup.  Each entry
// runs inside its own transaction where MySQL allows it (DDL is
// auto-committing, so the version bookkeeping is written only after the
// statement succeeds).  Handlers never issue DDL at request time.

import (
	"context"
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	stmt    string
}

var migrations = []migration{
	{1, "create_users", `
        CREATE TABLE IF NOT EXISTS users (
            id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
            email VARCHAR(255) NOT NULL UNIQUE,
            password_hash VARCHAR(255) NOT NULL,
            role ENUM('admin','staff','client') NOT NULL DEFAULT 'client',
            session_token VARCHAR(128) NULL UNIQUE,
            session_expires DATETIME NULL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{2, "create_profiles", `
        CREATE TABLE IF NOT EXISTS profiles (
            id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
            user_id BIGINT UNSIGNED NOT NULL UNIQUE,
            first_name VARCHAR(100) NOT NULL DEFAULT '',
            last_name VARCHAR(100) NOT NULL DEFAULT '',
            full_name VARCHAR(200) NOT NULL DEFAULT '',
            phone VARCHAR(50) NOT NULL DEFAULT '',
            bio TEXT NULL,
            profile_image VARCHAR(500) NULL,
            business_name VARCHAR(200) NOT NULL DEFAULT '',
            business_address VARCHAR(500) NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
            CONSTRAINT fk_profiles_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{3, "create_password_reset_tokens", `
        CREATE TABLE IF NOT EXISTS password_reset_tokens (
            id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
            user_id BIGINT UNSIGNED NOT NULL,
            email VARCHAR(255) NOT NULL,
            token VARCHAR(128) NOT NULL UNIQUE,
            expires_at DATETIME NOT NULL,
            used TINYINT(1) NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            CONSTRAINT fk_reset_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{4, "create_bookings", `
        CREATE TABLE IF NOT EXISTS bookings (
            id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
            first_name VARCHAR(100) NOT NULL,
            last_name VARCHAR(100) NOT NULL DEFAULT '',
            email VARCHAR(255) NOT NULL,
            phone VARCHAR(50) NOT NULL DEFAULT '',
            event_date DATE NOT NULL,
            guests INT NOT NULL DEFAULT 0,
            venue VARCHAR(255) NOT NULL DEFAULT '',
            package VARCHAR(100) NOT NULL DEFAULT '',
            package_price DECIMAL(10,2) NOT NULL DEFAULT 0,
            special_requests TEXT NULL,
            images TEXT NULL,
            status ENUM('pending','confirmed','cancelled') NOT NULL DEFAULT 'pending',
            assigned_staff_id BIGINT UNSIGNED NULL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
            INDEX idx_bookings_status (status),
            INDEX idx_bookings_event_date (event_date)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{5, "create_archived_bookings", `
        CREATE TABLE IF NOT EXISTS archived_bookings (
            id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
            first_name VARCHAR(100) NOT NULL,
            last_name VARCHAR(100) NOT NULL DEFAULT '',
            email VARCHAR(255) NOT NULL,
            phone VARCHAR(50) NOT NULL DEFAULT '',
            event_date DATE NOT NULL,
            guests INT NOT NULL DEFAULT 0,
            venue VARCHAR(255) NOT NULL DEFAULT '',
            package VARCHAR(100) NOT NULL DEFAULT '',
            package_price DECIMAL(10,2) NOT NULL DEFAULT 0,
            special_requests TEXT NULL,
            images TEXT NULL,
            status ENUM('pending','confirmed','cancelled') NOT NULL DEFAULT 'pending',
            assigned_staff_id BIGINT UNSIGNED NULL,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            archived_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{6, "create_payments", `
        CREATE TABLE IF NOT EXISTS payments (
            id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
            booking_id BIGINT UNSIGNED NOT NULL,
            amount DECIMAL(10,2) NOT NULL DEFAULT 0,
            payment_status ENUM('pending','paid','refunded') NOT NULL DEFAULT 'pending',
            payment_method VARCHAR(50) NOT NULL DEFAULT '',
            payment_date DATETIME NULL,
            transaction_reference VARCHAR(100) NOT NULL DEFAULT '',
            notes TEXT NULL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
            INDEX idx_payments_booking (booking_id),
            INDEX idx_payments_status (payment_status)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{7, "create_expenses", `
        CREATE TABLE IF NOT EXISTS expenses (
            id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
            description VARCHAR(500) NOT NULL,
            category VARCHAR(100) NOT NULL DEFAULT '',
            amount DECIMAL(10,2) NOT NULL DEFAULT 0,
            expense_date DATE NOT NULL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{8, "create_archived_expenses", `
        CREATE TABLE IF NOT EXISTS archived_expenses (
            id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
            description VARCHAR(500) NOT NULL,
            category VARCHAR(100) NOT NULL DEFAULT '',
            amount DECIMAL(10,2) NOT NULL DEFAULT 0,
            expense_date DATE NOT NULL,
            created_at DATETIME NOT NULL,
            archived_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{9, "create_messages", `
        CREATE TABLE IF NOT EXISTS messages (
            id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
            name VARCHAR(200) NOT NULL,
            email VARCHAR(255) NOT NULL,
            phone VARCHAR(50) NOT NULL DEFAULT '',
            subject VARCHAR(255) NOT NULL DEFAULT '',
            message TEXT NOT NULL,
            rating INT NULL,
            status ENUM('unread','read') NOT NULL DEFAULT 'unread',
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{10, "create_archived_messages", `
        CREATE TABLE IF NOT EXISTS archived_messages (
            id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
            name VARCHAR(200) NOT NULL,
            email VARCHAR(255) NOT NULL,
            phone VARCHAR(50) NOT NULL DEFAULT '',
            subject VARCHAR(255) NOT NULL DEFAULT '',
            message TEXT NOT NULL,
            rating INT NULL,
            status ENUM('unread','read') NOT NULL DEFAULT 'unread',
            created_at DATETIME NOT NULL,
            archived_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{11, "create_permanently_deleted_messages", `
        CREATE TABLE IF NOT EXISTS permanently_deleted_messages (
            id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
            name VARCHAR(200) NOT NULL,
            email VARCHAR(255) NOT NULL,
            phone VARCHAR(50) NOT NULL DEFAULT '',
            subject VARCHAR(255) NOT NULL DEFAULT '',
            message TEXT NOT NULL,
            rating INT NULL,
            status ENUM('unread','read') NOT NULL DEFAULT 'unread',
            created_at DATETIME NOT NULL,
            deleted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{12, "create_audit_logs", `
        CREATE TABLE IF NOT EXISTS audit_logs (
            id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
            user_id BIGINT UNSIGNED NULL,
            user_name VARCHAR(255) NOT NULL DEFAULT '',
            activity VARCHAR(100) NOT NULL,
            details TEXT NULL,
            ip_address VARCHAR(64) NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            INDEX idx_audit_user (user_id),
            INDEX idx_audit_created (created_at)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{13, "create_settings", `
        CREATE TABLE IF NOT EXISTS settings (
            id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
            setting_key VARCHAR(100) NOT NULL UNIQUE,
            setting_value TEXT NOT NULL,
            section VARCHAR(100) NOT NULL DEFAULT 'general',
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
}

// Migrate applies all pending migrations in version order.  The applied set
// is tracked in schema_migrations so a restart is a no-op.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS schema_migrations (
            version INT NOT NULL PRIMARY KEY,
            name VARCHAR(200) NOT NULL,
            applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        ) ENGINE=InnoDB`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	for _, m := range migrations {
		var exists int
		err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM schema_migrations WHERE version=?", m.version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.version, err)
		}
		if exists > 0 {
			continue
		}
		if _, err := db.ExecContext(ctx, m.stmt); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, name) VALUES (?,?)", m.version, m.name); err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
	}
	return nil
}
