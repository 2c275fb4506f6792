package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/babybliss/babybliss-backend/internal/apperr"
	"github.com/babybliss/babybliss-backend/internal/auth"
	"github.com/babybliss/babybliss-backend/internal/utils"
)

// User mirrors the 'users' table.  SessionToken and SessionExpires are
// nullable: both NULL means no active session.
type User struct {
	ID             uint64
	Email          string
	PasswordHash   string
	Role           string
	SessionToken   sql.NullString
	SessionExpires sql.NullTime
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions that
// span multiple repositories (e.g. redeeming a reset token updates both the
// user row and the token row).
func (r *UserRepo) DB() *sql.DB { return r.db }

const userCols = "id,email,password_hash,role,session_token,session_expires,created_at,updated_at"

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role,
		&u.SessionToken, &u.SessionExpires, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user and returns its ID.  The password is hashed here so
// a plaintext value never leaves the call stack.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, mapErr(err)
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES (?,?,?)",
		email, hash, role)
	if err != nil {
		return 0, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, mapErr(err)
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
	return u, mapErr(err)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
	return u, mapErr(err)
}

// Authenticate resolves a bearer token to a principal.  The single lookup
// requires both a matching token and an unexpired session, so a caller
// cannot tell a bad token from an expired one.  Expired rows are not
// cleared here; expiry is lazy.
func (r *UserRepo) Authenticate(ctx context.Context, token string) (auth.Principal, error) {
	var (
		id    uint64
		email string
		role  string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, role FROM users WHERE session_token=? AND session_expires>NOW() LIMIT 1",
		token).Scan(&id, &email, &role)
	if err != nil {
		if err == sql.ErrNoRows {
			return auth.Principal{}, apperr.ErrUnauthorized
		}
		return auth.Principal{}, mapErr(err)
	}
	return auth.Principal{UserID: id, Email: email, Role: auth.ParseRole(role)}, nil
}

// SetSession stores a new session token and expiry on the user row.  A
// login overwrites whatever token was there before, which implicitly ends
// any other active session for that user (single active session per user).
func (r *UserRepo) SetSession(ctx context.Context, userID uint64, token string, expires time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET session_token=?, session_expires=? WHERE id=?",
		token, expires, userID)
	return mapErr(err)
}

// ClearSession nulls both session columns, returning the row to the
// no-session state.
func (r *UserRepo) ClearSession(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET session_token=NULL, session_expires=NULL WHERE id=?", userID)
	return mapErr(err)
}

// UpdatePassword replaces the stored hash.  Used by profile password change
// and reset redemption (the latter through UpdatePasswordTx).
func (r *UserRepo) UpdatePassword(ctx context.Context, userID uint64, hash string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, userID)
	return mapErr(err)
}

// UpdatePasswordTx is the transactional variant used while redeeming a
// password reset token.
func (r *UserRepo) UpdatePasswordTx(ctx context.Context, tx *sql.Tx, userID uint64, hash string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, userID)
	return mapErr(err)
}

// UpdateEmail changes the login address.  The unique index on email turns a
// taken address into ErrConflict.
func (r *UserRepo) UpdateEmail(ctx context.Context, userID uint64, email string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET email=? WHERE id=?", email, userID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM users WHERE id=?", userID).Scan(&exists); err != nil {
			return mapErr(err)
		}
		if exists == 0 {
			return apperr.ErrNotFound
		}
	}
	return nil
}

// ListByRole returns users of one role ordered by creation, newest first.
func (r *UserRepo) ListByRole(ctx context.Context, role string, limit, offset int) ([]User, error) {
	limit = clampLimit(limit, 50)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userCols+" FROM users WHERE role=? ORDER BY created_at DESC LIMIT ? OFFSET ?",
		role, limit, offset)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role,
			&u.SessionToken, &u.SessionExpires, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, u)
	}
	return out, mapErr(rows.Err())
}

// Delete removes a user row.  Profiles and reset tokens cascade via FK.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
