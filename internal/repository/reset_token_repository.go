package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ResetToken mirrors the 'password_reset_tokens' table.  A token moves from
// used=false to used=true exactly once and never back.
type ResetToken struct {
	ID        uint64
	UserID    uint64
	Email     string
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Redemption failure reasons.  The used flag and the expiry are checked
// independently; handlers surface each as 400 with the matching message.
var (
	ErrResetInvalid = errors.New("invalid or expired token")
	ErrResetUsed    = errors.New("token already used")
	ErrResetExpired = errors.New("token expired")
)

type ResetTokenRepo struct{ db *sql.DB }

func NewResetTokenRepo(db *sql.DB) *ResetTokenRepo { return &ResetTokenRepo{db: db} }

func (r *ResetTokenRepo) DB() *sql.DB { return r.db }

// Insert stores a fresh reset token for a user.
func (r *ResetTokenRepo) Insert(ctx context.Context, userID uint64, email, token string, expires time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO password_reset_tokens (user_id, email, token, expires_at) VALUES (?,?,?,?)",
		userID, email, token, expires)
	return mapErr(err)
}

// GetByToken loads a token row and classifies it.  Returns ErrResetInvalid
// when no row matches, ErrResetUsed when already redeemed and
// ErrResetExpired when past its expiry.  A valid row is returned with nil
// error.
func (r *ResetTokenRepo) GetByToken(ctx context.Context, token string) (ResetToken, error) {
	var t ResetToken
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, email, token, expires_at, used, created_at FROM password_reset_tokens WHERE token=? LIMIT 1",
		token).Scan(&t.ID, &t.UserID, &t.Email, &t.Token, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ResetToken{}, ErrResetInvalid
		}
		return ResetToken{}, mapErr(err)
	}
	if t.Used {
		return ResetToken{}, ErrResetUsed
	}
	if time.Now().UTC().After(t.ExpiresAt) {
		return ResetToken{}, ErrResetExpired
	}
	return t, nil
}

// MarkUsedTx flips used to true inside the caller's transaction.  The
// `used=0` guard makes redemption race-safe: if two requests redeem the
// same token concurrently, only one UPDATE reports an affected row.
func (r *ResetTokenRepo) MarkUsedTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE password_reset_tokens SET used=1 WHERE id=? AND used=0", id)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapErr(err)
	}
	if n == 0 {
		return ErrResetUsed
	}
	return nil
}

// DeleteExpired prunes tokens past their expiry.  Called opportunistically,
// not on a schedule; correctness never depends on it.
func (r *ResetTokenRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM password_reset_tokens WHERE expires_at < NOW() AND used=0")
	return mapErr(err)
}
