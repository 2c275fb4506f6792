package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/babybliss/babybliss-backend/internal/apperr"
)

// Message mirrors the 'messages' table (contact form submissions).  Deleted
// messages pass through two tiers: archived_messages first, then
// permanently_deleted_messages.
type Message struct {
	ID        uint64
	Name      string
	Email     string
	Phone     string
	Subject   string
	Body      string
	Rating    sql.NullInt64
	Status    string
	CreatedAt time.Time
}

type MessageRepo struct{ db *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

const messageCols = "id,name,email,phone,subject,message,rating,status,created_at"

func scanMessage(sc interface{ Scan(...any) error }) (Message, error) {
	var m Message
	err := sc.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Body,
		&m.Rating, &m.Status, &m.CreatedAt)
	return m, err
}

// List returns a page of live messages plus the total matching count.
func (r *MessageRepo) List(ctx context.Context, status string, limit, offset int) ([]Message, int, error) {
	cond := "1=1"
	args := []any{}
	if status != "" {
		cond = "status=?"
		args = append(args, status)
	}
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}
	limit = clampLimit(limit, 20)
	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+messageCols+" FROM messages WHERE "+cond+" ORDER BY created_at DESC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, mapErr(err)
		}
		out = append(out, m)
	}
	return out, total, mapErr(rows.Err())
}

// Create inserts a contact form submission.  Status starts as unread.
func (r *MessageRepo) Create(ctx context.Context, m *Message) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (name,email,phone,subject,message,rating) VALUES (?,?,?,?,?,?)",
		m.Name, m.Email, m.Phone, m.Subject, m.Body, m.Rating)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return mapErr(err)
	}
	m.ID = uint64(id)
	return nil
}

// MarkRead transitions a message from unread to read.
func (r *MessageRepo) MarkRead(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE messages SET status='read' WHERE id=?", id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM messages WHERE id=?", id).Scan(&exists); err != nil {
			return mapErr(err)
		}
		if exists == 0 {
			return apperr.ErrNotFound
		}
	}
	return nil
}

// ArchiveAndDelete moves a live message into archived_messages inside one
// transaction.
func (r *MessageRepo) ArchiveAndDelete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr(err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO archived_messages (id,name,email,phone,subject,message,rating,status,created_at)
         SELECT id,name,email,phone,subject,message,rating,status,created_at FROM messages WHERE id=?`, id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE id=?", id); err != nil {
		return mapErr(err)
	}
	return mapErr(tx.Commit())
}

// PermanentDelete moves an archived message into the final
// permanently_deleted_messages tier, again transactionally.
func (r *MessageRepo) PermanentDelete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr(err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO permanently_deleted_messages (id,name,email,phone,subject,message,rating,status,created_at)
         SELECT id,name,email,phone,subject,message,rating,status,created_at FROM archived_messages WHERE id=?`, id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM archived_messages WHERE id=?", id); err != nil {
		return mapErr(err)
	}
	return mapErr(tx.Commit())
}

// ListArchived returns a page of archived messages for the reports view.
func (r *MessageRepo) ListArchived(ctx context.Context, limit, offset int) ([]Message, error) {
	limit = clampLimit(limit, 20)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+messageCols+" FROM archived_messages ORDER BY archived_at DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		out = append(out, m)
	}
	return out, mapErr(rows.Err())
}

// CountUnread returns the number of unread live messages, used by the
// realtime notifier.
func (r *MessageRepo) CountUnread(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE status='unread'").Scan(&n)
	return n, mapErr(err)
}
