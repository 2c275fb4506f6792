package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/babybliss/babybliss-backend/internal/apperr"
)

// Expense mirrors the 'expenses' table, a simple ledger of outgoing money.
type Expense struct {
	ID          uint64
	Description string
	Category    string
	Amount      float64
	ExpenseDate time.Time
	CreatedAt   time.Time
}

type ExpenseRepo struct{ db *sql.DB }

func NewExpenseRepo(db *sql.DB) *ExpenseRepo { return &ExpenseRepo{db: db} }

const expenseCols = "id,description,category,amount,expense_date,created_at"

// List returns expenses, optionally restricted to one month ("YYYY-MM").
// The month travels as two date parameters, never as SQL text.
func (r *ExpenseRepo) List(ctx context.Context, month string, limit, offset int) ([]Expense, error) {
	limit = clampLimit(limit, 50)
	q := "SELECT " + expenseCols + " FROM expenses"
	args := []any{}
	if month != "" {
		q += " WHERE expense_date >= ? AND expense_date < DATE_ADD(?, INTERVAL 1 MONTH)"
		first := month + "-01"
		args = append(args, first, first)
	}
	q += " ORDER BY expense_date DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Description, &e.Category, &e.Amount, &e.ExpenseDate, &e.CreatedAt); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, e)
	}
	return out, mapErr(rows.Err())
}

// Create inserts an expense row and assigns the generated ID.
func (r *ExpenseRepo) Create(ctx context.Context, e *Expense) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO expenses (description,category,amount,expense_date) VALUES (?,?,?,?)",
		e.Description, e.Category, e.Amount, e.ExpenseDate.Format("2006-01-02"))
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return mapErr(err)
	}
	e.ID = uint64(id)
	return nil
}

// Update rewrites an expense row.
func (r *ExpenseRepo) Update(ctx context.Context, e *Expense) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE expenses SET description=?, category=?, amount=?, expense_date=? WHERE id=?",
		e.Description, e.Category, e.Amount, e.ExpenseDate.Format("2006-01-02"), e.ID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM expenses WHERE id=?", e.ID).Scan(&exists); err != nil {
			return mapErr(err)
		}
		if exists == 0 {
			return apperr.ErrNotFound
		}
	}
	return nil
}

// ArchiveAndDelete moves an expense into archived_expenses transactionally.
func (r *ExpenseRepo) ArchiveAndDelete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr(err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO archived_expenses (id,description,category,amount,expense_date,created_at)
         SELECT id,description,category,amount,expense_date,created_at FROM expenses WHERE id=?`, id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id=?", id); err != nil {
		return mapErr(err)
	}
	return mapErr(tx.Commit())
}
