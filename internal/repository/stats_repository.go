package repository

import (
	"context"
	"database/sql"
	"time"
)

// StatusCounts is the booking count per status plus the total.  The three
// buckets always sum to Total because status is a closed enum.
type StatusCounts struct {
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
	Total     int `json:"total_bookings"`
}

// MonthBucket is one month of the dashboard trend.
type MonthBucket struct {
	Month    string  `json:"month"` // YYYY-MM
	Bookings int     `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

// FinancialSummary aggregates one month of money movement.
type FinancialSummary struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// StatsRepo computes the dashboard aggregates.  Each metric is its own
// query, recomputed on every call; at this data volume a cache would cost
// more than it saves.
type StatsRepo struct{ db *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// CountsByStatus groups live bookings by status.
func (r *StatsRepo) CountsByStatus(ctx context.Context) (StatusCounts, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM bookings GROUP BY status")
	if err != nil {
		return StatusCounts{}, mapErr(err)
	}
	defer rows.Close()
	var c StatusCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return StatusCounts{}, mapErr(err)
		}
		switch status {
		case "pending":
			c.Pending = n
		case "confirmed":
			c.Confirmed = n
		case "cancelled":
			c.Cancelled = n
		}
		c.Total += n
	}
	return c, mapErr(rows.Err())
}

// TotalRevenue sums paid payments joined to their bookings.
func (r *StatsRepo) TotalRevenue(ctx context.Context) (float64, error) {
	var v sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(p.amount) FROM payments p
         JOIN bookings b ON b.id = p.booking_id
         WHERE p.payment_status = 'paid'`).Scan(&v)
	if err != nil {
		return 0, mapErr(err)
	}
	return v.Float64, nil
}

// MonthlyTrend returns the last n months of booking counts and paid revenue,
// oldest first.  One pair of queries per month; the window bounds travel as
// parameters.
func (r *StatsRepo) MonthlyTrend(ctx context.Context, n int, now time.Time) ([]MonthBucket, error) {
	if n <= 0 {
		n = 6
	}
	out := make([]MonthBucket, 0, n)
	for i := n - 1; i >= 0; i-- {
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		next := first.AddDate(0, 1, 0)
		b := MonthBucket{Month: first.Format("2006-01")}

		if err := r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM bookings WHERE created_at >= ? AND created_at < ?",
			first, next).Scan(&b.Bookings); err != nil {
			return nil, mapErr(err)
		}
		var rev sql.NullFloat64
		if err := r.db.QueryRowContext(ctx,
			`SELECT SUM(p.amount) FROM payments p
             JOIN bookings b ON b.id = p.booking_id
             WHERE p.payment_status='paid' AND p.payment_date >= ? AND p.payment_date < ?`,
			first, next).Scan(&rev); err != nil {
			return nil, mapErr(err)
		}
		b.Revenue = rev.Float64
		out = append(out, b)
	}
	return out, nil
}

// Summary computes income, expenses and net for one month.  month is
// "YYYY-MM"; it is parsed here and bound as date parameters.
func (r *StatsRepo) Summary(ctx context.Context, month string) (FinancialSummary, error) {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return FinancialSummary{}, err
	}
	next := first.AddDate(0, 1, 0)
	s := FinancialSummary{Month: month}

	var income sql.NullFloat64
	if err := r.db.QueryRowContext(ctx,
		"SELECT SUM(amount) FROM payments WHERE payment_status='paid' AND payment_date >= ? AND payment_date < ?",
		first, next).Scan(&income); err != nil {
		return FinancialSummary{}, mapErr(err)
	}
	var expenses sql.NullFloat64
	if err := r.db.QueryRowContext(ctx,
		"SELECT SUM(amount) FROM expenses WHERE expense_date >= ? AND expense_date < ?",
		first, next).Scan(&expenses); err != nil {
		return FinancialSummary{}, mapErr(err)
	}
	s.Income = income.Float64
	s.Expenses = expenses.Float64
	s.Net = s.Income - s.Expenses
	return s, nil
}

// PendingCount returns the number of pending bookings, used by the realtime
// notifier.
func (r *StatsRepo) PendingCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE status='pending'").Scan(&n)
	return n, mapErr(err)
}
