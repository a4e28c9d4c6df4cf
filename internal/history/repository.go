package history

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// Store defines the read operations the history service depends on.
type Store interface {
	GroupFeed(ctx context.Context) ([]*Entry, error)
	UserFeed(ctx context.Context, userID string) ([]*Entry, error)
	Stats(ctx context.Context, userID string) (*Stats, error)
}

// Repository reads the activity feed straight off the expense and
// settlement tables. It never writes.
type Repository struct {
	db *sql.DB
}

var _ Store = (*Repository)(nil)

// NewRepository creates a new history repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.Kind, &e.Title, &e.Amount, &e.Date, &e.ActorID, &e.ActorName, &e.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GroupFeed returns shared activity: group and pot expenses plus confirmed
// settlements, newest first
func (r *Repository) GroupFeed(ctx context.Context) ([]*Entry, error) {
	expenseRows, err := r.db.QueryContext(ctx, `
		SELECT e.id, 'expense', e.title, e.total_amount, e.date, e.created_by, u.name, e.type
		FROM expenses e
		JOIN users u ON u.id = e.created_by
		WHERE e.type IN ('group', 'pot')
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense feed: %w", err)
	}
	defer expenseRows.Close()

	entries, err := scanEntries(expenseRows)
	if err != nil {
		return nil, err
	}

	settlementRows, err := r.db.QueryContext(ctx, `
		SELECT s.id, 'settlement', p.name || ' settled with ' || rc.name, s.amount_thb, s.confirmed_at, s.payer_id, p.name, ''
		FROM settlements s
		JOIN users p ON p.id = s.payer_id
		JOIN users rc ON rc.id = s.receiver_id
		WHERE s.status = 'confirmed'
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlement feed: %w", err)
	}
	defer settlementRows.Close()

	settlementEntries, err := scanEntries(settlementRows)
	if err != nil {
		return nil, err
	}
	entries = append(entries, settlementEntries...)

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})

	return entries, nil
}

// UserFeed returns activity the user took part in: expenses they paid for
// or owe on, and their settlements, newest first
func (r *Repository) UserFeed(ctx context.Context, userID string) ([]*Entry, error) {
	expenseRows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT e.id, 'expense', e.title, e.total_amount, e.date, e.created_by, u.name, e.type
		FROM expenses e
		JOIN users u ON u.id = e.created_by
		LEFT JOIN expense_payers ep ON ep.expense_id = e.id
		LEFT JOIN expense_splits es ON es.expense_id = e.id
		WHERE e.created_by = $1 OR ep.user_id = $1 OR es.user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user expense feed: %w", err)
	}
	defer expenseRows.Close()

	entries, err := scanEntries(expenseRows)
	if err != nil {
		return nil, err
	}

	settlementRows, err := r.db.QueryContext(ctx, `
		SELECT s.id, 'settlement', p.name || ' settled with ' || rc.name, s.amount_thb, s.created_at, s.payer_id, p.name, s.status
		FROM settlements s
		JOIN users p ON p.id = s.payer_id
		JOIN users rc ON rc.id = s.receiver_id
		WHERE s.payer_id = $1 OR s.receiver_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user settlement feed: %w", err)
	}
	defer settlementRows.Close()

	settlementEntries, err := scanEntries(settlementRows)
	if err != nil {
		return nil, err
	}
	entries = append(entries, settlementEntries...)

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})

	return entries, nil
}

// Stats computes trip-level and personal spend totals. Personal spend is
// what the user actually owes: their split shares plus their individual
// expenses.
func (r *Repository) Stats(ctx context.Context, userID string) (*Stats, error) {
	stats := &Stats{}

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM expenses
		WHERE type IN ('group', 'pot')
	`).Scan(&stats.TotalTripSpend, &stats.ExpenseCount)
	if err != nil {
		return nil, fmt.Errorf("failed to compute trip spend: %w", err)
	}

	var splitSpend float64
	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(es.owed_amount), 0)
		FROM expense_splits es
		JOIN expenses e ON e.id = es.expense_id
		WHERE es.user_id = $1 AND e.type IN ('group', 'pot')
	`, userID).Scan(&splitSpend)
	if err != nil {
		return nil, fmt.Errorf("failed to compute split spend: %w", err)
	}

	var individualSpend float64
	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM expenses
		WHERE type = 'individual' AND created_by = $1
	`, userID).Scan(&individualSpend)
	if err != nil {
		return nil, fmt.Errorf("failed to compute individual spend: %w", err)
	}

	stats.MySpend = splitSpend + individualSpend
	return stats, nil
}
