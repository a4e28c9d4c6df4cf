package expense

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/sanjaibalajee/weebsworldxplorers/internal/pot"
	"github.com/sanjaibalajee/weebsworldxplorers/internal/wallet"
)

// Store defines the persistence operations the expense service depends on.
type Store interface {
	Create(ctx context.Context, e *Expense) (*Expense, error)
	Update(ctx context.Context, e *Expense) (*Expense, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Expense, error)
	List(ctx context.Context) ([]*Expense, error)
}

// walletLedger is the slice of the wallet repository expense side effects
// need: transaction-scoped appends and up-front lock acquisition.
type walletLedger interface {
	AppendTx(ctx context.Context, tx *sql.Tx, p wallet.AppendParams) (*wallet.Transaction, error)
	LockUsersTx(ctx context.Context, tx *sql.Tx, userIDs []string) error
}

// potLedger is the slice of the pot repository expense side effects need.
type potLedger interface {
	DeductForExpenseTx(ctx context.Context, tx *sql.Tx, userID string, amount float64, expenseID, expenseTitle, adminID string) error
	RefundTx(ctx context.Context, tx *sql.Tx, userID string, amount float64, expenseTitle, adminID string) error
}

// Repository handles expense persistence. Creating, updating and deleting an
// expense also writes its wallet and pot consequences, all inside one
// transaction.
type Repository struct {
	db      *sql.DB
	wallets walletLedger
	pots    potLedger
}

var _ Store = (*Repository)(nil)

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB, wallets *wallet.Repository, pots *pot.Repository) *Repository {
	return &Repository{db: db, wallets: wallets, pots: pots}
}

// sortedByUser returns payers ordered by user ID. Wallet appends take
// per-user advisory locks, so every writer must acquire them in the same
// order.
func sortedByUser(payers []*Payer) []*Payer {
	out := make([]*Payer, len(payers))
	copy(out, payers)
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func sortedSplits(splits []*Split) []*Split {
	out := make([]*Split, len(splits))
	copy(out, splits)
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// affectedUsers returns the sorted, deduplicated union of every user whose
// ledger the given expenses touch. Update reverses one set of side effects
// and applies another; locking the union up front keeps a single acquisition
// order even when the two payer sets overlap only partially.
func affectedUsers(expenses ...*Expense) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, e := range expenses {
		if e == nil {
			continue
		}
		for _, p := range e.Payers {
			if !seen[p.UserID] {
				seen[p.UserID] = true
				ids = append(ids, p.UserID)
			}
		}
		for _, s := range e.Splits {
			if !seen[s.UserID] {
				seen[s.UserID] = true
				ids = append(ids, s.UserID)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// Create persists the expense with its payers and splits and applies the
// ledger side effects: group/individual expenses debit each net-positive
// payer's wallet, pot expenses deduct each split's owed amount from that
// user's pot.
func (r *Repository) Create(ctx context.Context, e *Expense) (*Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO expenses (title, total_amount, date, type, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, e.Title, e.TotalAmount, e.Date, e.Kind, e.CreatedBy).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	if err := insertPayers(ctx, tx, e.ID, e.Payers); err != nil {
		return nil, err
	}
	if err := insertSplits(ctx, tx, e.ID, e.Splits); err != nil {
		return nil, err
	}

	if err := r.applySideEffects(ctx, tx, e); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return e, nil
}

func insertPayers(ctx context.Context, tx *sql.Tx, expenseID string, payers []*Payer) error {
	for _, p := range payers {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expense_payers (expense_id, user_id, cash_given, change_taken)
			VALUES ($1, $2, $3, $4)
		`, expenseID, p.UserID, p.CashGiven, p.ChangeTaken)
		if err != nil {
			return fmt.Errorf("failed to insert payer: %w", err)
		}
		p.ExpenseID = expenseID
	}
	return nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, expenseID string, splits []*Split) error {
	for _, s := range splits {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expense_splits (expense_id, user_id, shares, owed_amount)
			VALUES ($1, $2, $3, $4)
		`, expenseID, s.UserID, s.Shares, s.OwedAmount)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
		s.ExpenseID = expenseID
	}
	return nil
}

func (r *Repository) applySideEffects(ctx context.Context, tx *sql.Tx, e *Expense) error {
	refType := wallet.RefExpense

	switch e.Kind {
	case KindPot:
		for _, s := range sortedSplits(e.Splits) {
			if err := r.pots.DeductForExpenseTx(ctx, tx, s.UserID, s.OwedAmount, e.ID, e.Title, e.CreatedBy); err != nil {
				return err
			}
		}
	default:
		for _, p := range sortedByUser(e.Payers) {
			net := p.Net()
			if net <= 0 {
				continue
			}
			_, err := r.wallets.AppendTx(ctx, tx, wallet.AppendParams{
				UserID:        p.UserID,
				Kind:          wallet.KindExpensePaid,
				Amount:        -net,
				ReferenceID:   &e.ID,
				ReferenceType: &refType,
				Description:   fmt.Sprintf("Paid for %s", e.Title),
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// reverseSideEffects appends the compensating ledger entries for an
// expense's prior side effects: a wallet inflow per net-positive payer, or a
// pot refund per split. The compensating entries carry no expense reference;
// linkToExpense keeps it for updates where the expense row survives.
func (r *Repository) reverseSideEffects(ctx context.Context, tx *sql.Tx, e *Expense, reason string, linkToExpense bool) error {
	switch e.Kind {
	case KindPot:
		for _, s := range sortedSplits(e.Splits) {
			if err := r.pots.RefundTx(ctx, tx, s.UserID, s.OwedAmount, e.Title, e.CreatedBy); err != nil {
				return err
			}
		}
	default:
		refType := wallet.RefExpense
		for _, p := range sortedByUser(e.Payers) {
			net := p.Net()
			if net <= 0 {
				continue
			}
			params := wallet.AppendParams{
				UserID:      p.UserID,
				Kind:        wallet.KindExpensePaid,
				Amount:      net,
				Description: fmt.Sprintf("%s: %s", reason, e.Title),
			}
			if linkToExpense {
				params.ReferenceID = &e.ID
				params.ReferenceType = &refType
			}
			if _, err := r.wallets.AppendTx(ctx, tx, params); err != nil {
				return err
			}
		}
	}
	return nil
}

// Update replaces the expense's payers and splits wholesale. The old side
// effects are reversed with compensating entries, then fresh ones are
// applied, so the running-balance chains stay intact.
func (r *Repository) Update(ctx context.Context, e *Expense) (*Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	old, err := r.getForUpdate(ctx, tx, e.ID)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, nil
	}

	// Lock the union of old and new ledger users before touching either
	// set, so two concurrent updates with overlapping payers cannot
	// acquire them in conflicting orders.
	if err := r.wallets.LockUsersTx(ctx, tx, affectedUsers(old, e)); err != nil {
		return nil, err
	}

	if err := r.reverseSideEffects(ctx, tx, old, "Reversed on edit", true); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE expenses SET title = $1, total_amount = $2, date = $3 WHERE id = $4
	`, e.Title, e.TotalAmount, e.Date, e.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_payers WHERE expense_id = $1`, e.ID); err != nil {
		return nil, fmt.Errorf("failed to delete payers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_splits WHERE expense_id = $1`, e.ID); err != nil {
		return nil, fmt.Errorf("failed to delete splits: %w", err)
	}

	if err := insertPayers(ctx, tx, e.ID, e.Payers); err != nil {
		return nil, err
	}
	if err := insertSplits(ctx, tx, e.ID, e.Splits); err != nil {
		return nil, err
	}

	e.Kind = old.Kind
	e.CreatedBy = old.CreatedBy
	e.CreatedAt = old.CreatedAt
	if err := r.applySideEffects(ctx, tx, e); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return e, nil
}

// Delete reverses the expense's side effects and removes it. The row delete
// cascades to payers, splits and settlement links; ledger entries stay.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	e, err := r.getForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return sql.ErrNoRows
	}

	if err := r.reverseSideEffects(ctx, tx, e, "Refund for deleted expense", false); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// getForUpdate loads the expense with payers and splits, locking the expense
// row so concurrent edits of the same expense serialize
func (r *Repository) getForUpdate(ctx context.Context, tx *sql.Tx, id string) (*Expense, error) {
	e := &Expense{}
	err := tx.QueryRowContext(ctx, `
		SELECT id, title, total_amount, date, type, created_by, created_at
		FROM expenses WHERE id = $1 FOR UPDATE
	`, id).Scan(&e.ID, &e.Title, &e.TotalAmount, &e.Date, &e.Kind, &e.CreatedBy, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	e.Payers, err = queryPayers(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	e.Splits, err = querySplits(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	return e, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func queryPayers(ctx context.Context, q querier, expenseID string) ([]*Payer, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT ep.expense_id, ep.user_id, ep.cash_given, ep.change_taken, u.name
		FROM expense_payers ep
		JOIN users u ON u.id = ep.user_id
		WHERE ep.expense_id = $1
	`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payers: %w", err)
	}
	defer rows.Close()

	var payers []*Payer
	for rows.Next() {
		p := &Payer{}
		if err := rows.Scan(&p.ExpenseID, &p.UserID, &p.CashGiven, &p.ChangeTaken, &p.UserName); err != nil {
			return nil, fmt.Errorf("failed to scan payer: %w", err)
		}
		payers = append(payers, p)
	}
	return payers, nil
}

func querySplits(ctx context.Context, q querier, expenseID string) ([]*Split, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT es.expense_id, es.user_id, es.shares, es.owed_amount, u.name
		FROM expense_splits es
		JOIN users u ON u.id = es.user_id
		WHERE es.expense_id = $1
	`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits: %w", err)
	}
	defer rows.Close()

	var splits []*Split
	for rows.Next() {
		s := &Split{}
		if err := rows.Scan(&s.ExpenseID, &s.UserID, &s.Shares, &s.OwedAmount, &s.UserName); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, s)
	}
	return splits, nil
}

// GetByID retrieves an expense with its payers and splits
func (r *Repository) GetByID(ctx context.Context, id string) (*Expense, error) {
	e := &Expense{}
	err := r.db.QueryRowContext(ctx, `
		SELECT e.id, e.title, e.total_amount, e.date, e.type, e.created_by, e.created_at, u.name
		FROM expenses e
		JOIN users u ON u.id = e.created_by
		WHERE e.id = $1
	`, id).Scan(&e.ID, &e.Title, &e.TotalAmount, &e.Date, &e.Kind, &e.CreatedBy, &e.CreatedAt, &e.CreatorName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	e.Payers, err = queryPayers(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	e.Splits, err = querySplits(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	return e, nil
}

// List retrieves all expenses with payers and splits, newest date first.
// The dataset is one trip's expenses; visibility filtering happens in the
// service.
func (r *Repository) List(ctx context.Context) ([]*Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.title, e.total_amount, e.date, e.type, e.created_by, e.created_at, u.name
		FROM expenses e
		JOIN users u ON u.id = e.created_by
		ORDER BY e.date DESC, e.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	byID := make(map[string]*Expense)
	for rows.Next() {
		e := &Expense{}
		if err := rows.Scan(&e.ID, &e.Title, &e.TotalAmount, &e.Date, &e.Kind, &e.CreatedBy, &e.CreatedAt, &e.CreatorName); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	if len(expenses) == 0 {
		return expenses, nil
	}

	if err := r.loadPayers(ctx, byID); err != nil {
		return nil, err
	}
	if err := r.loadSplits(ctx, byID); err != nil {
		return nil, err
	}

	return expenses, nil
}

func (r *Repository) loadPayers(ctx context.Context, byID map[string]*Expense) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ep.expense_id, ep.user_id, ep.cash_given, ep.change_taken, u.name
		FROM expense_payers ep
		JOIN users u ON u.id = ep.user_id
	`)
	if err != nil {
		return fmt.Errorf("failed to load payers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &Payer{}
		if err := rows.Scan(&p.ExpenseID, &p.UserID, &p.CashGiven, &p.ChangeTaken, &p.UserName); err != nil {
			return fmt.Errorf("failed to scan payer: %w", err)
		}
		if e, ok := byID[p.ExpenseID]; ok {
			e.Payers = append(e.Payers, p)
		}
	}
	return rows.Err()
}

func (r *Repository) loadSplits(ctx context.Context, byID map[string]*Expense) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT es.expense_id, es.user_id, es.shares, es.owed_amount, u.name
		FROM expense_splits es
		JOIN users u ON u.id = es.user_id
	`)
	if err != nil {
		return fmt.Errorf("failed to load splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s := &Split{}
		if err := rows.Scan(&s.ExpenseID, &s.UserID, &s.Shares, &s.OwedAmount, &s.UserName); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		if e, ok := byID[s.ExpenseID]; ok {
			e.Splits = append(e.Splits, s)
		}
	}
	return rows.Err()
}

// ParseDate parses the wire date format used by expense requests
func ParseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
