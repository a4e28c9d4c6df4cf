package wallet

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Reference types tagged onto ledger entries
const (
	RefTopup      = "wallet_topup"
	RefExpense    = "expense"
	RefSettlement = "settlement"
)

// AppendParams describes a new ledger entry. BalanceAfter is computed by the
// store, never by the caller.
type AppendParams struct {
	UserID         string
	Kind           TransactionKind
	Amount         float64 // signed; positive = inflow
	ReferenceID    *string
	ReferenceType  *string
	CounterpartyID *string
	Description    string
}

// Store defines the persistence operations the wallet service depends on.
type Store interface {
	CurrentBalance(ctx context.Context, userID string) (float64, error)
	Append(ctx context.Context, p AppendParams) (*Transaction, error)
	CreateTopup(ctx context.Context, topup *Topup) (*Topup, error)
	ListTransactions(ctx context.Context, userID string) ([]*Transaction, error)
	ListTopups(ctx context.Context, userID string) ([]*Topup, error)
	ListAllTopups(ctx context.Context) ([]*Topup, error)
	HasTransactions(ctx context.Context, userID string) (bool, error)
}

// Repository handles wallet ledger persistence
type Repository struct {
	db *sql.DB
}

var _ Store = (*Repository)(nil)

// NewRepository creates a new wallet repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// lockUser serializes ledger writers for one user within the current
// transaction. Without this the read-latest-then-insert sequence is a lost
// update waiting to happen.
func lockUser(ctx context.Context, tx *sql.Tx, userID string) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return fmt.Errorf("failed to lock wallet for user: %w", err)
	}
	return nil
}

// LockUsersTx takes the per-user advisory locks for every given user in
// sorted order. Callers touching several ledgers in one transaction lock
// them all up front; re-acquiring inside AppendTx is harmless since
// advisory xact locks are reentrant within a session.
func (r *Repository) LockUsersTx(ctx context.Context, tx *sql.Tx, userIDs []string) error {
	ids := append([]string(nil), userIDs...)
	sort.Strings(ids)
	prev := ""
	for _, id := range ids {
		if id == prev {
			continue
		}
		prev = id
		if err := lockUser(ctx, tx, id); err != nil {
			return err
		}
	}
	return nil
}

func latestBalance(ctx context.Context, tx *sql.Tx, userID string) (float64, error) {
	var balance float64
	err := tx.QueryRowContext(ctx, `
		SELECT balance_after
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read latest balance: %w", err)
	}
	return balance, nil
}

// AppendTx appends a ledger entry inside an existing transaction. The
// per-user advisory lock is taken first so concurrent appends cannot
// interleave between the balance read and the insert.
func (r *Repository) AppendTx(ctx context.Context, tx *sql.Tx, p AppendParams) (*Transaction, error) {
	if err := lockUser(ctx, tx, p.UserID); err != nil {
		return nil, err
	}

	balance, err := latestBalance(ctx, tx, p.UserID)
	if err != nil {
		return nil, err
	}

	txn := &Transaction{
		ID:             uuid.NewString(),
		UserID:         p.UserID,
		Kind:           p.Kind,
		Amount:         p.Amount,
		BalanceAfter:   balance + p.Amount,
		ReferenceID:    p.ReferenceID,
		ReferenceType:  p.ReferenceType,
		CounterpartyID: p.CounterpartyID,
		Description:    p.Description,
	}

	query := `
		INSERT INTO wallet_transactions (id, user_id, type, amount_thb, balance_after, reference_id, reference_type, counterparty_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err = tx.QueryRowContext(ctx, query,
		txn.ID,
		txn.UserID,
		txn.Kind,
		txn.Amount,
		txn.BalanceAfter,
		txn.ReferenceID,
		txn.ReferenceType,
		txn.CounterpartyID,
		txn.Description,
	).Scan(&txn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append wallet transaction: %w", err)
	}

	return txn, nil
}

// Append appends a ledger entry in its own transaction
func (r *Repository) Append(ctx context.Context, p AppendParams) (*Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	txn, err := r.AppendTx(ctx, tx, p)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txn, nil
}

// CurrentBalance returns the balance after the user's most recent ledger
// entry, or 0 if the wallet has no entries yet
func (r *Repository) CurrentBalance(ctx context.Context, userID string) (float64, error) {
	var balance float64
	err := r.db.QueryRowContext(ctx, `
		SELECT balance_after
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet balance: %w", err)
	}
	return balance, nil
}

// CurrentBalanceTx reads the balance inside an existing transaction, holding
// the user's ledger lock for the remainder of that transaction
func (r *Repository) CurrentBalanceTx(ctx context.Context, tx *sql.Tx, userID string) (float64, error) {
	if err := lockUser(ctx, tx, userID); err != nil {
		return 0, err
	}
	return latestBalance(ctx, tx, userID)
}

// CreateTopup inserts a topup and its ledger entry atomically
func (r *Repository) CreateTopup(ctx context.Context, topup *Topup) (*Topup, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO wallet_topups (user_id, amount_thb, exchange_rate, source)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, query,
		topup.UserID,
		topup.AmountThb,
		topup.ExchangeRate,
		topup.Source,
	).Scan(&topup.ID, &topup.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create topup: %w", err)
	}

	refType := RefTopup
	description := fmt.Sprintf("Loaded ฿%g at rate ₹%g/฿", topup.AmountThb, topup.ExchangeRate)
	if topup.Source != nil && *topup.Source != "" {
		description = fmt.Sprintf("Loaded ฿%g (%s)", topup.AmountThb, *topup.Source)
	}

	if _, err := r.AppendTx(ctx, tx, AppendParams{
		UserID:        topup.UserID,
		Kind:          KindTopup,
		Amount:        topup.AmountThb,
		ReferenceID:   &topup.ID,
		ReferenceType: &refType,
		Description:   description,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return topup, nil
}

// ListTransactions retrieves a user's full ledger, newest first
func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]*Transaction, error) {
	query := `
		SELECT t.id, t.user_id, t.type, t.amount_thb, t.balance_after,
		       t.reference_id, t.reference_type, t.counterparty_id, t.description, t.created_at,
		       COALESCE(u.name, '')
		FROM wallet_transactions t
		LEFT JOIN users u ON t.counterparty_id = u.id
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC, t.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	defer rows.Close()

	var txns []*Transaction
	for rows.Next() {
		txn := &Transaction{}
		if err := rows.Scan(
			&txn.ID,
			&txn.UserID,
			&txn.Kind,
			&txn.Amount,
			&txn.BalanceAfter,
			&txn.ReferenceID,
			&txn.ReferenceType,
			&txn.CounterpartyID,
			&txn.Description,
			&txn.CreatedAt,
			&txn.CounterpartyName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	return txns, nil
}

// ListTopups retrieves a user's topups, newest first
func (r *Repository) ListTopups(ctx context.Context, userID string) ([]*Topup, error) {
	return r.listTopups(ctx, `WHERE t.user_id = $1`, userID)
}

// ListAllTopups retrieves every user's topups, newest first
func (r *Repository) ListAllTopups(ctx context.Context) ([]*Topup, error) {
	return r.listTopups(ctx, ``)
}

func (r *Repository) listTopups(ctx context.Context, where string, args ...interface{}) ([]*Topup, error) {
	query := fmt.Sprintf(`
		SELECT t.id, t.user_id, t.amount_thb, t.exchange_rate, t.source, t.created_at, u.name
		FROM wallet_topups t
		JOIN users u ON t.user_id = u.id
		%s
		ORDER BY t.created_at DESC
	`, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list topups: %w", err)
	}
	defer rows.Close()

	var topups []*Topup
	for rows.Next() {
		topup := &Topup{}
		if err := rows.Scan(
			&topup.ID,
			&topup.UserID,
			&topup.AmountThb,
			&topup.ExchangeRate,
			&topup.Source,
			&topup.CreatedAt,
			&topup.UserName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan topup: %w", err)
		}
		topups = append(topups, topup)
	}

	return topups, nil
}

// HasTransactions reports whether a user's wallet has any ledger entries
func (r *Repository) HasTransactions(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM wallet_transactions WHERE user_id = $1)`,
		userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check wallet setup: %w", err)
	}
	return exists, nil
}
