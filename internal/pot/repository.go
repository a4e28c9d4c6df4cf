package pot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sanjaibalajee/weebsworldxplorers/internal/wallet"
)

// ErrInsufficientWallet means the user's wallet cannot cover the pot load
var ErrInsufficientWallet = errors.New("insufficient wallet balance")

// Store defines the persistence operations the pot service depends on.
type Store interface {
	Balance(ctx context.Context, userID string) (float64, error)
	ListTransactions(ctx context.Context, userID string) ([]*Transaction, error)
	Load(ctx context.Context, userID string, amount float64, adminID string) (potBalance, walletBalance float64, err error)
	MemberUsers(ctx context.Context) ([]*Member, error)
	MembersWithPots(ctx context.Context) ([]*UserPot, error)
}

// Repository handles pot ledger persistence. Pot loads touch the wallet
// ledger too, so it shares the wallet repository's transaction-scoped
// helpers.
type Repository struct {
	db      *sql.DB
	wallets *wallet.Repository
}

var _ Store = (*Repository)(nil)

// NewRepository creates a new pot repository
func NewRepository(db *sql.DB, wallets *wallet.Repository) *Repository {
	return &Repository{db: db, wallets: wallets}
}

// Balance returns the user's pot balance, or 0 if no pot exists yet
func (r *Repository) Balance(ctx context.Context, userID string) (float64, error) {
	var balance float64
	err := r.db.QueryRowContext(ctx,
		`SELECT balance FROM user_pots WHERE user_id = $1`,
		userID,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get pot balance: %w", err)
	}
	return balance, nil
}

// applyTx applies a signed amount to the user's pot summary row (creating it
// if absent) and appends the matching pot ledger entry. The summary row
// update takes a row lock, which serializes concurrent pot writers.
func (r *Repository) applyTx(ctx context.Context, tx *sql.Tx, userID string, kind TransactionKind, amount float64, refID, refType *string, description, createdBy string) (float64, error) {
	var newBalance float64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO user_pots (user_id, balance, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET balance = user_pots.balance + $2, updated_at = NOW()
		RETURNING balance
	`, userID, amount).Scan(&newBalance)
	if err != nil {
		return 0, fmt.Errorf("failed to update pot balance: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pot_transactions (id, user_id, type, amount_thb, balance_after, reference_id, reference_type, description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, uuid.NewString(), userID, kind, amount, newBalance, refID, refType, description, createdBy)
	if err != nil {
		return 0, fmt.Errorf("failed to append pot transaction: %w", err)
	}

	return newBalance, nil
}

// Load moves money from the user's wallet into their pot, atomically
func (r *Repository) Load(ctx context.Context, userID string, amount float64, adminID string) (float64, float64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	walletBalance, err := r.wallets.CurrentBalanceTx(ctx, tx, userID)
	if err != nil {
		return 0, 0, err
	}
	if walletBalance < amount {
		return 0, 0, fmt.Errorf("%w: user has ฿%g", ErrInsufficientWallet, walletBalance)
	}

	potBalance, err := r.applyTx(ctx, tx, userID, KindContribution, amount, nil, nil,
		"Pot contribution from wallet", adminID)
	if err != nil {
		return 0, 0, err
	}

	walletTxn, err := r.wallets.AppendTx(ctx, tx, wallet.AppendParams{
		UserID:      userID,
		Kind:        wallet.KindPotContribution,
		Amount:      -amount,
		Description: fmt.Sprintf("Contributed ฿%g to group pot", amount),
	})
	if err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return potBalance, walletTxn.BalanceAfter, nil
}

// DeductForExpenseTx deducts a pot expense share inside an existing
// transaction (used by the expense repository when a pot expense is created)
func (r *Repository) DeductForExpenseTx(ctx context.Context, tx *sql.Tx, userID string, amount float64, expenseID, expenseTitle, adminID string) error {
	refType := "expense"
	_, err := r.applyTx(ctx, tx, userID, KindExpense, -amount, &expenseID, &refType,
		fmt.Sprintf("Pot expense: %s", expenseTitle), adminID)
	return err
}

// RefundTx returns a deleted pot expense's share inside an existing
// transaction. The refund entry carries no reference: the expense it
// reverses is gone.
func (r *Repository) RefundTx(ctx context.Context, tx *sql.Tx, userID string, amount float64, expenseTitle, adminID string) error {
	_, err := r.applyTx(ctx, tx, userID, KindRefund, amount, nil, nil,
		fmt.Sprintf("Refund for deleted pot expense: %s", expenseTitle), adminID)
	return err
}

// ListTransactions retrieves a user's pot ledger, newest first
func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]*Transaction, error) {
	query := `
		SELECT id, user_id, type, amount_thb, balance_after, reference_id, reference_type, description, created_by, created_at
		FROM pot_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pot transactions: %w", err)
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
			&txn.Description,
			&txn.CreatedBy,
			&txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pot transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	return txns, nil
}

// MemberUsers retrieves all non-admin users
func (r *Repository) MemberUsers(ctx context.Context) ([]*Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM users WHERE role != 'admin' ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	return members, nil
}

// MembersWithPots retrieves all non-admin users with their pot balances
// (0 for users whose pot has never been loaded)
func (r *Repository) MembersWithPots(ctx context.Context) ([]*UserPot, error) {
	query := `
		SELECT u.id, COALESCE(p.balance, 0), COALESCE(p.updated_at, u.created_at), u.name
		FROM users u
		LEFT JOIN user_pots p ON p.user_id = u.id
		WHERE u.role != 'admin'
		ORDER BY u.name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pots: %w", err)
	}
	defer rows.Close()

	var pots []*UserPot
	for rows.Next() {
		p := &UserPot{}
		if err := rows.Scan(&p.UserID, &p.Balance, &p.UpdatedAt, &p.UserName); err != nil {
			return nil, fmt.Errorf("failed to scan pot: %w", err)
		}
		pots = append(pots, p)
	}

	return pots, nil
}
