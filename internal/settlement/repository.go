package settlement

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sanjaibalajee/weebsworldxplorers/internal/balance"
	"github.com/sanjaibalajee/weebsworldxplorers/internal/wallet"
)

// Store defines the persistence operations the settlement service depends on.
type Store interface {
	Create(ctx context.Context, s *Settlement) (*Settlement, error)
	GetByID(ctx context.Context, id string) (*Settlement, error)
	Confirm(ctx context.Context, id, receiverID string, affectsReceiverWallet bool) (*Settlement, error)
	Reject(ctx context.Context, id, receiverID string) (*Settlement, error)
	List(ctx context.Context, userID string) ([]*Settlement, error)
	ListPending(ctx context.Context, receiverID string) ([]*Settlement, error)
	ListOutgoing(ctx context.Context, payerID string) ([]*Settlement, error)
	GroupExpenses(ctx context.Context) ([]balance.Expense, error)
	ConfirmedSettlements(ctx context.Context, userID string) ([]balance.Settlement, error)
	LinkedAmounts(ctx context.Context, payerID, receiverID string) (map[string]float64, error)
	UserNames(ctx context.Context) (map[string]string, error)
}

// Repository handles settlement persistence. Confirmed settlements write
// wallet entries for one or both parties, inside the same transaction as
// the status change.
type Repository struct {
	db      *sql.DB
	wallets *wallet.Repository
}

var _ Store = (*Repository)(nil)

// NewRepository creates a new settlement repository
func NewRepository(db *sql.DB, wallets *wallet.Repository) *Repository {
	return &Repository{db: db, wallets: wallets}
}

// applyWalletEffectsTx writes the settlement's wallet consequences: the
// payer is debited, the receiver credited, each only if their flag is set.
// The payer side runs first when their ID sorts lower, matching the lock
// order every other writer uses.
func (r *Repository) applyWalletEffectsTx(ctx context.Context, tx *sql.Tx, s *Settlement) error {
	refType := wallet.RefSettlement

	debit := func() error {
		if !s.AffectsPayerWallet {
			return nil
		}
		_, err := r.wallets.AppendTx(ctx, tx, wallet.AppendParams{
			UserID:         s.PayerID,
			Kind:           wallet.KindSettlementSent,
			Amount:         -s.AmountThb,
			ReferenceID:    &s.ID,
			ReferenceType:  &refType,
			CounterpartyID: &s.ReceiverID,
			Description:    fmt.Sprintf("Settled ฿%g", s.AmountThb),
		})
		return err
	}
	credit := func() error {
		if !s.AffectsReceiverWallet {
			return nil
		}
		_, err := r.wallets.AppendTx(ctx, tx, wallet.AppendParams{
			UserID:         s.ReceiverID,
			Kind:           wallet.KindSettlementReceived,
			Amount:         s.AmountThb,
			ReferenceID:    &s.ID,
			ReferenceType:  &refType,
			CounterpartyID: &s.PayerID,
			Description:    fmt.Sprintf("Received settlement of ฿%g", s.AmountThb),
		})
		return err
	}

	if s.PayerID < s.ReceiverID {
		if err := debit(); err != nil {
			return err
		}
		return credit()
	}
	if err := credit(); err != nil {
		return err
	}
	return debit()
}

// Create persists the settlement with its expense links. A settlement
// arriving already confirmed (receive flow) gets its wallet effects in the
// same transaction.
func (r *Repository) Create(ctx context.Context, s *Settlement) (*Settlement, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if s.Status == StatusConfirmed {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO settlements (payer_id, receiver_id, amount_thb, amount_inr, status, affects_payer_wallet, affects_receiver_wallet, confirmed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			RETURNING id, created_at, confirmed_at
		`, s.PayerID, s.ReceiverID, s.AmountThb, s.AmountInr, s.Status, s.AffectsPayerWallet, s.AffectsReceiverWallet).
			Scan(&s.ID, &s.CreatedAt, &s.ConfirmedAt)
	} else {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO settlements (payer_id, receiver_id, amount_thb, amount_inr, status, affects_payer_wallet, affects_receiver_wallet)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at
		`, s.PayerID, s.ReceiverID, s.AmountThb, s.AmountInr, s.Status, s.AffectsPayerWallet, s.AffectsReceiverWallet).
			Scan(&s.ID, &s.CreatedAt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create settlement: %w", err)
	}

	for _, l := range s.Links {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO settlement_expenses (settlement_id, expense_id, amount_thb)
			VALUES ($1, $2, $3)
		`, s.ID, l.ExpenseID, l.AmountThb)
		if err != nil {
			return nil, fmt.Errorf("failed to link settlement to expense: %w", err)
		}
		l.SettlementID = s.ID
	}

	if s.Status == StatusConfirmed {
		if err := r.applyWalletEffectsTx(ctx, tx, s); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s, nil
}

// Confirm moves a pending settlement to confirmed and applies both parties'
// wallet effects. Only the receiver may confirm, and only while pending.
func (r *Repository) Confirm(ctx context.Context, id, receiverID string, affectsReceiverWallet bool) (*Settlement, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	s, err := r.getForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrSettlementNotFound
	}
	if s.ReceiverID != receiverID {
		return nil, ErrNotReceiver
	}
	if s.Status != StatusPending {
		return nil, ErrNotPending
	}

	s.AffectsReceiverWallet = affectsReceiverWallet
	s.Status = StatusConfirmed

	err = tx.QueryRowContext(ctx, `
		UPDATE settlements
		SET status = $1, affects_receiver_wallet = $2, confirmed_at = NOW()
		WHERE id = $3
		RETURNING confirmed_at
	`, s.Status, s.AffectsReceiverWallet, id).Scan(&s.ConfirmedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm settlement: %w", err)
	}

	if err := r.applyWalletEffectsTx(ctx, tx, s); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s, nil
}

// Reject moves a pending settlement to rejected. No wallet effects; the row
// stays for the audit trail.
func (r *Repository) Reject(ctx context.Context, id, receiverID string) (*Settlement, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	s, err := r.getForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrSettlementNotFound
	}
	if s.ReceiverID != receiverID {
		return nil, ErrNotReceiver
	}
	if s.Status != StatusPending {
		return nil, ErrNotPending
	}

	s.Status = StatusRejected
	if _, err := tx.ExecContext(ctx, `UPDATE settlements SET status = $1 WHERE id = $2`, s.Status, id); err != nil {
		return nil, fmt.Errorf("failed to reject settlement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s, nil
}

func (r *Repository) getForUpdate(ctx context.Context, tx *sql.Tx, id string) (*Settlement, error) {
	s := &Settlement{}
	err := tx.QueryRowContext(ctx, `
		SELECT id, payer_id, receiver_id, amount_thb, amount_inr, status, affects_payer_wallet, affects_receiver_wallet, created_at, confirmed_at
		FROM settlements WHERE id = $1 FOR UPDATE
	`, id).Scan(&s.ID, &s.PayerID, &s.ReceiverID, &s.AmountThb, &s.AmountInr, &s.Status,
		&s.AffectsPayerWallet, &s.AffectsReceiverWallet, &s.CreatedAt, &s.ConfirmedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return s, nil
}

const settlementColumns = `
	s.id, s.payer_id, s.receiver_id, s.amount_thb, s.amount_inr, s.status,
	s.affects_payer_wallet, s.affects_receiver_wallet, s.created_at, s.confirmed_at,
	p.name, rc.name
`

const settlementJoins = `
	FROM settlements s
	JOIN users p ON p.id = s.payer_id
	JOIN users rc ON rc.id = s.receiver_id
`

func (r *Repository) querySettlements(ctx context.Context, where string, args ...interface{}) ([]*Settlement, error) {
	query := `SELECT ` + settlementColumns + settlementJoins + where + ` ORDER BY s.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*Settlement
	for rows.Next() {
		s := &Settlement{}
		if err := rows.Scan(&s.ID, &s.PayerID, &s.ReceiverID, &s.AmountThb, &s.AmountInr, &s.Status,
			&s.AffectsPayerWallet, &s.AffectsReceiverWallet, &s.CreatedAt, &s.ConfirmedAt,
			&s.PayerName, &s.ReceiverName); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}
	return settlements, rows.Err()
}

// GetByID retrieves one settlement with its expense links
func (r *Repository) GetByID(ctx context.Context, id string) (*Settlement, error) {
	settlements, err := r.querySettlements(ctx, ` WHERE s.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(settlements) == 0 {
		return nil, nil
	}
	s := settlements[0]

	rows, err := r.db.QueryContext(ctx, `
		SELECT se.settlement_id, se.expense_id, se.amount_thb, e.title
		FROM settlement_expenses se
		JOIN expenses e ON e.id = se.expense_id
		WHERE se.settlement_id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlement links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		l := &ExpenseLink{}
		if err := rows.Scan(&l.SettlementID, &l.ExpenseID, &l.AmountThb, &l.ExpenseTitle); err != nil {
			return nil, fmt.Errorf("failed to scan settlement link: %w", err)
		}
		s.Links = append(s.Links, l)
	}
	return s, rows.Err()
}

// List retrieves every settlement involving the user, newest first
func (r *Repository) List(ctx context.Context, userID string) ([]*Settlement, error) {
	return r.querySettlements(ctx, ` WHERE s.payer_id = $1 OR s.receiver_id = $1`, userID)
}

// ListPending retrieves pending settlements awaiting the user's confirmation
func (r *Repository) ListPending(ctx context.Context, receiverID string) ([]*Settlement, error) {
	return r.querySettlements(ctx, ` WHERE s.receiver_id = $1 AND s.status = 'pending'`, receiverID)
}

// ListOutgoing retrieves the user's own pending settlements
func (r *Repository) ListOutgoing(ctx context.Context, payerID string) ([]*Settlement, error) {
	return r.querySettlements(ctx, ` WHERE s.payer_id = $1 AND s.status = 'pending'`, payerID)
}

// GroupExpenses loads every group expense in balance-engine form: the union
// of payers and split members with what each paid and owed
func (r *Repository) GroupExpenses(ctx context.Context) ([]balance.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, date FROM expenses WHERE type = 'group' ORDER BY date DESC, created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query group expenses: %w", err)
	}
	defer rows.Close()

	var expenses []balance.Expense
	byID := make(map[string]int)
	for rows.Next() {
		var e balance.Expense
		if err := rows.Scan(&e.ID, &e.Title, &e.Date); err != nil {
			return nil, fmt.Errorf("failed to scan group expense: %w", err)
		}
		byID[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	type key struct {
		expense string
		user    string
	}
	participants := make(map[key]*balance.Participant)
	order := make(map[string][]string)

	payerRows, err := r.db.QueryContext(ctx, `
		SELECT ep.expense_id, ep.user_id, ep.cash_given - ep.change_taken
		FROM expense_payers ep
		JOIN expenses e ON e.id = ep.expense_id
		WHERE e.type = 'group'
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query payers: %w", err)
	}
	defer payerRows.Close()

	for payerRows.Next() {
		var expenseID, uid string
		var paid float64
		if err := payerRows.Scan(&expenseID, &uid, &paid); err != nil {
			return nil, fmt.Errorf("failed to scan payer: %w", err)
		}
		k := key{expenseID, uid}
		if participants[k] == nil {
			participants[k] = &balance.Participant{UserID: uid}
			order[expenseID] = append(order[expenseID], uid)
		}
		participants[k].Paid += paid
	}
	if err := payerRows.Err(); err != nil {
		return nil, err
	}

	splitRows, err := r.db.QueryContext(ctx, `
		SELECT es.expense_id, es.user_id, es.owed_amount
		FROM expense_splits es
		JOIN expenses e ON e.id = es.expense_id
		WHERE e.type = 'group'
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var expenseID, uid string
		var owed float64
		if err := splitRows.Scan(&expenseID, &uid, &owed); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		k := key{expenseID, uid}
		if participants[k] == nil {
			participants[k] = &balance.Participant{UserID: uid}
			order[expenseID] = append(order[expenseID], uid)
		}
		participants[k].Owed += owed
	}
	if err := splitRows.Err(); err != nil {
		return nil, err
	}

	for expenseID, idx := range byID {
		e := &expenses[idx]
		topPaid := 0.0
		for _, uid := range order[expenseID] {
			p := participants[key{expenseID, uid}]
			e.Participants = append(e.Participants, *p)
			if p.Paid > topPaid {
				topPaid = p.Paid
				e.PrimaryPayer = uid
			}
		}
	}

	return expenses, nil
}

// ConfirmedSettlements loads the confirmed settlements involving the user
// in balance-engine form
func (r *Repository) ConfirmedSettlements(ctx context.Context, userID string) ([]balance.Settlement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT payer_id, receiver_id, amount_thb
		FROM settlements
		WHERE status = 'confirmed' AND (payer_id = $1 OR receiver_id = $1)
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query confirmed settlements: %w", err)
	}
	defer rows.Close()

	var settlements []balance.Settlement
	for rows.Next() {
		var s balance.Settlement
		if err := rows.Scan(&s.PayerID, &s.ReceiverID, &s.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}
	return settlements, rows.Err()
}

// LinkedAmounts sums the already-attributed settlement amounts per expense
// between two users (pending and confirmed both count so double attribution
// is avoided while a settlement awaits confirmation)
func (r *Repository) LinkedAmounts(ctx context.Context, payerID, receiverID string) (map[string]float64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT se.expense_id, SUM(se.amount_thb)
		FROM settlement_expenses se
		JOIN settlements s ON s.id = se.settlement_id
		WHERE s.payer_id = $1 AND s.receiver_id = $2 AND s.status != 'rejected'
		GROUP BY se.expense_id
	`, payerID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to query linked amounts: %w", err)
	}
	defer rows.Close()

	linked := make(map[string]float64)
	for rows.Next() {
		var expenseID string
		var amount float64
		if err := rows.Scan(&expenseID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan linked amount: %w", err)
		}
		linked[expenseID] = amount
	}
	return linked, rows.Err()
}

// UserNames maps user IDs to display names
func (r *Repository) UserNames(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}
