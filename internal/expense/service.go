package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/sanjaibalajee/weebsworldxplorers/internal/expense/split"
)

var (
	// ErrExpenseNotFound means the expense does not exist or is not visible
	ErrExpenseNotFound = errors.New("expense not found")
	// ErrNotExpenseOwner means the caller may not modify this expense
	ErrNotExpenseOwner = errors.New("only the expense creator can modify it")
	// ErrAdminOnly means pot expenses are restricted to the admin
	ErrAdminOnly = errors.New("only the admin can record pot expenses")
	// ErrInvalidExpense means the request failed validation
	ErrInvalidExpense = errors.New("invalid expense")
	// ErrPayerMismatch means payer net contributions do not cover the total
	ErrPayerMismatch = errors.New("payer contributions must sum to the total amount")
)

// Service handles expense business logic
type Service struct {
	store    Store
	splitter *split.Factory
}

// NewService creates a new expense service
func NewService(store Store) *Service {
	return &Service{store: store, splitter: split.NewFactory()}
}

// Create validates and records an expense, applying its ledger side effects
func (s *Service) Create(ctx context.Context, userID string, isAdmin bool, req *CreateExpenseRequest) (*ExpenseResponse, error) {
	kind := Kind(req.Kind)

	if kind == KindPot && !isAdmin {
		return nil, ErrAdminOnly
	}

	e, err := s.buildExpense(userID, kind, req.Title, req.TotalAmount, req.Date, req.SplitType, req.Payers, req.Participants)
	if err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, e)
	if err != nil {
		return nil, err
	}

	slog.Info("expense created",
		"expense_id", created.ID, "type", created.Kind,
		"total_thb", created.TotalAmount, "created_by", userID)

	return created.ToResponse(), nil
}

// buildExpense assembles and validates the expense model from request parts.
// Pot expenses get a single synthetic payer: the admin covering the whole
// amount from the group pot.
func (s *Service) buildExpense(userID string, kind Kind, title string, total float64, dateStr, splitType string, payerInputs []PayerInput, participants []split.Input) (*Expense, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidExpense)
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: total amount must be positive", ErrInvalidExpense)
	}
	switch kind {
	case KindGroup, KindIndividual, KindPot:
	default:
		return nil, fmt.Errorf("%w: unknown expense type %q", ErrInvalidExpense, kind)
	}

	date, err := ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidExpense)
	}

	var payers []*Payer
	if kind == KindPot {
		payers = []*Payer{{UserID: userID, CashGiven: total}}
	} else {
		if len(payerInputs) == 0 {
			return nil, fmt.Errorf("%w: at least one payer is required", ErrInvalidExpense)
		}
		var netTotal float64
		for _, p := range payerInputs {
			if p.CashGiven < 0 || p.ChangeTaken < 0 {
				return nil, fmt.Errorf("%w: payer amounts cannot be negative", ErrInvalidExpense)
			}
			payers = append(payers, &Payer{
				UserID:      p.UserID,
				CashGiven:   p.CashGiven,
				ChangeTaken: p.ChangeTaken,
			})
			netTotal += p.CashGiven - p.ChangeTaken
		}
		if math.Abs(netTotal-total) > 0.01 {
			return nil, ErrPayerMismatch
		}
	}

	strategy, err := s.splitter.CreateFromString(splitType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpense, err)
	}
	outputs, err := strategy.Calculate(total, participants)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpense, err)
	}

	splits := make([]*Split, len(outputs))
	for i, o := range outputs {
		splits[i] = &Split{
			UserID:     o.UserID,
			Shares:     o.Shares,
			OwedAmount: o.AmountOwed,
		}
	}

	return &Expense{
		Title:       title,
		TotalAmount: total,
		Date:        date,
		Kind:        kind,
		CreatedBy:   userID,
		Payers:      payers,
		Splits:      splits,
	}, nil
}

// Update replaces the expense's contents. Only the creator (or the admin)
// may edit; the kind is immutable.
func (s *Service) Update(ctx context.Context, userID string, isAdmin bool, id string, req *UpdateExpenseRequest) (*ExpenseResponse, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrExpenseNotFound
	}
	if existing.CreatedBy != userID && !isAdmin {
		return nil, ErrNotExpenseOwner
	}

	e, err := s.buildExpense(existing.CreatedBy, existing.Kind, req.Title, req.TotalAmount, req.Date, req.SplitType, req.Payers, req.Participants)
	if err != nil {
		return nil, err
	}
	e.ID = id

	updated, err := s.store.Update(ctx, e)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrExpenseNotFound
	}

	slog.Info("expense updated", "expense_id", id, "total_thb", updated.TotalAmount, "updated_by", userID)

	return updated.ToResponse(), nil
}

// Delete reverses the expense's ledger effects and removes it
func (s *Service) Delete(ctx context.Context, userID string, isAdmin bool, id string) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrExpenseNotFound
	}
	if existing.CreatedBy != userID && !isAdmin {
		return ErrNotExpenseOwner
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("expense deleted", "expense_id", id, "type", existing.Kind, "deleted_by", userID)

	return nil
}

// Get retrieves one expense if the caller may see it
func (s *Service) Get(ctx context.Context, userID string, isAdmin bool, id string) (*ExpenseResponse, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil || !canView(e, userID, isAdmin) {
		return nil, ErrExpenseNotFound
	}
	return e.ToResponse(), nil
}

// ListFilter narrows an expense listing
type ListFilter struct {
	Kind     string // group, individual, pot or empty for all
	OnlyMine bool   // restrict to expenses the caller pays for or owes on
	Limit    int    // 0 = no limit
}

// List retrieves the expenses visible to the caller, newest first
func (s *Service) List(ctx context.Context, userID string, isAdmin bool, filter ListFilter) ([]*ExpenseResponse, error) {
	expenses, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		if filter.Kind != "" && string(e.Kind) != filter.Kind {
			continue
		}
		if !canView(e, userID, isAdmin) {
			continue
		}
		if filter.OnlyMine && !isParticipant(e, userID) {
			continue
		}
		responses = append(responses, e.ToResponse())
		if filter.Limit > 0 && len(responses) == filter.Limit {
			break
		}
	}

	return responses, nil
}

// canView applies the kind-specific visibility rule: individual expenses
// belong to their creator, pot expenses to the admin, group expenses to
// anyone who took part
func canView(e *Expense, userID string, isAdmin bool) bool {
	switch e.Kind {
	case KindIndividual:
		return e.CreatedBy == userID
	case KindPot:
		return isAdmin || e.CreatedBy == userID
	default:
		return e.CreatedBy == userID || isParticipant(e, userID)
	}
}

// isParticipant reports whether the user is a payer or split member
func isParticipant(e *Expense, userID string) bool {
	for _, p := range e.Payers {
		if p.UserID == userID {
			return true
		}
	}
	for _, s := range e.Splits {
		if s.UserID == userID {
			return true
		}
	}
	return false
}
