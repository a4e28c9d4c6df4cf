package pot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrInvalidAmount means the load amount must be positive
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	// ErrUserNotFound means the target user does not exist
	ErrUserNotFound = errors.New("user not found")
)

// Service handles pot business logic
type Service struct {
	store Store
}

// NewService creates a new pot service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Load moves amountThb from userID's wallet into their pot. Fails when the
// wallet does not cover the amount; nothing is written in that case.
func (s *Service) Load(ctx context.Context, adminID string, req *LoadPotRequest) (*LoadPotResponse, error) {
	if req.AmountThb <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.UserID == "" {
		return nil, ErrUserNotFound
	}

	potBalance, walletBalance, err := s.store.Load(ctx, req.UserID, req.AmountThb, adminID)
	if err != nil {
		return nil, err
	}

	slog.Info("pot loaded", "user_id", req.UserID, "amount_thb", req.AmountThb, "pot_balance", potBalance)

	return &LoadPotResponse{
		NewPotBalance:    potBalance,
		NewWalletBalance: walletBalance,
	}, nil
}

// BulkLoad loads the same amount into every member's pot. Members whose
// wallet cannot cover the amount are skipped and reported, not failed.
func (s *Service) BulkLoad(ctx context.Context, adminID string, req *BulkLoadRequest) (*BulkLoadResponse, error) {
	if req.AmountThbPerPerson <= 0 {
		return nil, ErrInvalidAmount
	}

	members, err := s.store.MemberUsers(ctx)
	if err != nil {
		return nil, err
	}

	resp := &BulkLoadResponse{Results: make([]*BulkLoadResult, 0, len(members))}
	loaded := 0
	for _, m := range members {
		result := &BulkLoadResult{UserID: m.ID, Name: m.Name}

		_, _, err := s.store.Load(ctx, m.ID, req.AmountThbPerPerson, adminID)
		switch {
		case errors.Is(err, ErrInsufficientWallet):
			result.Error = "insufficient wallet balance"
		case err != nil:
			return nil, fmt.Errorf("failed to load pot for %s: %w", m.Name, err)
		default:
			result.Success = true
			loaded++
		}

		resp.Results = append(resp.Results, result)
	}
	resp.Message = fmt.Sprintf("Loaded ฿%g into %d of %d pots", req.AmountThbPerPerson, loaded, len(members))

	slog.Info("bulk pot load", "amount_thb", req.AmountThbPerPerson, "loaded", loaded, "total", len(members))

	return resp, nil
}

// Balance returns the user's current pot balance
func (s *Service) Balance(ctx context.Context, userID string) (float64, error) {
	return s.store.Balance(ctx, userID)
}

// Transactions returns the user's pot ledger, newest first
func (s *Service) Transactions(ctx context.Context, userID string) ([]*TransactionResponse, error) {
	txns, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*TransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = txn.ToResponse()
	}
	return responses, nil
}

// Members returns all non-admin users, for the admin pot-load picker
func (s *Service) Members(ctx context.Context) ([]*Member, error) {
	return s.store.MemberUsers(ctx)
}

// AllBalances returns every member's pot balance plus the group total
func (s *Service) AllBalances(ctx context.Context) (*PotBalancesResponse, error) {
	pots, err := s.store.MembersWithPots(ctx)
	if err != nil {
		return nil, err
	}

	resp := &PotBalancesResponse{Balances: make([]*UserPotResponse, len(pots))}
	for i, p := range pots {
		resp.Balances[i] = p.ToResponse()
		resp.Total += p.Balance
	}
	return resp, nil
}
