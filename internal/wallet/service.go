package wallet

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/sanjaibalajee/weebsworldxplorers/pkg/currency"
)

// Common errors
var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidRate   = errors.New("exchange rate must be positive")
)

// Service handles wallet business logic
type Service struct {
	store       Store
	defaultRate float64 // THB→INR rate used when a topup omits one
	converter   *currency.Converter
}

// NewService creates a new wallet service with the store injected
func NewService(store Store, defaultRate float64) *Service {
	return &Service{
		store:       store,
		defaultRate: defaultRate,
		converter:   currency.NewConverter(defaultRate),
	}
}

// Topup loads cash into the user's wallet
func (s *Service) Topup(ctx context.Context, userID string, req *CreateTopupRequest) (*Topup, error) {
	if req.AmountThb <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.ExchangeRate == 0 {
		req.ExchangeRate = s.defaultRate
	}
	if req.ExchangeRate <= 0 {
		return nil, ErrInvalidRate
	}

	topup := &Topup{
		UserID:       userID,
		AmountThb:    req.AmountThb,
		ExchangeRate: req.ExchangeRate,
		Source:       req.Source,
	}

	topup, err := s.store.CreateTopup(ctx, topup)
	if err != nil {
		return nil, err
	}

	slog.Info("wallet topup", "user_id", userID, "amount_thb", req.AmountThb)
	return topup, nil
}

// Balance returns the user's current wallet balance rounded to satang, with
// the rupee equivalent at the trip's display rate
func (s *Service) Balance(ctx context.Context, userID string) (*BalanceResponse, error) {
	balance, err := s.store.CurrentBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	balance = math.Round(balance*100) / 100
	return &BalanceResponse{
		Balance:    balance,
		BalanceInr: s.converter.ToINR(balance),
	}, nil
}

// Transactions returns the user's full money trail, newest first
func (s *Service) Transactions(ctx context.Context, userID string) ([]*Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// Topups returns the user's topups, newest first
func (s *Service) Topups(ctx context.Context, userID string) ([]*Topup, error) {
	return s.store.ListTopups(ctx, userID)
}

// AllTopups returns every user's topups, newest first
func (s *Service) AllTopups(ctx context.Context) ([]*Topup, error) {
	return s.store.ListAllTopups(ctx)
}

// HasSetup reports whether the user's wallet has been initialized with at
// least one transaction
func (s *Service) HasSetup(ctx context.Context, userID string) (bool, error) {
	return s.store.HasTransactions(ctx, userID)
}
