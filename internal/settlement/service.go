package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sanjaibalajee/weebsworldxplorers/internal/balance"
)

var (
	// ErrSettlementNotFound means the settlement does not exist
	ErrSettlementNotFound = errors.New("settlement not found")
	// ErrNotReceiver means only the receiver may resolve a settlement
	ErrNotReceiver = errors.New("only the receiver can resolve this settlement")
	// ErrNotPending means the settlement has already been resolved
	ErrNotPending = errors.New("settlement is not pending")
	// ErrInvalidSettlement means the request failed validation
	ErrInvalidSettlement = errors.New("invalid settlement")
	// ErrSelfSettlement means a user cannot settle with themselves
	ErrSelfSettlement = errors.New("cannot settle with yourself")
)

// WalletReader is the slice of the wallet store the dashboard needs
type WalletReader interface {
	CurrentBalance(ctx context.Context, userID string) (float64, error)
}

// Service handles settlement business logic
type Service struct {
	store   Store
	wallets WalletReader
}

// NewService creates a new settlement service
func NewService(store Store, wallets WalletReader) *Service {
	return &Service{store: store, wallets: wallets}
}

// Create records a settlement. The receive direction (creditor confirming
// money arrived) is confirmed immediately with wallet effects; the pay
// direction waits for the receiver.
func (s *Service) Create(ctx context.Context, userID string, req *CreateSettlementRequest) (*SettlementResponse, error) {
	if req.AmountThb <= 0 {
		return nil, ErrInvalidSettlement
	}
	if req.OtherUserID == "" || req.OtherUserID == userID {
		return nil, ErrSelfSettlement
	}

	stl := &Settlement{
		AmountThb: req.AmountThb,
		AmountInr: req.AmountInr,
	}

	switch Direction(req.Direction) {
	case DirectionPay:
		stl.PayerID = userID
		stl.ReceiverID = req.OtherUserID
		stl.Status = StatusPending
		stl.AffectsPayerWallet = req.AffectsWallet
	case DirectionReceive:
		stl.PayerID = req.OtherUserID
		stl.ReceiverID = userID
		stl.Status = StatusConfirmed
		// The debtor handed over cash, so their wallet always reflects it;
		// the creditor chooses whether theirs does.
		stl.AffectsPayerWallet = true
		stl.AffectsReceiverWallet = req.AffectsWallet
	default:
		return nil, ErrInvalidSettlement
	}

	if len(req.Links) > 0 {
		var linkTotal float64
		for _, l := range req.Links {
			if l.ExpenseID == "" {
				return nil, fmt.Errorf("%w: link expense_id is required", ErrInvalidSettlement)
			}
			if l.AmountThb <= 0 {
				return nil, fmt.Errorf("%w: link amounts must be positive", ErrInvalidSettlement)
			}
			linkTotal += l.AmountThb
		}
		if linkTotal > req.AmountThb+0.01 {
			return nil, fmt.Errorf("%w: linked amounts exceed the settle amount", ErrInvalidSettlement)
		}
		for _, l := range req.Links {
			stl.Links = append(stl.Links, &ExpenseLink{ExpenseID: l.ExpenseID, AmountThb: l.AmountThb})
		}
	} else {
		links, err := s.allocateLinks(ctx, stl)
		if err != nil {
			return nil, err
		}
		stl.Links = links
	}

	created, err := s.store.Create(ctx, stl)
	if err != nil {
		return nil, err
	}

	slog.Info("settlement created",
		"settlement_id", created.ID, "payer", created.PayerID, "receiver", created.ReceiverID,
		"amount_thb", created.AmountThb, "status", created.Status)

	return created.ToResponse(), nil
}

// allocateLinks attributes the settle amount to the payer's outstanding
// expenses toward the receiver, newest first. The outstanding per expense
// is its balance-engine contribution minus what earlier settlements already
// attributed to it.
func (s *Service) allocateLinks(ctx context.Context, stl *Settlement) ([]*ExpenseLink, error) {
	detailed, err := s.computeBalances(ctx, stl.ReceiverID)
	if err != nil {
		return nil, err
	}

	var shares []balance.ExpenseShare
	for _, b := range detailed.OwedToYou {
		if b.UserID == stl.PayerID {
			shares = b.Expenses
			break
		}
	}
	if len(shares) == 0 {
		return nil, nil
	}

	linked, err := s.store.LinkedAmounts(ctx, stl.PayerID, stl.ReceiverID)
	if err != nil {
		return nil, err
	}

	outstanding := make([]Outstanding, 0, len(shares))
	for _, share := range shares {
		outstanding = append(outstanding, Outstanding{
			ExpenseID: share.ExpenseID,
			Date:      share.Date,
			Remaining: share.Amount - linked[share.ExpenseID],
		})
	}

	return Allocate(stl.AmountThb, outstanding), nil
}

// Confirm applies a pending settlement. Only the receiver may confirm, and
// they decide whether their own wallet is credited.
func (s *Service) Confirm(ctx context.Context, userID, id string, affectsMyWallet bool) (*SettlementResponse, error) {
	confirmed, err := s.store.Confirm(ctx, id, userID, affectsMyWallet)
	if err != nil {
		return nil, err
	}

	slog.Info("settlement confirmed", "settlement_id", id, "receiver", userID)

	return confirmed.ToResponse(), nil
}

// Reject declines a pending settlement. The row is kept as rejected.
func (s *Service) Reject(ctx context.Context, userID, id string) (*SettlementResponse, error) {
	rejected, err := s.store.Reject(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	slog.Info("settlement rejected", "settlement_id", id, "receiver", userID)

	return rejected.ToResponse(), nil
}

// Get retrieves one settlement if the caller is a party to it
func (s *Service) Get(ctx context.Context, userID, id string) (*SettlementResponse, error) {
	stl, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stl == nil || (stl.PayerID != userID && stl.ReceiverID != userID) {
		return nil, ErrSettlementNotFound
	}
	return stl.ToResponse(), nil
}

func toResponses(settlements []*Settlement) []*SettlementResponse {
	responses := make([]*SettlementResponse, len(settlements))
	for i, s := range settlements {
		responses[i] = s.ToResponse()
	}
	return responses
}

// List returns every settlement involving the caller, newest first
func (s *Service) List(ctx context.Context, userID string) ([]*SettlementResponse, error) {
	settlements, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toResponses(settlements), nil
}

// Pending returns settlements awaiting the caller's confirmation
func (s *Service) Pending(ctx context.Context, userID string) ([]*SettlementResponse, error) {
	settlements, err := s.store.ListPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toResponses(settlements), nil
}

// Outgoing returns the caller's own unconfirmed settlements
func (s *Service) Outgoing(ctx context.Context, userID string) ([]*SettlementResponse, error) {
	settlements, err := s.store.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toResponses(settlements), nil
}

func (s *Service) computeBalances(ctx context.Context, userID string) (balance.Detailed, error) {
	expenses, err := s.store.GroupExpenses(ctx)
	if err != nil {
		return balance.Detailed{}, err
	}
	settlements, err := s.store.ConfirmedSettlements(ctx, userID)
	if err != nil {
		return balance.Detailed{}, err
	}
	return balance.Compute(userID, expenses, settlements), nil
}

// DetailedBalances returns who owes the caller and whom the caller owes,
// with the contributing expenses, recomputed from scratch
func (s *Service) DetailedBalances(ctx context.Context, userID string) (*DetailedBalancesResponse, error) {
	detailed, err := s.computeBalances(ctx, userID)
	if err != nil {
		return nil, err
	}

	names, err := s.store.UserNames(ctx)
	if err != nil {
		return nil, err
	}
	for i := range detailed.OwedToYou {
		detailed.OwedToYou[i].UserName = names[detailed.OwedToYou[i].UserID]
	}
	for i := range detailed.OwedByYou {
		detailed.OwedByYou[i].UserName = names[detailed.OwedByYou[i].UserID]
	}

	return &DetailedBalancesResponse{
		OwedToYou: detailed.OwedToYou,
		OwedByYou: detailed.OwedByYou,
	}, nil
}

// DashboardBalances returns the aggregate owe/owed totals plus the caller's
// wallet balance (cash in hand, independent of inter-person debt)
func (s *Service) DashboardBalances(ctx context.Context, userID string) (*DashboardBalancesResponse, error) {
	detailed, err := s.computeBalances(ctx, userID)
	if err != nil {
		return nil, err
	}
	owedToMe, owedByMe := detailed.Totals()

	walletBalance, err := s.wallets.CurrentBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &DashboardBalancesResponse{
		OwedToMe:      owedToMe,
		OwedByMe:      owedByMe,
		WalletBalance: walletBalance,
	}, nil
}
