package split

import (
	"errors"
	"fmt"
	"math"
)

// Type identifies how an expense's total is divided into owed amounts
type Type string

const (
	TypeEven   Type = "EVEN"
	TypeShares Type = "SHARES"
	TypeExact  Type = "EXACT"
)

// Input represents one split participant with the optional values their
// strategy needs. Unlike a classic debt splitter, the payer can appear here
// too: owing your own share of an expense you paid for is how net
// contribution is computed downstream.
type Input struct {
	UserID string   `json:"user_id"`
	Shares *float64 `json:"shares,omitempty"` // for SHARES split
	Amount *float64 `json:"amount,omitempty"` // for EXACT split
}

// Output represents the calculated owed amount for a single participant
type Output struct {
	UserID     string  `json:"user_id"`
	Shares     float64 `json:"shares"`
	AmountOwed float64 `json:"amount_owed"`
}

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Calculate computes owed amounts for all participants
	Calculate(totalAmount float64, participants []Input) ([]Output, error)

	// Type returns the type identifier for this strategy
	Type() Type

	// Validate checks if the inputs are valid for this strategy
	Validate(totalAmount float64, participants []Input) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType Type) (Strategy, error) {
	switch splitType {
	case TypeEven:
		return &EvenStrategy{}, nil
	case TypeShares:
		return &SharesStrategy{}, nil
	case TypeExact:
		return &ExactStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown split type: %s", splitType)
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(Type(splitType))
}

var (
	ErrNoParticipants     = errors.New("at least one participant is required")
	ErrNegativeAmount     = errors.New("amounts cannot be negative")
	ErrMissingShares      = errors.New("shares value required for all participants")
	ErrInvalidShares      = errors.New("shares must be greater than zero")
	ErrMissingExactAmount = errors.New("exact amount required for all participants")
	ErrInvalidExactTotal  = errors.New("exact amounts must sum to total amount")
)

// roundToTwoDecimals rounds a float to 2 decimal places
func roundToTwoDecimals(value float64) float64 {
	return math.Round(value*100) / 100
}
