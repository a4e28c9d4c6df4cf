package split

import "math"

// ExactStrategy passes through a specific owed amount per participant
// (the amounts must sum to the total)
type ExactStrategy struct{}

// Type returns the split type identifier
func (s *ExactStrategy) Type() Type {
	return TypeExact
}

// Validate checks if the inputs are valid for an exact split
func (s *ExactStrategy) Validate(totalAmount float64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount < 0 {
		return ErrNegativeAmount
	}

	var totalExact float64
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingExactAmount
		}
		if *p.Amount < 0 {
			return ErrNegativeAmount
		}
		totalExact += *p.Amount
	}

	// Tolerate 2-decimal rounding residue
	if math.Abs(totalExact-totalAmount) > 0.01 {
		return ErrInvalidExactTotal
	}

	return nil
}

// Calculate returns the exact amounts specified for each participant
func (s *ExactStrategy) Calculate(totalAmount float64, participants []Input) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	outputs := make([]Output, len(participants))
	for i, p := range participants {
		outputs[i] = Output{
			UserID:     p.UserID,
			Shares:     1,
			AmountOwed: roundToTwoDecimals(*p.Amount),
		}
	}

	return outputs, nil
}
