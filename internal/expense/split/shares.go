package split

// SharesStrategy divides the expense proportionally to each participant's
// share weight (2 shares pay twice what 1 share pays)
type SharesStrategy struct{}

// Type returns the split type identifier
func (s *SharesStrategy) Type() Type {
	return TypeShares
}

// Validate checks if the inputs are valid for a shares split
func (s *SharesStrategy) Validate(totalAmount float64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount < 0 {
		return ErrNegativeAmount
	}
	for _, p := range participants {
		if p.Shares == nil {
			return ErrMissingShares
		}
		if *p.Shares <= 0 {
			return ErrInvalidShares
		}
	}
	return nil
}

// Calculate divides the total amount by share weight. Rounding residue goes
// to the last participant so the owed amounts conserve the total.
func (s *SharesStrategy) Calculate(totalAmount float64, participants []Input) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	var totalShares float64
	for _, p := range participants {
		totalShares += *p.Shares
	}

	outputs := make([]Output, len(participants))
	var distributed float64
	for i, p := range participants {
		amount := roundToTwoDecimals(totalAmount * (*p.Shares) / totalShares)
		if i == len(participants)-1 {
			amount = roundToTwoDecimals(totalAmount - distributed)
		}
		distributed += amount
		outputs[i] = Output{
			UserID:     p.UserID,
			Shares:     *p.Shares,
			AmountOwed: amount,
		}
	}

	return outputs, nil
}
