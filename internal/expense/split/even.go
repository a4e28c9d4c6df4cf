package split

// EvenStrategy divides the expense equally among all participants
type EvenStrategy struct{}

// Type returns the split type identifier
func (s *EvenStrategy) Type() Type {
	return TypeEven
}

// Validate checks if the inputs are valid for an even split
func (s *EvenStrategy) Validate(totalAmount float64, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Calculate divides the total amount evenly among all participants. Rounding
// residue goes to the last participant so the owed amounts conserve the total.
func (s *EvenStrategy) Calculate(totalAmount float64, participants []Input) ([]Output, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	share := roundToTwoDecimals(totalAmount / float64(len(participants)))

	outputs := make([]Output, len(participants))
	var distributed float64
	for i, p := range participants {
		amount := share
		if i == len(participants)-1 {
			amount = roundToTwoDecimals(totalAmount - distributed)
		}
		distributed += amount
		outputs[i] = Output{
			UserID:     p.UserID,
			Shares:     1,
			AmountOwed: amount,
		}
	}

	return outputs, nil
}
