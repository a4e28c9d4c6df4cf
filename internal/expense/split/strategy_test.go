package split

import (
	"math"
	"testing"
)

func fptr(v float64) *float64 { return &v }

// sumOwed asserts the outputs conserve the expense total within a cent
func sumOwed(t *testing.T, outputs []Output, total float64) {
	t.Helper()
	var sum float64
	for _, o := range outputs {
		sum += o.AmountOwed
	}
	if math.Abs(sum-total) > 0.01 {
		t.Errorf("owed amounts sum to %g, want %g", sum, total)
	}
}

func TestEvenStrategy(t *testing.T) {
	tests := []struct {
		name         string
		total        float64
		participants []Input
		want         []float64
		wantErr      error
	}{
		{
			name:         "splits evenly",
			total:        300,
			participants: []Input{{UserID: "a"}, {UserID: "b"}, {UserID: "c"}},
			want:         []float64{100, 100, 100},
		},
		{
			name:         "puts rounding residue on last participant",
			total:        100,
			participants: []Input{{UserID: "a"}, {UserID: "b"}, {UserID: "c"}},
			want:         []float64{33.33, 33.33, 33.34},
		},
		{
			name:         "single participant owes everything",
			total:        250,
			participants: []Input{{UserID: "a"}},
			want:         []float64{250},
		},
		{
			name:    "rejects empty participants",
			total:   100,
			wantErr: ErrNoParticipants,
		},
		{
			name:         "rejects negative total",
			total:        -5,
			participants: []Input{{UserID: "a"}},
			wantErr:      ErrNegativeAmount,
		},
	}

	s := &EvenStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Calculate(tt.total, tt.participants)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Fatalf("Calculate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Calculate() unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d outputs, want %d", len(got), len(tt.want))
			}
			for i, w := range tt.want {
				if got[i].AmountOwed != w {
					t.Errorf("participant %s owes %g, want %g", got[i].UserID, got[i].AmountOwed, w)
				}
			}
			sumOwed(t, got, tt.total)
		})
	}
}

func TestSharesStrategy(t *testing.T) {
	tests := []struct {
		name         string
		total        float64
		participants []Input
		want         []float64
		wantErr      error
	}{
		{
			name:  "weights by shares",
			total: 400,
			participants: []Input{
				{UserID: "a", Shares: fptr(2)},
				{UserID: "b", Shares: fptr(1)},
				{UserID: "c", Shares: fptr(1)},
			},
			want: []float64{200, 100, 100},
		},
		{
			name:  "conserves total under rounding",
			total: 100,
			participants: []Input{
				{UserID: "a", Shares: fptr(1)},
				{UserID: "b", Shares: fptr(1)},
				{UserID: "c", Shares: fptr(1)},
			},
			want: []float64{33.33, 33.33, 33.34},
		},
		{
			name:  "rejects missing shares",
			total: 100,
			participants: []Input{
				{UserID: "a", Shares: fptr(1)},
				{UserID: "b"},
			},
			wantErr: ErrMissingShares,
		},
		{
			name:  "rejects zero shares",
			total: 100,
			participants: []Input{
				{UserID: "a", Shares: fptr(0)},
			},
			wantErr: ErrInvalidShares,
		},
	}

	s := &SharesStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Calculate(tt.total, tt.participants)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Fatalf("Calculate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Calculate() unexpected error: %v", err)
			}
			for i, w := range tt.want {
				if got[i].AmountOwed != w {
					t.Errorf("participant %s owes %g, want %g", got[i].UserID, got[i].AmountOwed, w)
				}
			}
			sumOwed(t, got, tt.total)
		})
	}
}

func TestExactStrategy(t *testing.T) {
	tests := []struct {
		name         string
		total        float64
		participants []Input
		want         []float64
		wantErr      error
	}{
		{
			name:  "passes through exact amounts",
			total: 150,
			participants: []Input{
				{UserID: "a", Amount: fptr(90)},
				{UserID: "b", Amount: fptr(60)},
			},
			want: []float64{90, 60},
		},
		{
			name:  "tolerates a cent of residue",
			total: 100,
			participants: []Input{
				{UserID: "a", Amount: fptr(33.33)},
				{UserID: "b", Amount: fptr(33.33)},
				{UserID: "c", Amount: fptr(33.33)},
			},
			want: []float64{33.33, 33.33, 33.33},
		},
		{
			name:  "rejects amounts that miss the total",
			total: 100,
			participants: []Input{
				{UserID: "a", Amount: fptr(40)},
				{UserID: "b", Amount: fptr(40)},
			},
			wantErr: ErrInvalidExactTotal,
		},
		{
			name:  "rejects missing amount",
			total: 100,
			participants: []Input{
				{UserID: "a", Amount: fptr(100)},
				{UserID: "b"},
			},
			wantErr: ErrMissingExactAmount,
		},
	}

	s := &ExactStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Calculate(tt.total, tt.participants)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Fatalf("Calculate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Calculate() unexpected error: %v", err)
			}
			for i, w := range tt.want {
				if got[i].AmountOwed != w {
					t.Errorf("participant %s owes %g, want %g", got[i].UserID, got[i].AmountOwed, w)
				}
			}
		})
	}
}

func TestFactory(t *testing.T) {
	f := NewFactory()

	for _, st := range []Type{TypeEven, TypeShares, TypeExact} {
		s, err := f.Create(st)
		if err != nil {
			t.Fatalf("Create(%s) unexpected error: %v", st, err)
		}
		if s.Type() != st {
			t.Errorf("Create(%s).Type() = %s", st, s.Type())
		}
	}

	if _, err := f.CreateFromString("RANDOM"); err == nil {
		t.Error("expected error for unknown split type")
	}
}
