package currency

import "testing"

func TestToINR(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		thb  float64
		want float64
	}{
		{name: "default rate whole amount", rate: 2.4, thb: 1000, want: 2400},
		{name: "rounds to nearest rupee", rate: 2.4, thb: 10.2, want: 24},
		{name: "rounds half up", rate: 2.5, thb: 101, want: 253}, // 252.5 → 253
		{name: "zero", rate: 2.4, thb: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConverter(tt.rate)
			if got := c.ToINR(tt.thb); got != tt.want {
				t.Errorf("ToINR(%v) = %v, want %v", tt.thb, got, tt.want)
			}
		})
	}
}

func TestINRAt(t *testing.T) {
	if got := INRAt(500, 2.38); got != 1190 {
		t.Errorf("INRAt(500, 2.38) = %v, want 1190", got)
	}
}
