package progress

import (
	"testing"
)

func TestRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    Progress
		want float64
	}{
		{name: "halfway", p: Progress{BytesCompleted: 50, TotalBytes: 100}, want: 0.5},
		{name: "complete", p: Progress{BytesCompleted: 100, TotalBytes: 100}, want: 1},
		{name: "unknown total", p: Progress{BytesCompleted: 50, TotalBytes: UnknownTotal}, want: -1},
		{name: "empty body", p: Progress{BytesCompleted: 0, TotalBytes: 0}, want: 1},
		{name: "overshoot clamps", p: Progress{BytesCompleted: 150, TotalBytes: 100}, want: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.p.Ratio(); got != tt.want {
				t.Errorf("expected ratio %v, got %v", tt.want, got)
			}
		})
	}
}

func TestKnownTotal(t *testing.T) {
	t.Parallel()

	if (Progress{TotalBytes: UnknownTotal}).KnownTotal() {
		t.Error("unknown total should not report as known")
	}
	if !(Progress{TotalBytes: 10}).KnownTotal() {
		t.Error("positive total should report as known")
	}
}

func TestSpeedCalculatorAveragesOverWindow(t *testing.T) {
	t.Parallel()

	s := NewSpeedCalculator(5)

	s.AddBytes(1000)

	// Everything landed in the current second; the average counts one bucket.
	if speed := s.GetSpeed(); speed != 1000 {
		t.Errorf("expected 1000 B/s, got %d", speed)
	}
}

func TestSpeedCalculatorDefaultsWindow(t *testing.T) {
	t.Parallel()

	s := NewSpeedCalculator(0)
	s.AddBytes(10)

	if speed := s.GetSpeed(); speed != 10 {
		t.Errorf("expected 10 B/s, got %d", speed)
	}
}
