package utils

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"hello world", 5, "hello..."},
		{"hello", 10, "hello"},
		{"hello", 0, "hello"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.s, tt.maxLen); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
		}
	}
}

func TestTruncateAtSentence(t *testing.T) {
	s := "First sentence here. Second sentence follows. Third one."

	// Boundary past the fraction: back off to the period.
	got := TruncateAtSentence(s, 50, 0.7)
	if got != "First sentence here. Second sentence follows." {
		t.Errorf("got %q", got)
	}

	// Boundary too early: hard cut instead.
	got = TruncateAtSentence(s, 40, 0.7)
	if len(got) != 40 {
		t.Errorf("expected hard cut at 40 chars, got %d", len(got))
	}

	// Fits entirely.
	if got := TruncateAtSentence(s, 1000, 0.7); got != s {
		t.Errorf("short input should be unchanged, got %q", got)
	}

	if got := TruncateAtSentence(s, 0, 0.7); got != "" {
		t.Errorf("zero budget should return empty, got %q", got)
	}
}

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm < 0.99 || norm > 1.01 {
		t.Errorf("norm = %f, want 1", norm)
	}

	zero := []float32{0, 0}
	NormalizeL2(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector should be unchanged, got %v", zero)
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.7, 1},
	}
	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}
