package domain

import "testing"

func TestRegistrationFee(t *testing.T) {
	tests := []struct {
		rereg, imported bool
		want            int
	}{
		{false, false, 60},
		{true, false, 50},
		{false, true, 50},
		{true, true, 50},
	}
	for _, tt := range tests {
		if got := RegistrationFee(tt.rereg, tt.imported); got != tt.want {
			t.Errorf("RegistrationFee(%v, %v) = %d, want %d", tt.rereg, tt.imported, got, tt.want)
		}
	}
}

func TestRegistrationNumber(t *testing.T) {
	if got := RegistrationNumber(2025, 42); got != "2025/00042" {
		t.Errorf("got %q", got)
	}
}
