package util

import "testing"

func TestAbs(t *testing.T) {
	if got := Abs(-5); got != 5 {
		t.Errorf("Abs(-5) = %d, want 5", got)
	}
	if got := Abs(5); got != 5 {
		t.Errorf("Abs(5) = %d, want 5", got)
	}
	if got := Abs(int32(-100)); got != 100 {
		t.Errorf("Abs(int32(-100)) = %d, want 100", got)
	}
	if got := Abs(int16(-512)); got != 512 {
		t.Errorf("Abs(int16(-512)) = %d, want 512", got)
	}
	if got := Abs(float32(-3.5)); got != 3.5 {
		t.Errorf("Abs(float32(-3.5)) = %v, want 3.5", got)
	}
}
