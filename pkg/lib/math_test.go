package lib

import (
	"math"
	"testing"
)

func TestSigmoid_Midpoint(t *testing.T) {
	if v := Sigmoid(0); v != 0.5 {
		t.Errorf("expected exactly 0.5 at x=0, got %.17f", v)
	}
}

func TestSigmoid_Monotonic(t *testing.T) {
	prev := Sigmoid(-50)
	for x := -49.0; x <= 50; x++ {
		v := Sigmoid(x)
		if v <= prev {
			t.Errorf("expected strictly increasing output, got %.17f <= %.17f at x=%.0f", v, prev, x)
		}
		prev = v
	}
}

func TestSigmoid_OpenInterval(t *testing.T) {
	for _, x := range []float64{-1e6, -100, 0, 100, 1e6, math.Inf(1), math.Inf(-1)} {
		v := Sigmoid(x)
		if v <= 0 || v >= 1 {
			t.Errorf("expected output in (0,1), got %v at x=%v", v, x)
		}
	}
}

func TestClamp01(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{-1, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{1.5, 1},
	}
	for _, c := range cases {
		if got := Clamp01(c.in); got != c.want {
			t.Errorf("Clamp01(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
