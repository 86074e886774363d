package rank

import (
	"errors"
	"testing"
	"time"
)

func TestDateWeight_Today(t *testing.T) {
	w, err := DateWeight(0)
	if err != nil {
		t.Fatalf("DateWeight(0) error = %v", err)
	}
	if w != 1.0 {
		t.Errorf("expected exactly 1.0 for age 0, got %.17f", w)
	}
}

func TestDateWeight_Decreasing(t *testing.T) {
	prev, err := DateWeight(0)
	if err != nil {
		t.Fatalf("DateWeight(0) error = %v", err)
	}

	for d := 1; d < 30; d++ {
		w, err := DateWeight(d)
		if err != nil {
			t.Fatalf("DateWeight(%d) error = %v", d, err)
		}
		if w >= prev {
			t.Errorf("expected decreasing weights, got %.6f >= %.6f at day %d", w, prev, d)
		}
		if w <= 0 || w > 1 {
			t.Errorf("expected weight in (0,1], got %.6f at day %d", w, d)
		}
		prev = w
	}
}

func TestDateWeight_ClampsBeyondRange(t *testing.T) {
	floor, err := DateWeight(29)
	if err != nil {
		t.Fatalf("DateWeight(29) error = %v", err)
	}

	for _, d := range []int{30, 31, 365, 100000} {
		w, err := DateWeight(d)
		if err != nil {
			t.Fatalf("DateWeight(%d) error = %v", d, err)
		}
		if w != floor {
			t.Errorf("expected clamped floor %.6f at day %d, got %.6f", floor, d, w)
		}
	}
}

func TestDateWeight_NegativeAge(t *testing.T) {
	if _, err := DateWeight(-1); !errors.Is(err, ErrInvalidEventTime) {
		t.Errorf("expected ErrInvalidEventTime for negative age, got %v", err)
	}
}

func TestAdjustWeightByDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("event from right now keeps full weight", func(t *testing.T) {
		w, err := AdjustWeightByDate(0.7, now, now)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if w != 0.7 {
			t.Errorf("expected 0.7, got %.17f", w)
		}
	})

	t.Run("older events weigh less", func(t *testing.T) {
		fresh, err := AdjustWeightByDate(1.0, now.Add(-2*time.Hour), now)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		stale, err := AdjustWeightByDate(1.0, now.AddDate(0, 0, -10), now)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if stale >= fresh {
			t.Errorf("expected stale weight %.6f < fresh weight %.6f", stale, fresh)
		}
	})

	t.Run("zero timestamp is rejected", func(t *testing.T) {
		if _, err := AdjustWeightByDate(1.0, time.Time{}, now); !errors.Is(err, ErrInvalidEventTime) {
			t.Errorf("expected ErrInvalidEventTime, got %v", err)
		}
	})

	t.Run("future timestamp is rejected", func(t *testing.T) {
		if _, err := AdjustWeightByDate(1.0, now.Add(time.Minute), now); !errors.Is(err, ErrInvalidEventTime) {
			t.Errorf("expected ErrInvalidEventTime, got %v", err)
		}
	})
}
