package rank

import (
	"testing"

	"github.com/socialrank/collector/pkg/lib"
)

func TestTargetRank_NoSignals(t *testing.T) {
	if got := NewTargetRank().Build(); got != 0.5 {
		t.Errorf("expected 0.5 for no signals, got %.17f", got)
	}
}

func TestTargetRank_Bonuses(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *TargetRank
		wantSum float64
	}{
		{
			name:    "favorite app post",
			build:   func() *TargetRank { return NewTargetRank().PostedInFavoriteApp(true) },
			wantSum: 0.2,
		},
		{
			name:    "liked by connections",
			build:   func() *TargetRank { return NewTargetRank().LikedByConnections(true) },
			wantSum: 0.5,
		},
		{
			name:    "widely liked",
			build:   func() *TargetRank { return NewTargetRank().WidelyLiked(true) },
			wantSum: 0.5,
		},
		{
			name: "liked by connections and widely liked share one bonus",
			build: func() *TargetRank {
				return NewTargetRank().LikedByConnections(true).WidelyLiked(true)
			},
			wantSum: 0.5,
		},
		{
			name:    "participated by connections",
			build:   func() *TargetRank { return NewTargetRank().ParticipatedByConnections(true) },
			wantSum: 0.6,
		},
		{
			name:    "posted in favorite stream",
			build:   func() *TargetRank { return NewTargetRank().PostedInFavoriteStream(true) },
			wantSum: 0.6,
		},
		{
			name: "participated by connections and favorite stream share one bonus",
			build: func() *TargetRank {
				return NewTargetRank().ParticipatedByConnections(true).PostedInFavoriteStream(true)
			},
			wantSum: 0.6,
		},
		{
			name: "liked by me scales with reactivity",
			build: func() *TargetRank {
				return NewTargetRank().LikedByMe(true).Reactivity(0.5)
			},
			wantSum: 0.5 * 0.7,
		},
		{
			name: "participated by me scales with reactivity",
			build: func() *TargetRank {
				return NewTargetRank().ParticipatedByMe(true).Reactivity(0.5)
			},
			wantSum: 0.5 * 1.0,
		},
		{
			name: "all signals stack",
			build: func() *TargetRank {
				return NewTargetRank().
					PostedInFavoriteApp(true).
					WidelyLiked(true).
					PostedInFavoriteStream(true).
					LikedByMe(true).
					ParticipatedByMe(true).
					Reactivity(1.0)
			},
			wantSum: 0.2 + 0.5 + 0.6 + 0.7 + 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.build().Build()
			want := lib.Sigmoid(tt.wantSum)
			if got != want {
				t.Errorf("expected sigmoid(%.3f)=%.9f, got %.9f", tt.wantSum, want, got)
			}
		})
	}
}

func TestTargetRank_InfluencerTouchesAccumulate(t *testing.T) {
	r := NewTargetRank().
		ParticipatedByInfluencer(0.8).
		ParticipatedByInfluencer(0.6).
		LikedByInfluencer(0.5)

	wantSum := 0.8*0.9 + 0.6*0.9 + 0.5*0.7
	if got, want := r.Build(), lib.Sigmoid(wantSum); got != want {
		t.Errorf("expected %.9f, got %.9f", want, got)
	}
}

func TestTargetRank_ReactivityClamped(t *testing.T) {
	over := NewTargetRank().ParticipatedByMe(true).Reactivity(3.0).Build()
	if want := lib.Sigmoid(1.0); over != want {
		t.Errorf("expected reactivity clamped to 1.0 (%.9f), got %.9f", want, over)
	}

	under := NewTargetRank().ParticipatedByMe(true).Reactivity(-1).Build()
	if want := lib.Sigmoid(0); under != want {
		t.Errorf("expected reactivity clamped to 0 (%.9f), got %.9f", want, under)
	}
}

func TestTargetRank_BoundedOutput(t *testing.T) {
	r := NewTargetRank()
	for i := 0; i < 1000; i++ {
		r.ParticipatedByInfluencer(1.0)
	}
	got := r.Build()
	if got <= 0 || got >= 1 {
		t.Errorf("expected label in (0,1) even for extreme sums, got %v", got)
	}
}
