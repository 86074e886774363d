package rank

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/socialrank/collector/pkg/lib"
)

// DefaultWeight is returned for entities with no recorded evidence.
// It sits at the logistic midpoint so "unknown" is neutral rather than
// negative. Note that a single weak observation aggregates below this
// value; that asymmetry is relied upon downstream and must not be
// patched here.
const DefaultWeight = 0.5

// Base weights per interaction category, decreasing by how directly the
// interaction targets the current user (being the target of an action
// outranks sharing a thread, which outranks sharing a like).
const (
	weightCommentedOnMine    = 1.0
	weightRepliedToMyComment = 0.9
	weightMentionedMe        = 0.8
	weightLikedMine          = 0.7
	weightLikedMyComment     = 0.6
	weightCommentedSameAsMe  = 0.4
	weightConnectedToMe      = 0.3
	weightLikedSameAsMe      = 0.2
	weightSharesSpaceWithMe  = 0.1

	weightMyPostInStream    = 1.0
	weightMyCommentInStream = 0.9
	weightMyLikeInStream    = 0.5
	weightMySpaceStream     = 0.3
	weightMyViewOfStream    = 0.1
)

// Influencers accumulates weighted interaction observations for one
// user's collection pass and reduces them to bounded influence scores.
//
// State is append-only and owned by a single goroutine; one instance is
// created per user per run and discarded afterwards. Weights are always
// recomputed from scratch each run: incrementally aging a previously
// persisted score would compound the decay incorrectly.
type Influencers struct {
	// now is fixed at construction so every observation in one pass
	// ages against the same reference point.
	now          time.Time
	streams      map[string][]float64
	streamOrder  []string
	participants map[string][]float64
}

func NewInfluencers(now time.Time) *Influencers {
	return &Influencers{
		now:          now,
		streams:      make(map[string][]float64),
		participants: make(map[string][]float64),
	}
}

// AddStream appends one weighted observation for a stream.
func (u *Influencers) AddStream(key string, weight float64) error {
	if err := checkWeight(weight); err != nil {
		return err
	}
	if _, ok := u.streams[key]; !ok {
		u.streamOrder = append(u.streamOrder, key)
	}
	u.streams[key] = append(u.streams[key], weight)
	return nil
}

// AddParticipant appends one weighted observation for a participant.
func (u *Influencers) AddParticipant(key string, weight float64) error {
	if err := checkWeight(weight); err != nil {
		return err
	}
	u.participants[key] = append(u.participants[key], weight)
	return nil
}

func checkWeight(weight float64) error {
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return fmt.Errorf("observation weight must be finite, got %v", weight)
	}
	return nil
}

// StreamWeight returns the aggregated score for a stream, or
// DefaultWeight when nothing was observed for it.
func (u *Influencers) StreamWeight(key string) float64 {
	return aggregate(u.streams[key])
}

// ParticipantWeight returns the aggregated score for a participant.
// contextKey carries the owning stream for future context-sensitive
// scoring; the current aggregation ignores it.
func (u *Influencers) ParticipantWeight(key string, contextKey string) float64 {
	_ = contextKey
	return aggregate(u.participants[key])
}

// FavoriteStreams lists all observed stream keys, most favored first.
// Ties keep first-seen order, so the ranking is stable across runs.
func (u *Influencers) FavoriteStreams() []string {
	keys := make([]string, len(u.streamOrder))
	copy(keys, u.streamOrder)

	sort.SliceStable(keys, func(i, j int) bool {
		return aggregate(u.streams[keys[i]]) > aggregate(u.streams[keys[j]])
	})
	return keys
}

// TopFavoriteStreams returns the first n favorite streams.
func (u *Influencers) TopFavoriteStreams(n int) []string {
	all := u.FavoriteStreams()
	if n < len(all) {
		return all[:n]
	}
	return all
}

// aggregate reduces a key's observations to one bounded score.
func aggregate(obs []float64) float64 {
	if len(obs) == 0 {
		return DefaultWeight
	}
	var sum float64
	for _, o := range obs {
		sum += o
	}
	return influenceScore(sum)
}

// influenceScore maps a positive observation sum S to (0,1) via
// sigmoid(2*ln(S)), which is algebraically S²/(S²+1).
//
// Properties the rest of the system depends on: S=1 maps to exactly
// 0.5; S<1 maps below the no-evidence default; the function is strictly
// increasing with diminishing returns. A non-positive sum carries no
// usable evidence, so it falls back to DefaultWeight instead of feeding
// ln a non-positive argument.
func influenceScore(sum float64) float64 {
	if sum <= 0 {
		return DefaultWeight
	}
	return lib.Sigmoid(2 * math.Log(sum))
}
