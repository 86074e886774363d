package rank

import (
	"time"

	"github.com/socialrank/collector/pkg/lib"
)

// Relevance bonuses for the training label. Hand-tuned; changing any of
// these invalidates previously trained models.
const (
	bonusFavoriteApp               = 0.2
	bonusLikedSocially             = 0.5
	bonusParticipatedSocially      = 0.6
	factorLikedByInfluencer        = 0.7
	factorLikedByMe                = 0.7
	factorParticipatedByInfluencer = 0.9
	factorParticipatedByMe         = 1.0
)

// TargetRank accumulates relevance signals for one (user, activity)
// pair and builds the supervised-learning label attached to its
// training row. One builder per pair; Build consumes the state exactly
// once and is pure given it.
//
// The squashing here is a plain sigmoid over the linear combination;
// unlike the influence aggregation it does not pass the sum through ln
// first. The two formulas are intentionally distinct.
type TargetRank struct {
	participatedByMe          bool
	likedByMe                 bool
	participatedByConnections bool
	likedByConnections        bool
	postedInFavoriteStream    bool
	postedInFavoriteApp       bool
	widelyLiked               bool
	reactivity                float64
	influencerSum             float64
}

func NewTargetRank() *TargetRank {
	return &TargetRank{}
}

func (t *TargetRank) ParticipatedByMe(v bool) *TargetRank {
	t.participatedByMe = v
	return t
}

func (t *TargetRank) LikedByMe(v bool) *TargetRank {
	t.likedByMe = v
	return t
}

func (t *TargetRank) ParticipatedByConnections(v bool) *TargetRank {
	t.participatedByConnections = v
	return t
}

func (t *TargetRank) LikedByConnections(v bool) *TargetRank {
	t.likedByConnections = v
	return t
}

func (t *TargetRank) PostedInFavoriteStream(v bool) *TargetRank {
	t.postedInFavoriteStream = v
	return t
}

func (t *TargetRank) PostedInFavoriteApp(v bool) *TargetRank {
	t.postedInFavoriteApp = v
	return t
}

func (t *TargetRank) WidelyLiked(v bool) *TargetRank {
	t.widelyLiked = v
	return t
}

// Reactivity sets how promptly the user reacted to the activity,
// clamped into [0,1].
func (t *TargetRank) Reactivity(r float64) *TargetRank {
	t.reactivity = lib.Clamp01(r)
	return t
}

// ParticipatedByInfluencer adds one influencer participation touch.
// Repeated calls accumulate without bound so activities with many
// influencer touches rank higher.
func (t *TargetRank) ParticipatedByInfluencer(weight float64) *TargetRank {
	t.influencerSum += weight * factorParticipatedByInfluencer
	return t
}

// LikedByInfluencer adds one influencer like touch.
func (t *TargetRank) LikedByInfluencer(weight float64) *TargetRank {
	t.influencerSum += weight * factorLikedByInfluencer
	return t
}

// ReactionPromptness maps the delay between an activity's posted time
// and the user's first reaction onto [0,1]: an immediate reaction
// scores 1.0, one at the edge of the tracked reactivity window (or
// later, or absent) scores 0.
func ReactionPromptness(postedAt, reactedAt time.Time) float64 {
	if reactedAt.IsZero() || reactedAt.Before(postedAt) {
		return 0
	}
	window := reactivityDaysRange * dayLength
	delay := reactedAt.Sub(postedAt)
	if delay >= window {
		return 0
	}
	return 1 - float64(delay)/float64(window)
}

// Build reduces the accumulated signals to a label in (0,1).
func (t *TargetRank) Build() float64 {
	res := t.influencerSum

	if t.postedInFavoriteApp {
		res += bonusFavoriteApp
	}
	if t.likedByConnections || t.widelyLiked {
		res += bonusLikedSocially
	}
	if t.participatedByConnections || t.postedInFavoriteStream {
		res += bonusParticipatedSocially
	}
	if t.likedByMe {
		res += t.reactivity * factorLikedByMe
	}
	if t.participatedByMe {
		res += t.reactivity * factorParticipatedByMe
	}

	return lib.Sigmoid(res)
}
