// Package collector runs the per-user feature collection pass: it
// loads a user's social context, seeds an influence accumulator, walks
// the user's activity feed and emits one feature row per activity.
package collector

import (
	"context"
	"time"

	"github.com/socialrank/collector/pkg/rank"
)

// Mode selects whether rows carry a training label.
type Mode string

const (
	// ModeTraining attaches the relevance label column to each row.
	ModeTraining Mode = "training"
	// ModeServing emits unlabeled rows for prediction.
	ModeServing Mode = "serving"
)

// InteractionKind categorizes one raw interaction record from the
// user's history. Each kind maps to exactly one accumulator helper.
type InteractionKind string

const (
	KindCommentedOnMine    InteractionKind = "commented_on_mine"
	KindRepliedToMyComment InteractionKind = "replied_to_my_comment"
	KindMentionedMe        InteractionKind = "mentioned_me"
	KindLikedMine          InteractionKind = "liked_mine"
	KindLikedMyComment     InteractionKind = "liked_my_comment"
	KindCommentedSameAsMe  InteractionKind = "commented_same_thread"
	KindLikedSameAsMe      InteractionKind = "liked_same_object"

	KindMyPost    InteractionKind = "my_post"
	KindMyComment InteractionKind = "my_comment"
	KindMyLike    InteractionKind = "my_like"
	KindMyView    InteractionKind = "my_view"
)

// Interaction is one historical interaction record. ActorID names the
// counterpart identity for participant kinds and is empty for the
// user's own stream actions; StreamID is set for stream kinds.
type Interaction struct {
	Kind      InteractionKind
	ActorID   string
	StreamID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RelevantTime prefers the update time over creation, so a revived
// record decays from its latest touch.
func (i Interaction) RelevantTime() time.Time {
	if i.UpdatedAt.After(i.CreatedAt) {
		return i.UpdatedAt
	}
	return i.CreatedAt
}

// FeedSource lists the user population and each user's activity feed.
type FeedSource interface {
	ActiveUserIDs(ctx context.Context) ([]string, error)
	FeedOf(ctx context.Context, userID string, limit int) ([]rank.Activity, error)
}

// HistorySource lists a user's interaction history since a cutoff.
type HistorySource interface {
	InteractionsOf(ctx context.Context, userID string, since time.Time) ([]Interaction, error)
}
