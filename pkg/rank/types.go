// Package rank implements the social-influence scoring and
// candidate-selection engine: time-decayed influence weights per stream
// and participant, logistic aggregation into bounded scores, a
// training-label builder, and the tiered top-participant selection used
// to build per-activity feature rows.
package rank

import (
	"context"
	"errors"
	"time"
)

// ErrIdentityNotFound indicates a referenced id has no directory record.
var ErrIdentityNotFound = errors.New("identity not found")

// Identity is a platform user as resolved by the directory.
type Identity struct {
	ID       string
	Username string
	// Gender is one of "male", "female" or "" when undisclosed.
	Gender string
	// JobFocus is a coarse role category ("engineering", "sales", ...).
	JobFocus string
	Enabled  bool
}

// Space is a shared collaboration area with its own activity stream.
type Space struct {
	ID         string
	StreamID   string
	ManagerIDs []string
	MemberIDs  []string
}

// Activity is one feed item together with the interaction signal sets
// the scoring engine consumes. Signal id lists preserve the storage
// layer's natural iteration order; the selector depends on that order
// being stable across runs, not on it being sorted.
type Activity struct {
	ID       string
	Type     string
	StreamID string
	// AppStreamID is set when the activity was produced through a
	// platform app; apps publish into streams of their own, so app
	// affinity rides on the same favorite-stream ranking.
	AppStreamID string
	// SpaceID is empty when the activity was not posted in a space.
	SpaceID   string
	OwnerID   string
	PostedAt  time.Time
	UpdatedAt time.Time

	CommenterIDs []string
	MentionedIDs []string
	LikerIDs     []string
	LikeCount    int

	// ViewerReactionAt is the feed owner's earliest reaction (comment
	// or like) to this activity; zero when they never reacted. Feed
	// queries fill it per viewer.
	ViewerReactionAt time.Time
}

// InSpace reports whether the activity belongs to a space.
func (a Activity) InSpace() bool { return a.SpaceID != "" }

// LastActiveAt prefers the update time over the posted time, since a
// revived thread is more relevant than its original date suggests.
func (a Activity) LastActiveAt() time.Time {
	if a.UpdatedAt.After(a.PostedAt) {
		return a.UpdatedAt
	}
	return a.PostedAt
}

// Directory is the identity/organization lookup surface the engine
// consumes. Implementations may block on network or storage I/O; all
// methods honor ctx cancellation.
type Directory interface {
	// ResolveIdentity returns ErrIdentityNotFound (possibly wrapped)
	// when no record exists for the id.
	ResolveIdentity(ctx context.Context, id string) (*Identity, error)
	// GroupsOf lists ids of the non-space groups the user belongs to.
	GroupsOf(ctx context.Context, userID string) ([]string, error)
	ManagersOf(ctx context.Context, groupID string) ([]string, error)
	MembersOf(ctx context.Context, groupID string) ([]string, error)
	// HasLoginBetween reports whether the user has at least one login
	// event within [from, to).
	HasLoginBetween(ctx context.Context, userID string, from, to time.Time) (bool, error)
}

// SocialGraph exposes the connection and space membership lookups the
// selector's fallback tiers consult.
type SocialGraph interface {
	// ConnectionsOf lists confirmed connection ids of the user.
	ConnectionsOf(ctx context.Context, userID string) ([]string, error)
	SpacesOf(ctx context.Context, userID string) ([]Space, error)
	SpaceByID(ctx context.Context, id string) (*Space, error)
}

// PlatformConfig names the well-known platform identities the
// selector's terminal fallback tiers depend on.
type PlatformConfig struct {
	SuperUserID     string   `env:"PLATFORM_SUPER_USER_ID" validate:"required"`
	AdminGroupIDs   []string `env:"PLATFORM_ADMIN_GROUP_IDS" validate:"required,min=1"`
	EmployeeGroupID string   `env:"PLATFORM_EMPLOYEE_GROUP_ID,default="`
}
