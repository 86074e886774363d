package rank

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// SentinelID fills output slots when no identifiable candidate exists.
// Downstream feature encoding treats it as a valid-but-unknown identity.
const SentinelID = "0"

// reactivityDaysRange bounds the login-history window consulted by the
// viewer fallback tiers: a user counts as a plausible viewer when they
// logged in within this many days after the activity was posted.
const reactivityDaysRange = 2

// loginWindowLead starts the window slightly before the posted time so
// users already online when the activity appeared are included.
const loginWindowLead = 15 * time.Minute

// ErrPlatformFallbackUnavailable indicates the selector cannot make
// progress through its terminal fallback tiers because the platform
// super-user / admin group configuration is missing. Fatal for the
// current activity, never for the batch.
var ErrPlatformFallbackUnavailable = errors.New("platform fallback configuration missing")

// Candidate is one selected participant with the flags that determine
// its feature-row action label. Conversed takes priority over Favored.
type Candidate struct {
	ID        string
	Conversed bool
	Favored   bool
}

// Action derives the interaction label encoded into feature rows.
func (c Candidate) Action() string {
	switch {
	case c.Conversed:
		return "commented"
	case c.Favored:
		return "liked"
	default:
		return "viewed"
	}
}

// Selector picks a fixed-size, ordered, deduplicated participant set
// for an activity by cascading through strict priority tiers:
// commenters, mentioned users, likers, then viewer fallbacks (space
// membership, connections, group managers, platform admins) and finally
// sentinel padding. The first tier to claim an id wins; later tiers
// never overwrite. Given identical collaborator snapshots the output is
// byte-identical across runs.
type Selector struct {
	directory Directory
	graph     SocialGraph
	platform  *PlatformConfig
	logger    *zerolog.Logger
}

func NewSelector(directory Directory, graph SocialGraph, platform *PlatformConfig, logger *zerolog.Logger) *Selector {
	return &Selector{
		directory: directory,
		graph:     graph,
		platform:  platform,
		logger:    logger,
	}
}

// SelectTopParticipants returns exactly n candidates for the activity.
// userID is the user whose feed is being collected; their connections
// and groups feed the fallback tiers. Collaborator lookup failures are
// logged and skipped, never propagated.
func (s *Selector) SelectTopParticipants(ctx context.Context, activity Activity, userID string, n int) ([]Candidate, error) {
	picks := newCandidateSet(n)

	// Tier 1: commenters.
	for _, id := range activity.CommenterIDs {
		picks.add(Candidate{ID: id, Conversed: true})
	}

	// Tier 2: mentioned users score as passive commenters.
	for _, id := range activity.MentionedIDs {
		picks.add(Candidate{ID: id, Conversed: true})
	}

	// Tier 3: likers.
	for _, id := range activity.LikerIDs {
		picks.add(Candidate{ID: id, Favored: true})
	}

	if picks.full() {
		return picks.list(), nil
	}

	// Tier 4: inferred viewers.
	s.fillFromSpace(ctx, picks, activity)
	s.fillFromConnections(ctx, picks, activity, userID)
	s.fillFromGroups(ctx, picks, userID)
	if err := s.fillFromPlatform(ctx, picks); err != nil {
		return nil, err
	}

	picks.padWithSentinel()
	return picks.list(), nil
}

// fillFromSpace adds the owning space's managers and members that
// plausibly saw the activity, then managers unconditionally if slots
// remain.
func (s *Selector) fillFromSpace(ctx context.Context, picks *candidateSet, activity Activity) {
	if picks.full() || !activity.InSpace() {
		return
	}

	space, err := s.graph.SpaceByID(ctx, activity.SpaceID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("space_id", activity.SpaceID).
			Msg("Failed to load space, skipping space fallback")
		return
	}

	for _, id := range space.ManagerIDs {
		if picks.full() {
			return
		}
		if s.sawActivity(ctx, id, activity) {
			picks.add(Candidate{ID: id})
		}
	}
	for _, id := range space.MemberIDs {
		if picks.full() {
			return
		}
		if s.sawActivity(ctx, id, activity) {
			picks.add(Candidate{ID: id})
		}
	}

	// Still short: managers are accountable for the space, count them
	// as viewers regardless of login history.
	for _, id := range space.ManagerIDs {
		if picks.full() {
			return
		}
		picks.add(Candidate{ID: id})
	}
}

func (s *Selector) fillFromConnections(ctx context.Context, picks *candidateSet, activity Activity, userID string) {
	if picks.full() {
		return
	}

	connections, err := s.graph.ConnectionsOf(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("user_id", userID).
			Msg("Failed to list connections, skipping connection fallback")
		return
	}

	for _, id := range connections {
		if picks.full() {
			return
		}
		if s.sawActivity(ctx, id, activity) {
			picks.add(Candidate{ID: id})
		}
	}
}

// fillFromGroups adds managers of the user's non-space groups, each
// resolved against the directory; unresolvable ids are skipped.
func (s *Selector) fillFromGroups(ctx context.Context, picks *candidateSet, userID string) {
	if picks.full() {
		return
	}

	groups, err := s.directory.GroupsOf(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("user_id", userID).
			Msg("Failed to list groups, skipping group fallback")
		return
	}

	for _, groupID := range groups {
		if picks.full() {
			return
		}

		managers, err := s.directory.ManagersOf(ctx, groupID)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("group_id", groupID).
				Msg("Failed to list group managers, skipping group")
			continue
		}

		for _, id := range managers {
			if picks.full() {
				return
			}
			identity, err := s.directory.ResolveIdentity(ctx, id)
			if err != nil {
				s.logger.Warn().Err(err).
					Str("identity_id", id).
					Str("group_id", groupID).
					Msg("Failed to resolve group manager, skipping")
				continue
			}
			picks.add(Candidate{ID: identity.ID})
		}
	}
}

// fillFromPlatform adds the super-user and the admin groups' members
// and managers. Missing platform configuration here is a structural
// error: without it the selector has no terminal candidates left.
func (s *Selector) fillFromPlatform(ctx context.Context, picks *candidateSet) error {
	if picks.full() {
		return nil
	}

	if s.platform == nil || s.platform.SuperUserID == "" {
		return ErrPlatformFallbackUnavailable
	}

	picks.add(Candidate{ID: s.platform.SuperUserID})

	for _, groupID := range s.platform.AdminGroupIDs {
		if picks.full() {
			return nil
		}

		members, err := s.directory.MembersOf(ctx, groupID)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("group_id", groupID).
				Msg("Failed to list admin group members")
		}
		for _, id := range members {
			if picks.full() {
				return nil
			}
			picks.add(Candidate{ID: id})
		}

		managers, err := s.directory.ManagersOf(ctx, groupID)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("group_id", groupID).
				Msg("Failed to list admin group managers")
		}
		for _, id := range managers {
			if picks.full() {
				return nil
			}
			picks.add(Candidate{ID: id})
		}
	}
	return nil
}

// sawActivity reports whether the user logged in within the scope
// window around the activity's posted time. Lookup failures count as
// "not seen".
func (s *Selector) sawActivity(ctx context.Context, userID string, activity Activity) bool {
	from := activity.PostedAt.Add(-loginWindowLead)
	to := from.Add(reactivityDaysRange * dayLength)

	seen, err := s.directory.HasLoginBetween(ctx, userID, from, to)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("user_id", userID).
			Str("activity_id", activity.ID).
			Msg("Login history lookup failed, treating as not seen")
		return false
	}
	return seen
}

// candidateSet is an ordered, bounded, first-writer-wins id set.
type candidateSet struct {
	limit int
	order []Candidate
	seen  map[string]struct{}
}

func newCandidateSet(limit int) *candidateSet {
	return &candidateSet{
		limit: limit,
		seen:  make(map[string]struct{}, limit),
	}
}

func (s *candidateSet) add(c Candidate) {
	if s.full() {
		return
	}
	if _, ok := s.seen[c.ID]; ok {
		return
	}
	s.seen[c.ID] = struct{}{}
	s.order = append(s.order, c)
}

// padWithSentinel repeats the sentinel id until the set is full. The
// sentinel bypasses deduplication: every padded slot carries it.
func (s *candidateSet) padWithSentinel() {
	for !s.full() {
		s.order = append(s.order, Candidate{ID: SentinelID})
	}
}

func (s *candidateSet) full() bool { return len(s.order) >= s.limit }

func (s *candidateSet) list() []Candidate { return s.order }
