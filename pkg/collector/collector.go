package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/socialrank/collector/pkg/rank"
)

// Collector runs one user's feature collection pass. The accumulator
// lifecycle is scoped to the pass: state is rebuilt from scratch every
// run and never persisted, so decay is always applied against fresh
// timestamps.
type Collector struct {
	directory rank.Directory
	graph     rank.SocialGraph
	feed      FeedSource
	history   HistorySource
	selector  *rank.Selector
	cfg       *Config
	logger    *zerolog.Logger
}

func New(
	logger *zerolog.Logger,
	cfg *Config,
	directory rank.Directory,
	graph rank.SocialGraph,
	feed FeedSource,
	history HistorySource,
	platform *rank.PlatformConfig,
) *Collector {
	return &Collector{
		directory: directory,
		graph:     graph,
		feed:      feed,
		history:   history,
		selector:  rank.NewSelector(directory, graph, platform, logger),
		cfg:       cfg,
		logger:    logger,
	}
}

// UserStats summarizes one user's pass.
type UserStats struct {
	Activities        int
	ActivitiesSkipped int
	Rows              int
}

// CollectUser runs the full pass for one user and appends its rows to
// w. A feed lookup failure fails the user; other collaborator failures
// degrade to empty inputs. Per-activity failures skip the activity.
func (c *Collector) CollectUser(ctx context.Context, userID string, mode Mode, w *FeatureWriter) (UserStats, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.UserTimeout)
	defer cancel()

	now := time.Now()
	userLogger := c.logger.With().Str("user_id", userID).Logger()

	var (
		connections []string
		spaces      []rank.Space
		history     []Interaction
		feed        []rank.Activity
	)

	// The four input loads are independent reads; fetch them together.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		feed, err = c.feed.FeedOf(gctx, userID, c.cfg.FeedLimit)
		if err != nil {
			return fmt.Errorf("load feed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		connections, err = c.graph.ConnectionsOf(gctx, userID)
		if err != nil {
			userLogger.Warn().Err(err).Msg("Failed to load connections, continuing without")
			connections = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		spaces, err = c.graph.SpacesOf(gctx, userID)
		if err != nil {
			userLogger.Warn().Err(err).Msg("Failed to load spaces, continuing without")
			spaces = nil
		}
		return nil
	})
	g.Go(func() error {
		since := now.AddDate(0, 0, -c.cfg.HistoryDays)
		var err error
		history, err = c.history.InteractionsOf(gctx, userID, since)
		if err != nil {
			userLogger.Warn().Err(err).Msg("Failed to load interaction history, continuing without")
			history = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return UserStats{}, err
	}

	influencers := rank.NewInfluencers(now)
	c.seed(influencers, userID, connections, spaces, history, &userLogger)

	stats := UserStats{}
	connectionSet := make(map[string]struct{}, len(connections))
	for _, id := range connections {
		connectionSet[id] = struct{}{}
	}

	for _, activity := range feed {
		row, err := c.buildRow(ctx, influencers, userID, activity, connectionSet, mode, now)
		if err != nil {
			stats.ActivitiesSkipped++
			userLogger.Warn().Err(err).
				Str("activity_id", activity.ID).
				Msg("Skipping activity")
			continue
		}

		if err := w.Append(row); err != nil {
			return stats, fmt.Errorf("write feature row: %w", err)
		}
		stats.Activities++
		stats.Rows++
	}

	return stats, nil
}

// seed feeds the user's social context into the accumulator. Records
// with broken timestamps are skipped individually.
func (c *Collector) seed(u *rank.Influencers, userID string, connections []string, spaces []rank.Space, history []Interaction, logger *zerolog.Logger) {
	for _, id := range connections {
		if err := u.ConnectedToMe(id); err != nil {
			logger.Warn().Err(err).Str("connection_id", id).Msg("Skipping connection observation")
		}
	}

	for _, space := range spaces {
		if space.StreamID != "" {
			if err := u.MemberOfSpaceStream(space.StreamID); err != nil {
				logger.Warn().Err(err).Str("space_id", space.ID).Msg("Skipping space stream observation")
			}
		}
		for _, memberID := range space.MemberIDs {
			if memberID == userID {
				continue
			}
			if err := u.SharesSpaceWithMe(memberID); err != nil {
				logger.Warn().Err(err).Str("member_id", memberID).Msg("Skipping space member observation")
			}
		}
	}

	for _, record := range history {
		if err := c.seedInteraction(u, record); err != nil {
			logger.Warn().Err(err).
				Str("kind", string(record.Kind)).
				Str("actor_id", record.ActorID).
				Msg("Skipping interaction record")
		}
	}
}

func (c *Collector) seedInteraction(u *rank.Influencers, record Interaction) error {
	at := record.RelevantTime()

	switch record.Kind {
	case KindCommentedOnMine:
		return u.CommentedOnMine(record.ActorID, at)
	case KindRepliedToMyComment:
		return u.RepliedToMyComment(record.ActorID, at)
	case KindMentionedMe:
		return u.MentionedMe(record.ActorID, at)
	case KindLikedMine:
		return u.LikedMine(record.ActorID, at)
	case KindLikedMyComment:
		return u.LikedMyComment(record.ActorID, at)
	case KindCommentedSameAsMe:
		return u.CommentedSameAsMe(record.ActorID, at)
	case KindLikedSameAsMe:
		return u.LikedSameAsMe(record.ActorID, at)
	case KindMyPost:
		return u.PostedInStream(record.StreamID, at)
	case KindMyComment:
		return u.CommentedInStream(record.StreamID, at)
	case KindMyLike:
		return u.LikedInStream(record.StreamID, at)
	case KindMyView:
		return u.ViewedStream(record.StreamID, at)
	default:
		return fmt.Errorf("unknown interaction kind %q", record.Kind)
	}
}

func (c *Collector) buildRow(
	ctx context.Context,
	u *rank.Influencers,
	userID string,
	activity rank.Activity,
	connections map[string]struct{},
	mode Mode,
	now time.Time,
) (*FeatureRow, error) {
	candidates, err := c.selector.SelectTopParticipants(ctx, activity, userID, c.cfg.TopParticipants)
	if err != nil {
		return nil, fmt.Errorf("select participants: %w", err)
	}

	favoriteStream, favoriteApp := false, false
	for _, streamID := range u.TopFavoriteStreams(c.cfg.FavoriteStreamsTop) {
		if streamID == activity.StreamID {
			favoriteStream = true
		}
		if activity.AppStreamID != "" && streamID == activity.AppStreamID {
			favoriteApp = true
		}
	}

	row := &FeatureRow{
		UserID:         userID,
		ActivityID:     activity.ID,
		ActivityType:   activity.Type,
		OwnerType:      c.ownerType(activity, userID, connections),
		StreamWeight:   u.StreamWeight(activity.StreamID),
		StreamFavorite: favoriteStream,
		Participants:   make([]ParticipantFeature, 0, len(candidates)),
	}

	for _, candidate := range candidates {
		row.Participants = append(row.Participants, c.participantFeature(ctx, u, candidate, activity))
	}

	if mode == ModeTraining {
		row.Label = c.trainingLabel(u, userID, activity, connections, favoriteStream, favoriteApp)
		row.HasLabel = true
	}

	return row, nil
}

func (c *Collector) participantFeature(ctx context.Context, u *rank.Influencers, candidate rank.Candidate, activity rank.Activity) ParticipantFeature {
	if candidate.ID == rank.SentinelID {
		// Valid-but-unknown identity: every block stays zeroed.
		return ParticipantFeature{ID: rank.SentinelID}
	}

	feature := ParticipantFeature{
		ID:        candidate.ID,
		Known:     true,
		Weight:    u.ParticipantWeight(candidate.ID, activity.StreamID),
		Conversed: candidate.Conversed,
		Favored:   candidate.Favored,
	}

	identity, err := c.directory.ResolveIdentity(ctx, candidate.ID)
	if err != nil {
		c.logger.Warn().Err(err).
			Str("identity_id", candidate.ID).
			Msg("Failed to resolve participant identity, demographics zeroed")
		return feature
	}
	feature.Gender = identity.Gender
	feature.JobFocus = identity.JobFocus
	return feature
}

// trainingLabel derives the supervised relevance label for one row.
func (c *Collector) trainingLabel(u *rank.Influencers, userID string, activity rank.Activity, connections map[string]struct{}, favoriteStream, favoriteApp bool) float64 {
	target := rank.NewTargetRank().
		PostedInFavoriteStream(favoriteStream).
		PostedInFavoriteApp(favoriteApp).
		WidelyLiked(activity.LikeCount >= c.cfg.WidelyLikedThreshold).
		Reactivity(rank.ReactionPromptness(activity.PostedAt, activity.ViewerReactionAt))

	for _, id := range activity.CommenterIDs {
		if id == userID {
			target.ParticipatedByMe(true)
			continue
		}
		if _, ok := connections[id]; ok {
			target.ParticipatedByConnections(true)
		}
		if weight := u.ParticipantWeight(id, activity.StreamID); weight > rank.DefaultWeight {
			target.ParticipatedByInfluencer(weight)
		}
	}

	for _, id := range activity.LikerIDs {
		if id == userID {
			target.LikedByMe(true)
			continue
		}
		if _, ok := connections[id]; ok {
			target.LikedByConnections(true)
		}
		if weight := u.ParticipantWeight(id, activity.StreamID); weight > rank.DefaultWeight {
			target.LikedByInfluencer(weight)
		}
	}

	return target.Build()
}

func (c *Collector) ownerType(activity rank.Activity, userID string, connections map[string]struct{}) string {
	switch {
	case activity.OwnerID == userID:
		return OwnerSelf
	case activity.InSpace():
		return OwnerSpace
	default:
		if _, ok := connections[activity.OwnerID]; ok {
			return OwnerConnection
		}
		return OwnerOther
	}
}
