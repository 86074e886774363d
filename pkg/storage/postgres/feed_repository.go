package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/socialrank/collector/pkg/collector"
	"github.com/socialrank/collector/pkg/rank"
)

// FeedRepository implements collector.FeedSource and
// collector.HistorySource against the activity tables.
type FeedRepository struct {
	db *DB
}

func NewFeedRepository(db *DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// ActiveUserIDs lists enabled users with at least one login in the last
// 30 days; dormant accounts produce no useful training rows.
func (r *FeedRepository) ActiveUserIDs(ctx context.Context) ([]string, error) {
	const query = `
		SELECT DISTINCT i.id
		FROM identities i
		JOIN login_events le ON le.user_id = i.id
		WHERE i.enabled AND le.logged_in_at >= now() - interval '30 days'
		ORDER BY i.id
	`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active users: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// FeedOf loads the user's feed entries newest first, with each
// activity's signal sets and the viewer's earliest reaction time.
func (r *FeedRepository) FeedOf(ctx context.Context, userID string, limit int) ([]rank.Activity, error) {
	const query = `
		SELECT a.id, a.type, a.stream_id, COALESCE(a.app_stream_id, ''),
		       COALESCE(a.space_id, ''), a.owner_id, a.posted_at,
		       COALESCE(a.updated_at, a.posted_at), a.like_count
		FROM feed_entries fe
		JOIN activities a ON a.id = fe.activity_id
		WHERE fe.user_id = $1
		ORDER BY a.posted_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool().Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query feed: %w", err)
	}
	defer rows.Close()

	var activities []rank.Activity
	for rows.Next() {
		var a rank.Activity
		if err := rows.Scan(
			&a.ID, &a.Type, &a.StreamID, &a.AppStreamID,
			&a.SpaceID, &a.OwnerID, &a.PostedAt,
			&a.UpdatedAt, &a.LikeCount,
		); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range activities {
		if err := r.loadSignals(ctx, userID, &activities[i]); err != nil {
			return nil, fmt.Errorf("load signals for activity %s: %w", activities[i].ID, err)
		}
	}
	return activities, nil
}

// loadSignals fills the activity's commenter/mention/liker id sets and
// the viewer's earliest reaction. Ordering is the natural storage order
// (creation time) so selection stays deterministic across runs.
func (r *FeedRepository) loadSignals(ctx context.Context, viewerID string, a *rank.Activity) error {
	var err error

	a.CommenterIDs, err = r.signalIDs(ctx, `
		SELECT DISTINCT ON (author_id) author_id
		FROM comments
		WHERE activity_id = $1
		ORDER BY author_id, created_at
	`, a.ID)
	if err != nil {
		return fmt.Errorf("commenters: %w", err)
	}

	a.MentionedIDs, err = r.signalIDs(ctx, `
		SELECT DISTINCT ON (mentioned_id) mentioned_id
		FROM mentions
		WHERE activity_id = $1
		ORDER BY mentioned_id, created_at
	`, a.ID)
	if err != nil {
		return fmt.Errorf("mentions: %w", err)
	}

	a.LikerIDs, err = r.signalIDs(ctx, `
		SELECT DISTINCT ON (user_id) user_id
		FROM likes
		WHERE activity_id = $1
		ORDER BY user_id, created_at
	`, a.ID)
	if err != nil {
		return fmt.Errorf("likers: %w", err)
	}

	const reactionQuery = `
		SELECT MIN(reacted_at) FROM (
			SELECT created_at AS reacted_at FROM comments WHERE activity_id = $1 AND author_id = $2
			UNION ALL
			SELECT created_at FROM likes WHERE activity_id = $1 AND user_id = $2
		) reactions
	`
	var reactedAt *time.Time
	if err := r.db.Pool().QueryRow(ctx, reactionQuery, a.ID, viewerID).Scan(&reactedAt); err != nil {
		return fmt.Errorf("viewer reaction: %w", err)
	}
	if reactedAt != nil {
		a.ViewerReactionAt = *reactedAt
	}

	return nil
}

func (r *FeedRepository) signalIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// interactionQuery pairs one SQL statement with the interaction kind
// its rows map to. Participant kinds return the counterpart identity,
// stream kinds the stream id.
type interactionQuery struct {
	kind collector.InteractionKind
	sql  string
}

var interactionQueries = []interactionQuery{
	{collector.KindCommentedOnMine, `
		SELECT c.author_id, '', c.created_at, COALESCE(c.updated_at, c.created_at)
		FROM comments c
		JOIN activities a ON a.id = c.activity_id
		WHERE a.owner_id = $1 AND c.author_id <> $1 AND c.created_at >= $2
	`},
	{collector.KindRepliedToMyComment, `
		SELECT c.author_id, '', c.created_at, COALESCE(c.updated_at, c.created_at)
		FROM comments c
		JOIN comments parent ON parent.id = c.parent_id
		WHERE parent.author_id = $1 AND c.author_id <> $1 AND c.created_at >= $2
	`},
	{collector.KindMentionedMe, `
		SELECT m.author_id, '', m.created_at, m.created_at
		FROM mentions m
		WHERE m.mentioned_id = $1 AND m.created_at >= $2
	`},
	{collector.KindLikedMine, `
		SELECT l.user_id, '', l.created_at, l.created_at
		FROM likes l
		JOIN activities a ON a.id = l.activity_id
		WHERE a.owner_id = $1 AND l.user_id <> $1 AND l.created_at >= $2
	`},
	{collector.KindLikedMyComment, `
		SELECT l.user_id, '', l.created_at, l.created_at
		FROM comment_likes l
		JOIN comments c ON c.id = l.comment_id
		WHERE c.author_id = $1 AND l.user_id <> $1 AND l.created_at >= $2
	`},
	{collector.KindCommentedSameAsMe, `
		SELECT other.author_id, '', other.created_at, COALESCE(other.updated_at, other.created_at)
		FROM comments mine
		JOIN comments other ON other.activity_id = mine.activity_id
		WHERE mine.author_id = $1 AND other.author_id <> $1 AND other.created_at >= $2
	`},
	{collector.KindLikedSameAsMe, `
		SELECT other.user_id, '', other.created_at, other.created_at
		FROM likes mine
		JOIN likes other ON other.activity_id = mine.activity_id
		WHERE mine.user_id = $1 AND other.user_id <> $1 AND other.created_at >= $2
	`},
	{collector.KindMyPost, `
		SELECT '', a.stream_id, a.posted_at, COALESCE(a.updated_at, a.posted_at)
		FROM activities a
		WHERE a.owner_id = $1 AND a.posted_at >= $2
	`},
	{collector.KindMyComment, `
		SELECT '', a.stream_id, c.created_at, COALESCE(c.updated_at, c.created_at)
		FROM comments c
		JOIN activities a ON a.id = c.activity_id
		WHERE c.author_id = $1 AND c.created_at >= $2
	`},
	{collector.KindMyLike, `
		SELECT '', a.stream_id, l.created_at, l.created_at
		FROM likes l
		JOIN activities a ON a.id = l.activity_id
		WHERE l.user_id = $1 AND l.created_at >= $2
	`},
	{collector.KindMyView, `
		SELECT '', v.stream_id, v.viewed_at, v.viewed_at
		FROM stream_views v
		WHERE v.user_id = $1 AND v.viewed_at >= $2
	`},
}

// InteractionsOf loads the user's interaction history since the cutoff,
// one query per interaction category.
func (r *FeedRepository) InteractionsOf(ctx context.Context, userID string, since time.Time) ([]collector.Interaction, error) {
	var out []collector.Interaction

	for _, q := range interactionQueries {
		rows, err := r.db.Pool().Query(ctx, q.sql, userID, since)
		if err != nil {
			return nil, fmt.Errorf("query %s interactions: %w", q.kind, err)
		}

		for rows.Next() {
			record := collector.Interaction{Kind: q.kind}
			if err := rows.Scan(&record.ActorID, &record.StreamID, &record.CreatedAt, &record.UpdatedAt); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan %s interaction: %w", q.kind, err)
			}
			out = append(out, record)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return out, nil
}
