package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/socialrank/collector/pkg/rank"
)

// GraphRepository implements rank.SocialGraph against the connection
// and space tables.
type GraphRepository struct {
	db *DB
}

func NewGraphRepository(db *DB) *GraphRepository {
	return &GraphRepository{db: db}
}

// ConnectionsOf lists confirmed connections. Connections are stored
// once per pair, so both directions are matched.
func (r *GraphRepository) ConnectionsOf(ctx context.Context, userID string) ([]string, error) {
	const query = `
		SELECT CASE WHEN user_a = $1 THEN user_b ELSE user_a END
		FROM connections
		WHERE (user_a = $1 OR user_b = $1) AND status = 'confirmed'
		ORDER BY 1
	`

	rows, err := r.db.Pool().Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query connections: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *GraphRepository) SpacesOf(ctx context.Context, userID string) ([]rank.Space, error) {
	const query = `
		SELECT s.id
		FROM spaces s
		JOIN space_members sm ON sm.space_id = s.id
		WHERE sm.user_id = $1
		ORDER BY s.id
	`

	rows, err := r.db.Pool().Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query spaces: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan space id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]rank.Space, 0, len(ids))
	for _, id := range ids {
		space, err := r.SpaceByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *space)
	}
	return out, nil
}

func (r *GraphRepository) SpaceByID(ctx context.Context, id string) (*rank.Space, error) {
	const spaceQuery = `
		SELECT id, COALESCE(stream_id, '')
		FROM spaces
		WHERE id = $1
	`

	space := rank.Space{}
	err := r.db.Pool().QueryRow(ctx, spaceQuery, id).Scan(&space.ID, &space.StreamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("space %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query space: %w", err)
	}

	const membersQuery = `
		SELECT user_id, role
		FROM space_members
		WHERE space_id = $1
		ORDER BY user_id
	`

	rows, err := r.db.Pool().Query(ctx, membersQuery, id)
	if err != nil {
		return nil, fmt.Errorf("query space members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, role string
		if err := rows.Scan(&userID, &role); err != nil {
			return nil, fmt.Errorf("scan space member: %w", err)
		}
		if role == "manager" {
			space.ManagerIDs = append(space.ManagerIDs, userID)
		} else {
			space.MemberIDs = append(space.MemberIDs, userID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &space, nil
}
