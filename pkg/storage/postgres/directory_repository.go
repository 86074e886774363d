package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/socialrank/collector/pkg/rank"
)

// DirectoryRepository implements rank.Directory against the identity
// and organization tables.
type DirectoryRepository struct {
	db *DB
}

func NewDirectoryRepository(db *DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) ResolveIdentity(ctx context.Context, id string) (*rank.Identity, error) {
	const query = `
		SELECT id, username, COALESCE(gender, ''), COALESCE(job_focus, ''), enabled
		FROM identities
		WHERE id = $1
	`

	var identity rank.Identity
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&identity.ID,
		&identity.Username,
		&identity.Gender,
		&identity.JobFocus,
		&identity.Enabled,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", rank.ErrIdentityNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query identity: %w", err)
	}
	return &identity, nil
}

// GroupsOf lists the user's non-space group memberships.
func (r *DirectoryRepository) GroupsOf(ctx context.Context, userID string) ([]string, error) {
	const query = `
		SELECT g.id
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = $1 AND g.space_id IS NULL
		ORDER BY g.id
	`

	return r.queryIDs(ctx, query, userID)
}

func (r *DirectoryRepository) ManagersOf(ctx context.Context, groupID string) ([]string, error) {
	const query = `
		SELECT user_id
		FROM group_members
		WHERE group_id = $1 AND role = 'manager'
		ORDER BY user_id
	`

	return r.queryIDs(ctx, query, groupID)
}

func (r *DirectoryRepository) MembersOf(ctx context.Context, groupID string) ([]string, error) {
	const query = `
		SELECT user_id
		FROM group_members
		WHERE group_id = $1 AND role = 'member'
		ORDER BY user_id
	`

	return r.queryIDs(ctx, query, groupID)
}

func (r *DirectoryRepository) HasLoginBetween(ctx context.Context, userID string, from, to time.Time) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1 FROM login_events
			WHERE user_id = $1 AND logged_in_at >= $2 AND logged_in_at < $3
		)
	`

	var exists bool
	err := r.db.Pool().QueryRow(ctx, query, userID, from, to).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query login events: %w", err)
	}
	return exists, nil
}

func (r *DirectoryRepository) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
