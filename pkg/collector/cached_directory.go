package collector

import (
	"context"
	"strconv"
	"time"

	"github.com/socialrank/collector/pkg/lib"
	"github.com/socialrank/collector/pkg/rank"
)

// CachedDirectory memoizes directory lookups for the duration of a run.
// Identity, group and login-window lookups repeat heavily across users
// (shared spaces, shared admin groups), and every lookup result is
// stable within a run's time horizon. Errors are never cached.
type CachedDirectory struct {
	inner rank.Directory
	cache *lib.Cache
}

func NewCachedDirectory(inner rank.Directory, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{
		inner: inner,
		cache: lib.NewCache(ttl),
	}
}

func (d *CachedDirectory) ResolveIdentity(ctx context.Context, id string) (*rank.Identity, error) {
	key := lib.CacheKey("identity", id)
	if v, ok := d.cache.Get(key); ok {
		return v.(*rank.Identity), nil
	}

	identity, err := d.inner.ResolveIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	d.cache.Set(key, identity)
	return identity, nil
}

func (d *CachedDirectory) GroupsOf(ctx context.Context, userID string) ([]string, error) {
	key := lib.CacheKey("groups", userID)
	if v, ok := d.cache.Get(key); ok {
		return v.([]string), nil
	}

	groups, err := d.inner.GroupsOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.cache.Set(key, groups)
	return groups, nil
}

func (d *CachedDirectory) ManagersOf(ctx context.Context, groupID string) ([]string, error) {
	key := lib.CacheKey("managers", groupID)
	if v, ok := d.cache.Get(key); ok {
		return v.([]string), nil
	}

	managers, err := d.inner.ManagersOf(ctx, groupID)
	if err != nil {
		return nil, err
	}
	d.cache.Set(key, managers)
	return managers, nil
}

func (d *CachedDirectory) MembersOf(ctx context.Context, groupID string) ([]string, error) {
	key := lib.CacheKey("members", groupID)
	if v, ok := d.cache.Get(key); ok {
		return v.([]string), nil
	}

	members, err := d.inner.MembersOf(ctx, groupID)
	if err != nil {
		return nil, err
	}
	d.cache.Set(key, members)
	return members, nil
}

func (d *CachedDirectory) HasLoginBetween(ctx context.Context, userID string, from, to time.Time) (bool, error) {
	key := lib.CacheKey("login", userID,
		strconv.FormatInt(from.UnixMilli(), 10),
		strconv.FormatInt(to.UnixMilli(), 10))
	if v, ok := d.cache.Get(key); ok {
		return v.(bool), nil
	}

	seen, err := d.inner.HasLoginBetween(ctx, userID, from, to)
	if err != nil {
		return false, err
	}
	d.cache.Set(key, seen)
	return seen, nil
}
