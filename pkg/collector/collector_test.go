package collector

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/socialrank/collector/pkg/rank"
)

var testNow = time.Now()

type stubDirectory struct {
	identities map[string]*rank.Identity
	loggedIn   map[string]bool
	resolves   int
}

func (d *stubDirectory) ResolveIdentity(_ context.Context, id string) (*rank.Identity, error) {
	d.resolves++
	if identity, ok := d.identities[id]; ok {
		return identity, nil
	}
	return nil, rank.ErrIdentityNotFound
}

func (d *stubDirectory) GroupsOf(context.Context, string) ([]string, error)   { return nil, nil }
func (d *stubDirectory) ManagersOf(context.Context, string) ([]string, error) { return nil, nil }
func (d *stubDirectory) MembersOf(context.Context, string) ([]string, error)  { return nil, nil }

func (d *stubDirectory) HasLoginBetween(_ context.Context, userID string, _, _ time.Time) (bool, error) {
	return d.loggedIn[userID], nil
}

type stubGraph struct {
	connections map[string][]string
	spaces      map[string][]rank.Space
}

func (g *stubGraph) ConnectionsOf(_ context.Context, userID string) ([]string, error) {
	return g.connections[userID], nil
}

func (g *stubGraph) SpacesOf(_ context.Context, userID string) ([]rank.Space, error) {
	return g.spaces[userID], nil
}

func (g *stubGraph) SpaceByID(_ context.Context, id string) (*rank.Space, error) {
	for _, spaces := range g.spaces {
		for _, s := range spaces {
			if s.ID == id {
				return &s, nil
			}
		}
	}
	return nil, errors.New("space not found")
}

type stubFeed struct {
	users   []string
	feeds   map[string][]rank.Activity
	history map[string][]Interaction
	feedErr map[string]error
}

func (f *stubFeed) ActiveUserIDs(context.Context) ([]string, error) {
	return f.users, nil
}

func (f *stubFeed) FeedOf(_ context.Context, userID string, _ int) ([]rank.Activity, error) {
	if err := f.feedErr[userID]; err != nil {
		return nil, err
	}
	return f.feeds[userID], nil
}

func (f *stubFeed) InteractionsOf(_ context.Context, userID string, _ time.Time) ([]Interaction, error) {
	return f.history[userID], nil
}

func testConfig() *Config {
	return &Config{
		MaxUserConcurrency:   2,
		UserTimeout:          time.Minute,
		RunTimeout:           time.Minute,
		FeedLimit:            50,
		HistoryDays:          30,
		TopParticipants:      3,
		FavoriteStreamsTop:   10,
		WidelyLikedThreshold: 10,
		OutputPath:           "features.csv",
	}
}

func testActivity(id string) rank.Activity {
	return rank.Activity{
		ID:           id,
		Type:         "post",
		StreamID:     "stream-1",
		OwnerID:      "owner-1",
		PostedAt:     testNow.Add(-time.Hour),
		CommenterIDs: []string{"alice"},
		LikerIDs:     []string{"bob"},
	}
}

func newTestCollector(d rank.Directory, g rank.SocialGraph, f *stubFeed) *Collector {
	logger := zerolog.Nop()
	platform := &rank.PlatformConfig{SuperUserID: "root", AdminGroupIDs: []string{"admins"}}
	return New(&logger, testConfig(), d, g, f, f, platform)
}

func TestCollectUser_EmitsOneRowPerActivity(t *testing.T) {
	d := &stubDirectory{
		identities: map[string]*rank.Identity{
			"alice": {ID: "alice", Gender: "female", JobFocus: "engineering"},
			"bob":   {ID: "bob"},
		},
	}
	g := &stubGraph{connections: map[string][]string{"me": {"alice"}}}
	f := &stubFeed{
		feeds: map[string][]rank.Activity{
			"me": {testActivity("a1"), testActivity("a2")},
		},
		history: map[string][]Interaction{
			"me": {
				{Kind: KindCommentedOnMine, ActorID: "alice", CreatedAt: testNow.Add(-24 * time.Hour)},
				{Kind: KindMyPost, StreamID: "stream-1", CreatedAt: testNow.Add(-48 * time.Hour)},
			},
		},
	}

	c := newTestCollector(d, g, f)

	var buf bytes.Buffer
	w := NewFeatureWriter(&buf, 3, true)

	stats, err := c.CollectUser(context.Background(), "me", ModeTraining, w)
	if err != nil {
		t.Fatalf("CollectUser error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush error = %v", err)
	}

	if stats.Rows != 2 || stats.Activities != 2 || stats.ActivitiesSkipped != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
}

func TestCollectUser_SentinelFillsShortActivities(t *testing.T) {
	d := &stubDirectory{}
	g := &stubGraph{}
	// Activity with one liker and no fallback candidates beyond the
	// platform super-user: row must still carry 3 participants.
	activity := rank.Activity{
		ID:       "a1",
		Type:     "post",
		StreamID: "stream-1",
		OwnerID:  "owner-1",
		PostedAt: testNow.Add(-time.Hour),
		LikerIDs: []string{"bob"},
	}
	f := &stubFeed{feeds: map[string][]rank.Activity{"me": {activity}}}

	c := newTestCollector(d, g, f)

	var buf bytes.Buffer
	w := NewFeatureWriter(&buf, 3, false)

	if _, err := c.CollectUser(context.Background(), "me", ModeServing, w); err != nil {
		t.Fatalf("CollectUser error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(records))
	}
}

func TestCollectUser_FeedFailureFailsUser(t *testing.T) {
	f := &stubFeed{feedErr: map[string]error{"me": errors.New("storage down")}}
	c := newTestCollector(&stubDirectory{}, &stubGraph{}, f)

	var buf bytes.Buffer
	w := NewFeatureWriter(&buf, 3, true)

	if _, err := c.CollectUser(context.Background(), "me", ModeTraining, w); err == nil {
		t.Error("expected error when the feed cannot be loaded")
	}
}

func TestBatch_RunToIsolatesUserFailures(t *testing.T) {
	d := &stubDirectory{}
	g := &stubGraph{}
	f := &stubFeed{
		users: []string{"ok-user", "bad-user"},
		feeds: map[string][]rank.Activity{
			"ok-user": {testActivity("a1")},
		},
		feedErr: map[string]error{"bad-user": errors.New("storage down")},
	}

	logger := zerolog.Nop()
	c := newTestCollector(d, g, f)
	b := NewBatch(&logger, testConfig(), c, f)

	var buf bytes.Buffer
	w := NewFeatureWriter(&buf, 3, true)

	report, err := b.RunTo(context.Background(), ModeTraining, w)
	if err != nil {
		t.Fatalf("RunTo error = %v", err)
	}

	if report.UsersProcessed() != 1 {
		t.Errorf("expected 1 user processed, got %d", report.UsersProcessed())
	}
	if report.UsersSkipped() != 1 {
		t.Errorf("expected 1 user skipped, got %d", report.UsersSkipped())
	}
	skips := report.Skips()
	if len(skips) != 1 || skips[0].UserID != "bad-user" {
		t.Errorf("unexpected skip records %+v", skips)
	}
	if report.RunID == "" {
		t.Error("expected a run id")
	}
}

func TestCachedDirectory_MemoizesResolves(t *testing.T) {
	d := &stubDirectory{
		identities: map[string]*rank.Identity{"alice": {ID: "alice"}},
	}
	cached := NewCachedDirectory(d, time.Minute)

	for i := 0; i < 3; i++ {
		identity, err := cached.ResolveIdentity(context.Background(), "alice")
		if err != nil {
			t.Fatalf("ResolveIdentity error = %v", err)
		}
		if identity.ID != "alice" {
			t.Fatalf("unexpected identity %+v", identity)
		}
	}

	if d.resolves != 1 {
		t.Errorf("expected 1 backing resolve, got %d", d.resolves)
	}

	// Misses are not cached.
	for i := 0; i < 2; i++ {
		if _, err := cached.ResolveIdentity(context.Background(), "ghost"); !errors.Is(err, rank.ErrIdentityNotFound) {
			t.Fatalf("expected ErrIdentityNotFound, got %v", err)
		}
	}
	if d.resolves != 3 {
		t.Errorf("expected misses to hit the backing directory, got %d resolves", d.resolves)
	}
}

func TestInteraction_RelevantTimePrefersUpdate(t *testing.T) {
	created := testNow.Add(-48 * time.Hour)
	updated := testNow.Add(-time.Hour)

	record := Interaction{CreatedAt: created, UpdatedAt: updated}
	if got := record.RelevantTime(); !got.Equal(updated) {
		t.Errorf("expected updated time, got %v", got)
	}

	record = Interaction{CreatedAt: created}
	if got := record.RelevantTime(); !got.Equal(created) {
		t.Errorf("expected created time, got %v", got)
	}
}
