package collector

import "time"

type Config struct {
	// MaxUserConcurrency bounds how many user passes run in parallel.
	// Each pass issues directory/graph lookups, so this also caps the
	// pressure on those backends.
	MaxUserConcurrency int `env:"COLLECTOR_MAX_USER_CONCURRENCY,default=8" validate:"gte=1"`

	// UserTimeout aborts a single user's pass; directory lookups can
	// stall indefinitely without it.
	UserTimeout time.Duration `env:"COLLECTOR_USER_TIMEOUT,default=2m" validate:"required"`

	// RunTimeout bounds the whole batch run.
	RunTimeout time.Duration `env:"COLLECTOR_RUN_TIMEOUT,default=2h" validate:"required"`

	FeedLimit   int `env:"COLLECTOR_FEED_LIMIT,default=100" validate:"gte=1"`
	HistoryDays int `env:"COLLECTOR_HISTORY_DAYS,default=30" validate:"gte=1"`

	// TopParticipants is the fixed participant cardinality per row.
	TopParticipants int `env:"COLLECTOR_TOP_PARTICIPANTS,default=5" validate:"gte=1"`

	// FavoriteStreamsTop is how many favorite streams count as
	// "favorite" for the stream-favorite feature and rank bonus.
	FavoriteStreamsTop int `env:"COLLECTOR_FAVORITE_STREAMS_TOP,default=10" validate:"gte=1"`

	// WidelyLikedThreshold is the like count past which an activity
	// counts as widely liked.
	WidelyLikedThreshold int `env:"COLLECTOR_WIDELY_LIKED_THRESHOLD,default=10" validate:"gte=1"`

	OutputPath string `env:"COLLECTOR_OUTPUT_PATH,default=features.csv" validate:"required"`

	// Interval between periodic runs; zero disables the periodic runner.
	Interval time.Duration `env:"COLLECTOR_INTERVAL,default=24h"`

	DirectoryCacheTTL time.Duration `env:"COLLECTOR_DIRECTORY_CACHE_TTL,default=10m"`
}
