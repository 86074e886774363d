package collector

import (
	"math/rand"
	"time"
)

// jittered spreads periodic runs by up to 10% of the interval so
// co-located collectors do not hammer the directory at the same time.
func jittered(interval time.Duration) time.Duration {
	if interval <= 0 {
		return interval
	}
	return interval + time.Duration(rand.Int63n(int64(interval/10)+1))
}
