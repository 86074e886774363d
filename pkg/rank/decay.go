package rank

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// maxDaysRange is the number of distinct per-day weights tracked;
	// older events clamp to the last entry instead of dropping to zero.
	maxDaysRange = 30

	// grow steers how fast the day weights fall off.
	grow = 0.25

	dayLength = 24 * time.Hour
)

// ErrInvalidEventTime indicates an event timestamp in the future or
// missing entirely; callers must not feed those into the decay curve.
var ErrInvalidEventTime = errors.New("invalid event time")

// dayWeights[d] is the multiplier applied to an observation that is d
// days old. Built once at process start.
//
// The sequence starts at 1.0 and each step subtracts 2^(w*grow)-1, so
// the decrement shrinks together with the weight and the curve flattens
// towards its asymptote instead of following a plain exponential.
// Downstream score thresholds were tuned against this exact sequence;
// do not swap in a closed-form decay.
var dayWeights = buildDayWeights()

func buildDayWeights() [maxDaysRange]float64 {
	var w [maxDaysRange]float64
	w[0] = 1.0
	for i := 1; i < maxDaysRange; i++ {
		prev := w[i-1]
		w[i] = prev - (math.Pow(2, prev*grow) - 1)
	}
	return w
}

// DateWeight returns the decay multiplier for an event ageDays old.
// Ages past the tracked range clamp to the final (minimum) weight.
func DateWeight(ageDays int) (float64, error) {
	if ageDays < 0 {
		return 0, fmt.Errorf("%w: negative age %d days", ErrInvalidEventTime, ageDays)
	}
	if ageDays >= maxDaysRange {
		return dayWeights[maxDaysRange-1], nil
	}
	return dayWeights[ageDays], nil
}

// AdjustWeightByDate scales weight by the age of eventTime relative to
// now. An event from today keeps its full weight.
func AdjustWeightByDate(weight float64, eventTime, now time.Time) (float64, error) {
	if eventTime.IsZero() {
		return 0, fmt.Errorf("%w: zero timestamp", ErrInvalidEventTime)
	}
	if eventTime.After(now) {
		return 0, fmt.Errorf("%w: %s is in the future", ErrInvalidEventTime, eventTime.Format(time.RFC3339))
	}

	ageDays := int(now.Sub(eventTime) / dayLength)
	dw, err := DateWeight(ageDays)
	if err != nil {
		return 0, err
	}
	return weight * dw, nil
}
