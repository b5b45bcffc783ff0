package helpers

import (
	"time"

	"golang.org/x/time/rate"
)

// NewSampler returns a limiter that runs the first action and then at most one action per interval.
func NewSampler(interval time.Duration) *rate.Sometimes {
	return &rate.Sometimes{
		First:    1,
		Interval: interval,
	}
}
