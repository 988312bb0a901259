// Package ratelimit throttles the generation endpoints per client.
package ratelimit

import "context"

// Policy is a token bucket: RPM tokens refill per minute up to Burst.
type Policy struct {
	RPM   int
	Burst int
}

// perSecond returns the refill rate, never below one token per minute.
func (p Policy) perSecond() float64 {
	if p.RPM <= 0 {
		return 1.0 / 60.0
	}
	return float64(p.RPM) / 60.0
}

func (p Policy) burst() int {
	if p.Burst <= 0 {
		return 1
	}
	return p.Burst
}

// Store decides whether key may spend one token now.
type Store interface {
	Allow(ctx context.Context, key string) (bool, error)
}
