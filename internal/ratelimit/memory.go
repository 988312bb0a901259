package ratelimit

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryStore keeps one token bucket per key in process memory. Idle keys
// are dropped by Sweep, which Start runs periodically.
type MemoryStore struct {
	policy Policy
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor

	stop chan struct{}
	done chan struct{}
}

func NewMemoryStore(policy Policy, ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 3 * time.Minute
	}
	return &MemoryStore{
		policy:   policy,
		ttl:      ttl,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

func (s *MemoryStore) Allow(_ context.Context, key string) (bool, error) {
	now := s.now()

	s.mu.Lock()
	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(s.policy.perSecond()), s.policy.burst())}
		s.visitors[key] = v
	}
	v.lastSeen = now
	s.mu.Unlock()

	return v.limiter.AllowN(now, 1), nil
}

// Sweep removes keys idle for longer than the TTL and returns how many
// were removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.ttl {
			delete(s.visitors, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}

// Start runs Sweep every interval until Stop is called. Calling Start on a
// running store is a no-op.
func (s *MemoryStore) Start(interval time.Duration) {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if n := s.Sweep(s.now()); n > 0 {
					log.Printf("Rate limiter swept %d idle clients", n)
				}
			}
		}
	}()
}

// Stop ends the sweep loop and waits for it to exit.
func (s *MemoryStore) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}
