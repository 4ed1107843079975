/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// actionLimiter keeps a token bucket per player for mutating requests.
type actionLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors map[string]*visitor
	now      func() time.Time
}

func newActionLimiter(perSecond float64, burst int) *actionLimiter {
	return &actionLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (l *actionLimiter) allow(uid string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	v, ok := l.visitors[uid]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[uid] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

func (l *actionLimiter) prune(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for uid, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, uid)
			removed++
		}
	}

	return removed
}

func (l *actionLimiter) pruneLoop(ctx context.Context, idle time.Duration) {
	ticker := time.NewTicker(idle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.prune(l.now().Add(-idle))
		}
	}
}
