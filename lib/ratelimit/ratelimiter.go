// Package ratelimit implements the per-identity token buckets which guard
// request handling: one bucket per master node (keyed by legacy pubkey) and
// one per client ip.
package ratelimit

import (
	"sync"
	"time"

	"github.com/MichaleAnderson/beldex-storage-server/core"

	"github.com/andres-erbsen/clock"
)

const (
	// BucketSize is the burst capacity of every bucket.
	BucketSize = 600

	// TokenRate is the sustained request rate, in tokens per second. One
	// token refills every TokenInterval.
	TokenRate = 500

	// TokenInterval is the time to refill a single token.
	TokenInterval = time.Second / TokenRate

	// MaxClients caps the number of tracked client buckets. Full buckets are
	// evicted to make room; if every bucket is mid-refill the overflowing
	// client is rate limited.
	MaxClients = 10000
)

type bucket struct {
	tokens   int
	lastFill time.Time
}

// fill refills whole tokens accrued since the last fill. The fill timestamp
// only advances by whole token intervals so fractional refill time is never
// lost.
func (b *bucket) fill(now time.Time) {
	if b.tokens >= BucketSize {
		b.lastFill = now
		return
	}
	n := int(now.Sub(b.lastFill) / TokenInterval)
	if n <= 0 {
		return
	}
	if b.tokens+n >= BucketSize {
		b.tokens = BucketSize
		b.lastFill = now
		return
	}
	b.tokens += n
	b.lastFill = b.lastFill.Add(time.Duration(n) * TokenInterval)
}

func (b *bucket) take() bool {
	if b.tokens == 0 {
		return false
	}
	b.tokens--
	return true
}

// RateLimiter tracks request budgets per master node and per client ip.
//
// RateLimiter is thread-safe.
type RateLimiter struct {
	clk clock.Clock

	mu      sync.Mutex
	mnodes  map[core.LegacyPubKey]*bucket
	clients map[uint32]*bucket
}

// New creates a new RateLimiter on the given clock.
func New(clk clock.Clock) *RateLimiter {
	return &RateLimiter{
		clk:     clk,
		mnodes:  make(map[core.LegacyPubKey]*bucket),
		clients: make(map[uint32]*bucket),
	}
}

// ShouldRateLimitMNode returns true if a request from the given master node
// should be dropped.
func (r *RateLimiter) ShouldRateLimitMNode(pk core.LegacyPubKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clk.Now()
	b, ok := r.mnodes[pk]
	if !ok {
		b = &bucket{tokens: BucketSize, lastFill: now}
		r.mnodes[pk] = b
	}
	b.fill(now)
	return !b.take()
}

// ShouldRateLimitClient returns true if a request from the given client ip
// (an IPv4 address packed into a uint32) should be dropped.
func (r *RateLimiter) ShouldRateLimitClient(ip uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clk.Now()
	b, ok := r.clients[ip]
	if !ok {
		if len(r.clients) >= MaxClients {
			r.evictFullClients(now)
		}
		if len(r.clients) >= MaxClients {
			return true
		}
		b = &bucket{tokens: BucketSize, lastFill: now}
		r.clients[ip] = b
	}
	b.fill(now)
	return !b.take()
}

// evictFullClients removes client buckets which have refilled to capacity;
// they carry no history worth keeping.
func (r *RateLimiter) evictFullClients(now time.Time) {
	for ip, b := range r.clients {
		b.fill(now)
		if b.tokens >= BucketSize {
			delete(r.clients, ip)
		}
	}
}
