package kube

import (
	"sync"
	"sync/atomic"
	"time"
)

// failureBackoff is how long a demoted endpoint stays out of election.
const failureBackoff = 30 * time.Second

// EndpointPool elects API server endpoints round-robin, demoting ones that
// failed recently. Promote/demote writes are atomic so many workers can
// share one pool.
type EndpointPool struct {
	size   int
	cursor atomic.Uint64

	mu        sync.RWMutex
	demotedAt []time.Time
}

// NewEndpointPool builds a pool over size ordered endpoints.
func NewEndpointPool(size int) *EndpointPool {
	return &EndpointPool{size: size, demotedAt: make([]time.Time, size)}
}

// Size returns the number of endpoints.
func (p *EndpointPool) Size() int { return p.size }

// Elect returns the next healthy endpoint index. When every endpoint is
// demoted the round-robin pick is returned anyway so callers still probe.
func (p *EndpointPool) Elect() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	now := time.Now()
	start := int(p.cursor.Add(1)) % p.size
	for i := 0; i < p.size; i++ {
		idx := (start + i) % p.size
		if p.demotedAt[idx].IsZero() || now.Sub(p.demotedAt[idx]) > failureBackoff {
			return idx
		}
	}
	return start
}

// Fail demotes an endpoint after a transport error.
func (p *EndpointPool) Fail(idx int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if idx >= 0 && idx < p.size {
		p.demotedAt[idx] = time.Now()
	}
}

// Succeed promotes an endpoint back after a successful request.
func (p *EndpointPool) Succeed(idx int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if idx >= 0 && idx < p.size {
		p.demotedAt[idx] = time.Time{}
	}
}
