package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sample is one cached location observation for a user.
type Sample struct {
	UserID    uuid.UUID
	Latitude  float64
	Longitude float64
	Timestamp time.Time // as reported by the client
	// observedAt is when this process accepted the sample; the motion
	// filter measures elapsed time against it, not the reported timestamp.
	ObservedAt time.Time
}

// LocationCache keeps the most recent accepted sample per user. Entries are
// overwritten on every accepted update and never evicted; a departed user's
// last sample stays until process restart.
type LocationCache struct {
	mu      sync.RWMutex
	samples map[uuid.UUID]Sample
}

func NewLocationCache() *LocationCache {
	return &LocationCache{samples: make(map[uuid.UUID]Sample)}
}

// Set overwrites the cached sample for a user.
func (c *LocationCache) Set(userID uuid.UUID, s Sample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.samples[userID] = s
}

// Get returns the cached sample for a user, if any.
func (c *LocationCache) Get(userID uuid.UUID) (Sample, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.samples[userID]
	return s, ok
}

// All returns a snapshot of every cached sample.
func (c *LocationCache) All() []Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Sample, 0, len(c.samples))
	for _, s := range c.samples {
		out = append(out, s)
	}
	return out
}

// Len reports the number of cached users.
func (c *LocationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.samples)
}
