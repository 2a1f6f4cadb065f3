package websocket

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kavach-app/kavach/internal/metrics"
)

// Conn is one live, writable connection registered in a group. Send must be
// safe for concurrent use and must not block indefinitely.
type Conn interface {
	Send(msg *Message) error
}

// group holds one broadcast audience. Members keep registration order so
// broadcasts deliver in the order connections subscribed. The group's own
// mutex isolates membership changes and broadcast snapshots from unrelated
// groups.
type group struct {
	mu      sync.Mutex
	members []Conn
	// removed marks a group that was deleted from the registry after its
	// last member left; a racing Connect must not resurrect it.
	removed bool
}

func (g *group) contains(c Conn) bool {
	for _, m := range g.members {
		if m == c {
			return true
		}
	}
	return false
}

// Registry tracks which connections are subscribed to which broadcast
// groups, and colocates the last-location cache so (re)connecting
// subscribers can be served the most recent samples.
//
// Groups are created lazily on first subscriber and destroyed when the last
// subscriber leaves. A connection present in a group's member set is live:
// cleanup on disconnect is synchronous and unconditional.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]*group

	cache  *LocationCache
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		groups: make(map[string]*group),
		cache:  NewLocationCache(),
		logger: logger.With("component", "registry"),
	}
}

// Connect registers a connection under a group, creating the group on first
// use. Registering the same connection twice is a no-op.
func (r *Registry) Connect(c Conn, key string) {
	for {
		r.mu.Lock()
		g, ok := r.groups[key]
		if !ok {
			g = &group{}
			r.groups[key] = g
		}
		r.mu.Unlock()

		g.mu.Lock()
		if g.removed {
			// Lost the race against a concurrent delete-on-empty; the
			// map entry is gone, so create a fresh group.
			g.mu.Unlock()
			continue
		}
		if !g.contains(c) {
			g.members = append(g.members, c)
			metrics.ConnectionsActive.WithLabelValues(groupKind(key)).Inc()
		}
		g.mu.Unlock()
		return
	}
}

// Disconnect removes a connection from a group. Removing an absent
// connection is a no-op. The group entry is deleted once empty.
func (r *Registry) Disconnect(c Conn, key string) {
	r.mu.RLock()
	g, ok := r.groups[key]
	r.mu.RUnlock()
	if !ok {
		return
	}

	g.mu.Lock()
	found := false
	for i, m := range g.members {
		if m == c {
			g.members = append(g.members[:i], g.members[i+1:]...)
			found = true
			break
		}
	}
	empty := len(g.members) == 0
	if empty {
		g.removed = true
	}
	g.mu.Unlock()

	if found {
		metrics.ConnectionsActive.WithLabelValues(groupKind(key)).Dec()
	}

	if empty {
		r.mu.Lock()
		if r.groups[key] == g {
			delete(r.groups, key)
		}
		r.mu.Unlock()
	}
}

// Broadcast sends a message to every connection currently registered in the
// group, in registration order, and returns how many deliveries succeeded.
// A failed send to one connection never aborts delivery to the others.
// Broadcasting to an absent group delivers nothing.
func (r *Registry) Broadcast(msg *Message, key string) int {
	r.mu.RLock()
	g, ok := r.groups[key]
	r.mu.RUnlock()

	metrics.BroadcastsTotal.WithLabelValues(groupKind(key)).Inc()
	if !ok {
		return 0
	}

	// Snapshot members so slow sends don't hold the group lock.
	g.mu.Lock()
	members := make([]Conn, len(g.members))
	copy(members, g.members)
	g.mu.Unlock()

	delivered := 0
	for _, c := range members {
		if err := c.Send(msg); err != nil {
			metrics.SendFailures.Inc()
			r.logger.Warn("broadcast delivery failed", "group", key, "type", msg.Type, "error", err)
			continue
		}
		delivered++
	}
	metrics.MessagesDelivered.Add(float64(delivered))
	return delivered
}

// Members reports the current membership count of a group.
func (r *Registry) Members(key string) int {
	r.mu.RLock()
	g, ok := r.groups[key]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members)
}

// Groups reports the number of live groups.
func (r *Registry) Groups() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}

// UpdateLastLocation overwrites the cached sample for a user.
func (r *Registry) UpdateLastLocation(userID uuid.UUID, s Sample) {
	r.cache.Set(userID, s)
}

// LastKnownLocation returns the cached sample for one user, if any.
func (r *Registry) LastKnownLocation(userID uuid.UUID) (Sample, bool) {
	return r.cache.Get(userID)
}

// AllKnownLocations returns every cached sample.
func (r *Registry) AllKnownLocations() []Sample {
	return r.cache.All()
}

// groupKind maps a group key to its bounded-cardinality metric label.
func groupKind(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
