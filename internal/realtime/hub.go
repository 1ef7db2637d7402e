// Package realtime implements the family-room broadcaster and
// connection registry over WebSocket connections.
package realtime

import (
	"sync"

	"kindred/internal/logger"
)

// Authorizer reports whether a user may join a family's channel. The
// hub consults it on every join request, so a removed member cannot
// rejoin the room even with a live connection.
type Authorizer func(userID, familyID string) bool

// Hub is the connection registry: it maps user ids to their live
// connections (a user may hold several, one per device or tab) and
// family ids to the connections currently viewing that family.
//
// Each family channel carries a monotonic version counter, incremented
// on every room broadcast. Clients receive the current version when
// joining a channel, so a reconnecting client can compare versions and
// detect that it missed events while offline.
type Hub struct {
	mu       sync.RWMutex
	byUser   map[string]map[*Client]struct{}
	byFamily map[string]map[*Client]struct{}
	versions map[string]uint64
	canJoin  Authorizer
}

// NewHub creates a hub using canJoin to authorize channel subscriptions.
func NewHub(canJoin Authorizer) *Hub {
	return &Hub{
		byUser:   make(map[string]map[*Client]struct{}),
		byFamily: make(map[string]map[*Client]struct{}),
		versions: make(map[string]uint64),
		canJoin:  canJoin,
	}
}

// Register adds a client to the registry.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.byUser[c.UserID] == nil {
		h.byUser[c.UserID] = make(map[*Client]struct{})
	}
	h.byUser[c.UserID][c] = struct{}{}
}

// Unregister removes a client from the registry and every channel it
// had joined. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	if c.closed {
		return
	}
	c.closed = true

	if conns, ok := h.byUser[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
	for familyID := range c.families {
		if room, ok := h.byFamily[familyID]; ok {
			delete(room, c)
			if len(room) == 0 {
				delete(h.byFamily, familyID)
			}
		}
	}
	close(c.send)
}

// JoinFamily subscribes the client to a family's channel after
// authorization. It returns the channel's current version and whether
// the join was allowed.
func (h *Hub) JoinFamily(c *Client, familyID string) (uint64, bool) {
	if h.canJoin != nil && !h.canJoin(c.UserID, familyID) {
		return 0, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if c.closed {
		return 0, false
	}
	if h.byFamily[familyID] == nil {
		h.byFamily[familyID] = make(map[*Client]struct{})
	}
	h.byFamily[familyID][c] = struct{}{}
	c.families[familyID] = struct{}{}
	return h.versions[familyID], true
}

// LeaveFamily unsubscribes the client from a family's channel.
func (h *Hub) LeaveFamily(c *Client, familyID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(c.families, familyID)
	if room, ok := h.byFamily[familyID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.byFamily, familyID)
		}
	}
}

// BroadcastToFamily delivers an event to every connection currently
// joined to the family's channel, stamping it with the next channel
// version. Fan-out is independent per connection and carries no
// ordering guarantee across recipients.
func (h *Hub) BroadcastToFamily(familyID string, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.versions[familyID]++
	event.FamilyID = familyID
	event.Version = h.versions[familyID]

	for c := range h.byFamily[familyID] {
		h.deliverLocked(c, event)
	}
}

// NotifyUser delivers an event to every live connection of one user,
// regardless of channel membership. Needed for accept/reject/removal,
// where the affected user may not (or may no longer) be in the room.
func (h *Hub) NotifyUser(userID string, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.byUser[userID] {
		h.deliverLocked(c, event)
	}
}

// EvictUserFromFamily revokes a user's channel access after removal
// from the family. Their connections stay open for targeted
// notifications; only the room subscription is torn down.
func (h *Hub) EvictUserFromFamily(userID, familyID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.byFamily[familyID]
	for c := range h.byUser[userID] {
		delete(c.families, familyID)
		if room != nil {
			delete(room, c)
		}
	}
	if room != nil && len(room) == 0 {
		delete(h.byFamily, familyID)
	}
}

// CloseFamily detaches every connection from a deleted family's channel
// and drops its version counter.
func (h *Hub) CloseFamily(familyID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.byFamily[familyID] {
		delete(c.families, familyID)
	}
	delete(h.byFamily, familyID)
	delete(h.versions, familyID)
}

// FamilyVersion returns the channel's current version counter.
func (h *Hub) FamilyVersion(familyID string) uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.versions[familyID]
}

// ConnectionCount returns the number of live connections for a user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}

// deliverLocked enqueues an event without ever blocking the mutation
// path. A client whose send buffer is full is disconnected; it will
// reconnect and refetch.
func (h *Hub) deliverLocked(c *Client, event Event) {
	if c.closed {
		return
	}
	select {
	case c.send <- event:
	default:
		logger.Get().Warnw("dropping slow realtime client",
			"client_id", c.ID,
			"user_id", c.UserID,
		)
		h.removeLocked(c)
	}
}
