package realtime

// EventType identifies a realtime notification. Event names are shared
// with the browser client.
type EventType string

// Room-scoped events, delivered to every connection joined to the
// family's channel.
const (
	EventMemberJoined     EventType = "family:member-joined"
	EventMemberLeft       EventType = "family:member-left"
	EventMemberUpdated    EventType = "family:member-updated"
	EventDeleted          EventType = "family:deleted"
	EventBudgetCreated    EventType = "family:budget-created"
	EventBudgetUpdated    EventType = "family:budget-updated"
	EventBudgetDeleted    EventType = "family:budget-deleted"
	EventGoalCreated      EventType = "family:goal-created"
	EventGoalUpdated      EventType = "family:goal-updated"
	EventGoalDeleted      EventType = "family:goal-deleted"
	EventGoalContribution EventType = "family:goal-contribution"
)

// Targeted events, delivered to every live connection of one user
// regardless of channel membership.
const (
	EventJoinRequest       EventType = "family:join-request"
	EventRequestAccepted   EventType = "family:request-accepted"
	EventRequestRejected   EventType = "family:request-rejected"
	EventPermissionChanged EventType = "family:permission-changed"
	EventRemoved           EventType = "family:removed"
)

// Channel control events sent by the hub itself.
const (
	EventRoomJoined EventType = "room:joined"
	EventRoomDenied EventType = "room:denied"
)

// Event is a cache-invalidation signal. The payload carries just enough
// identity for the receiver to know what to refetch, never the full new
// state; receivers re-read through the normal read path.
type Event struct {
	Type     EventType      `json:"type"`
	FamilyID string         `json:"family_id,omitempty"`
	Version  uint64         `json:"version,omitempty"`
	Payload  map[string]any `json:"payload,omitempty"`
}

// ClientMessage is a frame sent by a connected client to manage its
// channel subscriptions.
type ClientMessage struct {
	Action   string `json:"action"`
	FamilyID string `json:"family_id"`
}

const (
	actionJoin  = "join"
	actionLeave = "leave"
)
