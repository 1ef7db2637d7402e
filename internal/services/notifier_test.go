package services

import (
	"sync"

	"kindred/internal/realtime"
)

// recordingNotifier captures events instead of delivering them, so
// tests can assert what was (or was not) broadcast.
type recordingNotifier struct {
	mu           sync.Mutex
	familyEvents map[string][]realtime.Event
	userEvents   map[string][]realtime.Event
	evictions    []string
	closed       []string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		familyEvents: make(map[string][]realtime.Event),
		userEvents:   make(map[string][]realtime.Event),
	}
}

var _ Notifier = (*recordingNotifier)(nil)

func (n *recordingNotifier) BroadcastToFamily(familyID string, event realtime.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	event.FamilyID = familyID
	n.familyEvents[familyID] = append(n.familyEvents[familyID], event)
}

func (n *recordingNotifier) NotifyUser(userID string, event realtime.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.userEvents[userID] = append(n.userEvents[userID], event)
}

func (n *recordingNotifier) EvictUserFromFamily(userID, familyID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.evictions = append(n.evictions, userID+":"+familyID)
}

func (n *recordingNotifier) CloseFamily(familyID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = append(n.closed, familyID)
}

// familyEventTypes returns the event types broadcast to a family, in order.
func (n *recordingNotifier) familyEventTypes(familyID string) []realtime.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	types := make([]realtime.EventType, 0, len(n.familyEvents[familyID]))
	for _, e := range n.familyEvents[familyID] {
		types = append(types, e.Type)
	}
	return types
}

// userEventTypes returns the event types sent to a user, in order.
func (n *recordingNotifier) userEventTypes(userID string) []realtime.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	types := make([]realtime.EventType, 0, len(n.userEvents[userID]))
	for _, e := range n.userEvents[userID] {
		types = append(types, e.Type)
	}
	return types
}

// hasFamilyEvent reports whether the family received an event of the type.
func (n *recordingNotifier) hasFamilyEvent(familyID string, eventType realtime.EventType) bool {
	for _, t := range n.familyEventTypes(familyID) {
		if t == eventType {
			return true
		}
	}
	return false
}

// hasUserEvent reports whether the user received an event of the type.
func (n *recordingNotifier) hasUserEvent(userID string, eventType realtime.EventType) bool {
	for _, t := range n.userEventTypes(userID) {
		if t == eventType {
			return true
		}
	}
	return false
}
