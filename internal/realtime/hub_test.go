package realtime

import (
	"testing"
)

// newTestClient builds a client without a network connection. Hub
// operations only touch the send queue, so no conn is needed.
func newTestClient(hub *Hub, userID string) *Client {
	c := NewClient(hub, nil, userID)
	hub.Register(c)
	return c
}

func allowAll(string, string) bool { return true }

func drain(c *Client) []Event {
	events := make([]Event, 0, len(c.send))
	for {
		select {
		case e := <-c.send:
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestRegistry(t *testing.T) {
	t.Run("multiple_connections_per_user", func(t *testing.T) {
		hub := NewHub(allowAll)
		phone := newTestClient(hub, "u1")
		laptop := newTestClient(hub, "u1")

		if hub.ConnectionCount("u1") != 2 {
			t.Fatalf("expected 2 connections, got %d", hub.ConnectionCount("u1"))
		}

		hub.NotifyUser("u1", Event{Type: EventRequestAccepted})
		if len(drain(phone)) != 1 || len(drain(laptop)) != 1 {
			t.Error("expected both devices to receive the targeted event")
		}

		hub.Unregister(phone)
		if hub.ConnectionCount("u1") != 1 {
			t.Errorf("expected 1 connection after unregister, got %d", hub.ConnectionCount("u1"))
		}
	})

	t.Run("unregister_idempotent", func(t *testing.T) {
		hub := NewHub(allowAll)
		c := newTestClient(hub, "u1")

		hub.Unregister(c)
		hub.Unregister(c) // second call must not panic on the closed channel

		if hub.ConnectionCount("u1") != 0 {
			t.Error("expected no connections")
		}
	})
}

func TestJoinFamily(t *testing.T) {
	t.Run("authorized", func(t *testing.T) {
		hub := NewHub(func(userID, familyID string) bool { return userID == "member" })
		member := newTestClient(hub, "member")
		outsider := newTestClient(hub, "outsider")

		if _, ok := hub.JoinFamily(member, "f1"); !ok {
			t.Error("expected member join to succeed")
		}
		if _, ok := hub.JoinFamily(outsider, "f1"); ok {
			t.Error("expected outsider join to be denied")
		}

		hub.BroadcastToFamily("f1", Event{Type: EventGoalCreated})
		if len(drain(member)) != 1 {
			t.Error("expected member to receive the broadcast")
		}
		if len(drain(outsider)) != 0 {
			t.Error("expected outsider to receive nothing")
		}
	})

	t.Run("leave_stops_delivery", func(t *testing.T) {
		hub := NewHub(allowAll)
		c := newTestClient(hub, "u1")
		hub.JoinFamily(c, "f1")
		hub.LeaveFamily(c, "f1")

		hub.BroadcastToFamily("f1", Event{Type: EventBudgetCreated})
		if len(drain(c)) != 0 {
			t.Error("expected no events after leaving the channel")
		}
	})
}

func TestBroadcastVersioning(t *testing.T) {
	t.Run("monotonic_per_family", func(t *testing.T) {
		hub := NewHub(allowAll)
		c := newTestClient(hub, "u1")
		hub.JoinFamily(c, "f1")
		hub.JoinFamily(c, "f2")

		hub.BroadcastToFamily("f1", Event{Type: EventGoalCreated})
		hub.BroadcastToFamily("f1", Event{Type: EventGoalUpdated})
		hub.BroadcastToFamily("f2", Event{Type: EventBudgetCreated})

		events := drain(c)
		if len(events) != 3 {
			t.Fatalf("expected 3 events, got %d", len(events))
		}

		// Versions count per family channel, not globally.
		versions := map[string][]uint64{}
		for _, e := range events {
			versions[e.FamilyID] = append(versions[e.FamilyID], e.Version)
		}
		if got := versions["f1"]; len(got) != 2 || got[0] != 1 || got[1] != 2 {
			t.Errorf("expected f1 versions [1 2], got %v", got)
		}
		if got := versions["f2"]; len(got) != 1 || got[0] != 1 {
			t.Errorf("expected f2 versions [1], got %v", got)
		}

		if hub.FamilyVersion("f1") != 2 {
			t.Errorf("expected f1 at version 2, got %d", hub.FamilyVersion("f1"))
		}
	})

	t.Run("join_reports_current_version", func(t *testing.T) {
		hub := NewHub(allowAll)
		early := newTestClient(hub, "u1")
		hub.JoinFamily(early, "f1")
		hub.BroadcastToFamily("f1", Event{Type: EventGoalCreated})
		hub.BroadcastToFamily("f1", Event{Type: EventGoalUpdated})

		late := newTestClient(hub, "u2")
		version, ok := hub.JoinFamily(late, "f1")
		if !ok {
			t.Fatal("expected join to succeed")
		}
		// A reconnecting client compares this with its last seen version
		// to detect missed events.
		if version != 2 {
			t.Errorf("expected version 2 on join, got %d", version)
		}
	})
}

func TestEvictUserFromFamily(t *testing.T) {
	hub := NewHub(allowAll)
	phone := newTestClient(hub, "u1")
	laptop := newTestClient(hub, "u1")
	other := newTestClient(hub, "u2")
	hub.JoinFamily(phone, "f1")
	hub.JoinFamily(laptop, "f1")
	hub.JoinFamily(other, "f1")

	hub.EvictUserFromFamily("u1", "f1")

	hub.BroadcastToFamily("f1", Event{Type: EventMemberLeft})
	if len(drain(phone)) != 0 || len(drain(laptop)) != 0 {
		t.Error("expected evicted user's connections to stop receiving room events")
	}
	if len(drain(other)) != 1 {
		t.Error("expected remaining member to still receive room events")
	}

	// Connections survive eviction for targeted notifications.
	hub.NotifyUser("u1", Event{Type: EventRemoved})
	if len(drain(phone)) != 1 || len(drain(laptop)) != 1 {
		t.Error("expected evicted user to still receive targeted events")
	}
}

func TestCloseFamily(t *testing.T) {
	hub := NewHub(allowAll)
	c := newTestClient(hub, "u1")
	hub.JoinFamily(c, "f1")
	hub.BroadcastToFamily("f1", Event{Type: EventDeleted})
	drain(c)

	hub.CloseFamily("f1")

	hub.BroadcastToFamily("f1", Event{Type: EventGoalCreated})
	if len(drain(c)) != 0 {
		t.Error("expected no delivery after the channel was closed")
	}
	// The version counter restarts with the (hypothetical) next channel.
	if hub.FamilyVersion("f1") != 1 {
		t.Errorf("expected version reset, got %d", hub.FamilyVersion("f1"))
	}
}

func TestSlowClientDropped(t *testing.T) {
	hub := NewHub(allowAll)
	c := newTestClient(hub, "u1")
	hub.JoinFamily(c, "f1")

	// Fill the buffer past capacity without a reader.
	for i := 0; i < sendBufferSize+1; i++ {
		hub.BroadcastToFamily("f1", Event{Type: EventGoalContribution})
	}

	if hub.ConnectionCount("u1") != 0 {
		t.Error("expected the slow client to be dropped from the registry")
	}
}
