package core

import (
	"testing"
	"time"
)

func TestJoinAndBroadcastMessage(t *testing.T) {
	hub := newTestHub(t, DefaultDedupTTL, nil)

	alice := NewClient("conn-a")
	bob := NewClient("conn-b")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandJoinChat, Username: "alice"}
	bob.Commands <- &Command{Kind: CommandJoinChat, Username: "bob"}

	alice.Commands <- &Command{
		Kind:      CommandSendMessage,
		Username:  "alice",
		Text:      "hi there",
		Timestamp: "2025-05-01T10:00:00Z",
	}

	ev := mustEvent(t, bob.Events, EventNewMessage)
	msg := ev.Message
	if msg.Text != "hi there" || msg.Username != "alice" || msg.Room != RoomStandard {
		t.Fatalf("unexpected message event: %+v", msg)
	}
	if msg.SenderID != "conn-a" {
		t.Fatalf("sender without wallet should fall back to connection id, got %q", msg.SenderID)
	}
	if msg.Timestamp != "2025-05-01T10:00:00Z" {
		t.Fatalf("client timestamp not preserved: %q", msg.Timestamp)
	}
	if msg.ID == "" {
		t.Fatal("message id must be set")
	}

	// Room broadcast includes the sender.
	own := mustEvent(t, alice.Events, EventNewMessage)
	if own.Message.ID != msg.ID {
		t.Fatalf("sender received a different message: %+v", own.Message)
	}
}

func TestVipSendWithoutBadgeRejected(t *testing.T) {
	hub := newTestHub(t, DefaultDedupTTL, nil)

	alice := NewClient("conn-a")
	bob := NewClient("conn-b")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandJoinChat, Username: "alice", Address: "0xAB"}
	bob.Commands <- &Command{Kind: CommandJoinChat, Username: "bob"}

	alice.Commands <- &Command{
		Kind:     CommandSendMessage,
		Username: "alice",
		Address:  "0xAB",
		ChatType: "vip",
		Text:     "let me in",
	}

	notice := mustEvent(t, alice.Events, EventNewMessage)
	if notice.Message.Username != systemUsername || notice.Message.Text != vipRejectedText {
		t.Fatalf("expected rejection notice, got %+v", notice.Message)
	}
	if notice.Message.Room != RoomStandard {
		t.Fatalf("rejection notice must be tagged standard, got %v", notice.Message.Room)
	}

	mustNoEvent(t, bob.Events, EventNewMessage, 150*time.Millisecond)
}

func TestDuplicateMessageSuppressed(t *testing.T) {
	hub := newTestHub(t, DefaultDedupTTL, nil)

	alice := NewClient("conn-a")
	bob := NewClient("conn-b")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandJoinChat, Username: "alice"}
	bob.Commands <- &Command{Kind: CommandJoinChat, Username: "bob"}

	send := func() {
		alice.Commands <- &Command{
			Kind:      CommandSendMessage,
			Username:  "alice",
			Text:      "hello",
			Timestamp: "2025-05-01T10:00:00Z",
		}
	}

	send()
	mustEvent(t, bob.Events, EventNewMessage)

	// Simulated client retry with the identical payload.
	send()
	mustNoEvent(t, bob.Events, EventNewMessage, 150*time.Millisecond)
}

func TestExpiredFingerprintAdmitsResend(t *testing.T) {
	hub := newTestHub(t, 100*time.Millisecond, nil)

	alice := NewClient("conn-a")
	bob := NewClient("conn-b")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandJoinChat, Username: "alice"}
	bob.Commands <- &Command{Kind: CommandJoinChat, Username: "bob"}

	send := func() {
		alice.Commands <- &Command{
			Kind:      CommandSendMessage,
			Username:  "alice",
			Text:      "hello again",
			Timestamp: "2025-05-01T10:00:00Z",
		}
	}

	send()
	mustEvent(t, bob.Events, EventNewMessage)

	time.Sleep(250 * time.Millisecond)

	send()
	mustEvent(t, bob.Events, EventNewMessage)
}

func TestBadgeUpdatePropagatesToAllConnections(t *testing.T) {
	hub := newTestHub(t, DefaultDedupTTL, nil)

	alice := NewClient("conn-a")
	bob := NewClient("conn-b")
	carol := NewClient("conn-c")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)
	hub.RegisterClient(carol)

	// Two tabs claiming the same wallet, different case.
	alice.Commands <- &Command{Kind: CommandJoinChat, Username: "alice", Address: "0xAB"}
	bob.Commands <- &Command{Kind: CommandJoinChat, Username: "alice", Address: "0xab"}
	carol.Commands <- &Command{Kind: CommandJoinChat, Username: "carol"}

	carol.Commands <- &Command{Kind: CommandBadgeUpdate, Address: "0xAB", HasBadge: true}

	for _, c := range []*Client{alice, bob, carol} {
		ev := mustEvent(t, c.Events, EventBadgeUpdate)
		if ev.Address != "0xab" || !ev.HasBadge {
			t.Fatalf("unexpected badge event: %+v", ev)
		}
	}

	// Both wallet sessions get the vip welcome; carol gets nothing.
	for _, c := range []*Client{alice, bob} {
		welcome := mustEvent(t, c.Events, EventNewMessage)
		if welcome.Message.Text != vipWelcomeText || welcome.Message.Room != RoomPrivileged {
			t.Fatalf("unexpected welcome: %+v", welcome.Message)
		}
	}
	mustNoEvent(t, carol.Events, EventNewMessage, 150*time.Millisecond)

	// The badge now gates vip sends open for both tabs.
	alice.Commands <- &Command{
		Kind:      CommandSendMessage,
		Username:  "alice",
		Address:   "0xAB",
		ChatType:  "VIP",
		Text:      "made it",
		Timestamp: "2025-05-01T10:00:00Z",
	}
	ev := mustEvent(t, bob.Events, EventNewMessage)
	if ev.Message.Room != RoomPrivileged || ev.Message.SenderID != "0xab" {
		t.Fatalf("unexpected vip message: %+v", ev.Message)
	}
	mustNoEvent(t, carol.Events, EventNewMessage, 150*time.Millisecond)
}

func TestBadgeUpdateIdempotentWithinInstant(t *testing.T) {
	frozen := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	hub := newTestHub(t, DefaultDedupTTL, func(h *Hub) {
		h.now = func() time.Time { return frozen }
	})

	alice := NewClient("conn-a")
	bob := NewClient("conn-b")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandJoinChat, Username: "alice", Address: "0xAB"}
	bob.Commands <- &Command{Kind: CommandJoinChat, Username: "bob"}

	// A retransmitted toggle lands on the same fingerprint instant.
	alice.Commands <- &Command{Kind: CommandBadgeUpdate, Address: "0xAB", HasBadge: true}
	alice.Commands <- &Command{Kind: CommandBadgeUpdate, Address: "0xAB", HasBadge: true}

	mustEvent(t, bob.Events, EventBadgeUpdate)
	mustNoEvent(t, bob.Events, EventBadgeUpdate, 150*time.Millisecond)

	mustEvent(t, alice.Events, EventNewMessage) // single welcome
	mustNoEvent(t, alice.Events, EventNewMessage, 150*time.Millisecond)
}

func TestBadgeSurvivesDisconnect(t *testing.T) {
	hub := newTestHub(t, DefaultDedupTTL, nil)

	alice := NewClient("conn-a")
	hub.RegisterClient(alice)
	alice.Commands <- &Command{Kind: CommandJoinChat, Username: "alice", Address: "0xAB"}
	alice.Commands <- &Command{Kind: CommandBadgeUpdate, Address: "0xAB", HasBadge: true}
	mustEvent(t, alice.Events, EventBadgeUpdate)

	hub.UnregisterClient(alice)
	// Drain until the hub closes the channel.
	for range alice.Events {
	}

	if _, ok := hub.identity.AddressOf("conn-a"); ok {
		t.Fatal("identity record must be reclaimed on disconnect")
	}
	if !hub.badges.HasBadge("0xab") {
		t.Fatal("badge must outlive the connection")
	}

	// A fresh session claiming the address is caught up and re-granted.
	dave := NewClient("conn-d")
	hub.RegisterClient(dave)
	dave.Commands <- &Command{Kind: CommandJoinChat, Username: "dave", Address: "0xAb"}

	ev := mustEvent(t, dave.Events, EventBadgeUpdate)
	if ev.Address != "0xab" || !ev.HasBadge {
		t.Fatalf("unexpected badge sync: %+v", ev)
	}
	welcome := mustEvent(t, dave.Events, EventNewMessage)
	if welcome.Message.Text != vipWelcomeText {
		t.Fatalf("expected vip welcome after rejoin, got %+v", welcome.Message)
	}
}

func TestSameInstantJoinsBothGetBadgeSync(t *testing.T) {
	frozen := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	hub := newTestHub(t, DefaultDedupTTL, func(h *Hub) {
		h.now = func() time.Time { return frozen }
		// The address earned its badge in an earlier session.
		h.badges.SetBadge("0xab", true)
	})

	alice := NewClient("conn-a")
	bob := NewClient("conn-b")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	// Two tabs of the same wallet joining in the same instant.
	alice.Commands <- &Command{Kind: CommandJoinChat, Username: "alice", Address: "0xAB"}
	bob.Commands <- &Command{Kind: CommandJoinChat, Username: "alice", Address: "0xAB"}

	for _, c := range []*Client{alice, bob} {
		ev := mustEvent(t, c.Events, EventBadgeUpdate)
		if ev.Address != "0xab" || !ev.HasBadge {
			t.Fatalf("unexpected badge sync: %+v", ev)
		}
		welcome := mustEvent(t, c.Events, EventNewMessage)
		if welcome.Message.Text != vipWelcomeText || welcome.Message.Room != RoomPrivileged {
			t.Fatalf("unexpected welcome: %+v", welcome.Message)
		}
	}

	// The second tab is really bound to the vip room: traffic reaches it.
	alice.Commands <- &Command{
		Kind:      CommandSendMessage,
		Username:  "alice",
		Address:   "0xAB",
		ChatType:  "vip",
		Text:      "both tabs in",
		Timestamp: "2025-05-01T10:00:00Z",
	}
	ev := mustEvent(t, bob.Events, EventNewMessage)
	if ev.Message.Room != RoomPrivileged || ev.Message.Text != "both tabs in" {
		t.Fatalf("vip message did not reach the second tab: %+v", ev.Message)
	}
}

func TestBadgeUpdateWithoutAddressIgnored(t *testing.T) {
	hub := newTestHub(t, DefaultDedupTTL, nil)

	alice := NewClient("conn-a")
	hub.RegisterClient(alice)
	alice.Commands <- &Command{Kind: CommandJoinChat, Username: "alice"}

	alice.Commands <- &Command{Kind: CommandBadgeUpdate, Address: "", HasBadge: true}

	mustNoEvent(t, alice.Events, EventBadgeUpdate, 150*time.Millisecond)
	if hub.badges.HasBadge("") {
		t.Fatal("empty address must never hold a badge")
	}
}

func TestVipJoinRequestOnlyBindsStandard(t *testing.T) {
	hub := newTestHub(t, DefaultDedupTTL, nil)

	alice := NewClient("conn-a")
	bob := NewClient("conn-b")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	// Asking for vip at join time grants nothing.
	alice.Commands <- &Command{Kind: CommandJoinChat, Username: "alice", ChatType: "vip"}

	bob.Commands <- &Command{Kind: CommandJoinChat, Username: "bob", Address: "0xCD"}
	bob.Commands <- &Command{Kind: CommandBadgeUpdate, Address: "0xCD", HasBadge: true}
	mustEvent(t, bob.Events, EventNewMessage) // welcome

	bob.Commands <- &Command{
		Kind:      CommandSendMessage,
		Username:  "bob",
		Address:   "0xCD",
		ChatType:  "vip",
		Text:      "vip only",
		Timestamp: "2025-05-01T10:00:00Z",
	}

	// Alice never reached the vip room; only standard traffic is visible.
	mustNoEvent(t, alice.Events, EventNewMessage, 150*time.Millisecond)
}
