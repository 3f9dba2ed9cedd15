package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	systemUsername = "System"

	vipRejectedText = "You need a verified badge to chat in the VIP room."
	vipWelcomeText  = "Welcome to the VIP chat!"
)

// Hub orchestrates the chat relay: it owns the rooms and serializes every
// inbound event against the identity registry, the badge directory and the
// dedup window. All mutations happen on the Run goroutine, so no handler
// ever observes a partially applied effect of another.
type Hub struct {
	identity *IdentityRegistry
	badges   *BadgeDirectory
	dedup    *Window
	log      *zerolog.Logger

	rooms   map[RoomKind]*Room
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand

	now func() time.Time
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

// NewHub constructs a hub around the given stores.
func NewHub(identity *IdentityRegistry, badges *BadgeDirectory, dedup *Window, logger *zerolog.Logger) *Hub {
	return &Hub{
		identity: identity,
		badges:   badges,
		dedup:    dedup,
		log:      logger,
		rooms: map[RoomKind]*Room{
			RoomStandard:   NewRoom(RoomStandard),
			RoomPrivileged: NewRoom(RoomPrivileged),
		},
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand),
		now:        time.Now,
	}
}

// RegisterClient hands a new connection to the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient reports that the connection is gone. Idempotent.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Run processes registrations and commands until the context is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.clients[c.ID] = c
			go h.pump(ctx, c)
		case c := <-h.unregister:
			h.handleDisconnect(c)
		case cc := <-h.commands:
			if _, ok := h.clients[cc.client.ID]; !ok {
				continue // command from a connection that already left
			}
			h.handleCommand(cc.client, cc.cmd)
		case <-ctx.Done():
			return
		}
	}
}

// pump forwards one client's commands into the hub's single command stream.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			select {
			case h.commands <- clientCommand{client: c, cmd: cmd}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandJoinChat:
		h.handleJoin(c, cmd)
	case CommandSendMessage:
		h.handleSend(c, cmd)
	case CommandBadgeUpdate:
		h.handleBadgeUpdate(cmd)
	}
}

// handleJoin announces the client's identity and binds it to the standard
// room. The privileged room is never granted by request; membership there
// comes only through a badge update. If the claimed address already holds a
// badge, the status is rebroadcast so the joining client catches up.
func (h *Hub) handleJoin(c *Client, cmd *Command) {
	kind := NormalizeRoomKind(cmd.ChatType)
	h.identity.Upsert(c.ID, cmd.Username, cmd.Address)
	h.rooms[RoomStandard].AddClient(c)

	h.log.Debug().
		Str("client_id", c.ID).
		Str("username", cmd.Username).
		Str("chat_type", kind.Name()).
		Msg("client joined chat")

	addr, ok := h.identity.AddressOf(c.ID)
	if !ok || !h.badges.HasBadge(addr) {
		return
	}
	// The address earned its badge before this connection existed, e.g. a
	// reconnect. Re-announce it so every client, this one included, is in
	// sync, and restore the privileged membership for the address. Seeding
	// with the connection id keeps same-instant joins from colliding.
	if h.broadcastBadge(addr, true, c.ID) {
		h.grantPrivileged(addr)
	}
}

// handleSend admits a chat message and fans it out to the resolved room.
func (h *Hub) handleSend(c *Client, cmd *Command) {
	kind := NormalizeRoomKind(cmd.ChatType)
	h.identity.Upsert(c.ID, cmd.Username, cmd.Address)

	// The registry reflects the most recent known identity, so it wins over
	// whatever the event itself claims.
	addr, _ := h.identity.AddressOf(c.ID)

	if kind == RoomPrivileged && !h.badges.HasBadge(addr) {
		h.log.Info().
			Str("client_id", c.ID).
			Str("address", addr).
			Msg("vip message rejected, no badge")
		h.deliverNotice(c, vipRejectedText, RoomStandard)
		return
	}

	senderID := addr
	if senderID == "" {
		senderID = c.ID
	}
	timestamp := cmd.Timestamp
	if timestamp == "" {
		timestamp = h.now().UTC().Format(time.RFC3339)
	}

	fingerprint := fmt.Sprintf("%s|%s|%s|%s", senderID, timestamp, cmd.Text, kind.Name())
	if !h.dedup.AdmitOnce(fingerprint) {
		h.log.Debug().
			Str("client_id", c.ID).
			Str("fingerprint", fingerprint).
			Msg("duplicate message dropped")
		return
	}

	h.rooms[kind].Broadcast(&Event{
		Kind: EventNewMessage,
		Message: &Message{
			SenderID:  senderID,
			Text:      cmd.Text,
			Username:  cmd.Username,
			Timestamp: timestamp,
			ID:        fingerprint,
			Room:      kind,
		},
	})
}

// handleBadgeUpdate records the flag and, once per admitted toggle,
// announces it to every connected session. Badge status is global presence
// information, independent of room membership.
func (h *Hub) handleBadgeUpdate(cmd *Command) {
	addr := strings.ToLower(strings.TrimSpace(cmd.Address))
	if addr == "" {
		return
	}
	h.badges.SetBadge(addr, cmd.HasBadge)

	if !h.broadcastBadge(addr, cmd.HasBadge, "") {
		return
	}
	h.log.Info().
		Str("address", addr).
		Bool("has_badge", cmd.HasBadge).
		Msg("badge updated")
	if cmd.HasBadge {
		h.grantPrivileged(addr)
	}
}

// handleDisconnect reclaims the identity record and drops the client from
// every room. Badges are address-scoped and outlive the connection.
func (h *Hub) handleDisconnect(c *Client) {
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	h.identity.Remove(c.ID)
	for _, room := range h.rooms {
		room.RemoveClient(c)
	}
	// The transport has stopped writing by the time it unregisters, so both
	// channels can be closed here; closing Commands releases the pump.
	close(c.Commands)
	close(c.Events)

	h.log.Debug().Str("client_id", c.ID).Msg("client disconnected")
}

// broadcastBadge delivers a badge-update event to every connected session.
// The fingerprint is seeded with the current instant so repeated genuine
// toggles stay distinct; only retransmissions of the same toggle dedup.
// seed scopes admission further: the join path passes the joining
// connection id so two tabs joining in the same instant both get synced.
func (h *Hub) broadcastBadge(address string, hasBadge bool, seed string) bool {
	fingerprint := fmt.Sprintf("badge|%s|%t|%s|%d", address, hasBadge, seed, h.now().UnixMilli())
	if !h.dedup.AdmitOnce(fingerprint) {
		return false
	}
	event := &Event{Kind: EventBadgeUpdate, Address: address, HasBadge: hasBadge}
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
		}
	}
	return true
}

// grantPrivileged binds every live connection claiming the address to the
// privileged room and welcomes each once. A badge can be earned on a
// different connection than the one that should gain access, so membership
// is pushed to all of them.
func (h *Hub) grantPrivileged(address string) {
	for _, connID := range h.identity.ConnectionsFor(address) {
		client, ok := h.clients[connID]
		if !ok {
			continue
		}
		if !h.rooms[RoomPrivileged].AddClient(client) {
			continue // already a member, nothing to heal
		}
		h.log.Info().
			Str("client_id", connID).
			Str("address", address).
			Msg("granted vip access")
		h.deliverNotice(client, vipWelcomeText, RoomPrivileged)
	}
}

// deliverNotice sends a system message to a single connection.
func (h *Hub) deliverNotice(c *Client, text string, kind RoomKind) {
	event := &Event{
		Kind: EventNewMessage,
		Message: &Message{
			SenderID:  "system",
			Text:      text,
			Username:  systemUsername,
			Timestamp: h.now().UTC().Format(time.RFC3339),
			ID:        uuid.NewString(),
			Room:      kind,
		},
	}
	select {
	case c.Events <- event:
	default:
	}
}
