package core

import "strings"

// RoomKind identifies one of the two broadcast rooms.
type RoomKind int

const (
	// RoomStandard is the open room every client may join and use.
	RoomStandard RoomKind = iota
	// RoomPrivileged is the badge-gated room.
	RoomPrivileged
)

// Stable wire identifiers; clients join rooms by these names.
const (
	roomNameStandard   = "normal"
	roomNamePrivileged = "vip"
)

// NormalizeRoomKind maps arbitrary client input onto a room kind. Anything
// that is not "vip" (case-insensitive) is the standard room.
func NormalizeRoomKind(input string) RoomKind {
	if strings.EqualFold(strings.TrimSpace(input), roomNamePrivileged) {
		return RoomPrivileged
	}
	return RoomStandard
}

// Name returns the room's stable external identifier.
func (k RoomKind) Name() string {
	if k == RoomPrivileged {
		return roomNamePrivileged
	}
	return roomNameStandard
}

// Room groups clients subscribed to the same broadcast channel. It is owned
// and mutated only by the hub goroutine.
type Room struct {
	Kind    RoomKind
	clients map[*Client]struct{}
}

// NewRoom constructs a room with no clients.
func NewRoom(kind RoomKind) *Room {
	return &Room{
		Kind:    kind,
		clients: make(map[*Client]struct{}),
	}
}

// AddClient inserts a client into the room. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the room. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// Contains reports whether the client is a member of the room.
func (r *Room) Contains(c *Client) bool {
	_, exists := r.clients[c]
	return exists
}

// Broadcast sends an event to all clients in the room.
func (r *Room) Broadcast(event *Event) {
	for client := range r.clients {
		select {
		case client.Events <- event:
		default:
			// Drop if slow consumer.
		}
	}
}
