package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinChat announces the client's identity and binds it to a room.
	CommandJoinChat CommandKind = iota
	// CommandSendMessage delivers a chat message to room participants.
	CommandSendMessage
	// CommandBadgeUpdate reports a badge status change for a wallet address.
	CommandBadgeUpdate
)

// Command represents an action requested by a client. ChatType carries the
// raw client input; the hub normalizes it to a RoomKind.
type Command struct {
	Kind     CommandKind
	Username string
	Address  string
	ChatType string
	Text     string
	// Timestamp is the client-claimed send instant (RFC 3339). Empty means
	// the hub stamps the message with server time.
	Timestamp string
	HasBadge  bool
}
