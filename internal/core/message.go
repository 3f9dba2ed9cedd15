package core

// Message is the domain model for a chat message. It is transient: built,
// broadcast, and discarded. Only its ID lives on, inside the dedup window.
type Message struct {
	// SenderID is the sender's wallet address when one is known, otherwise
	// the connection id.
	SenderID  string
	Text      string
	Username  string
	Timestamp string // RFC 3339
	// ID is the message fingerprint; it doubles as the wire message id.
	ID   string
	Room RoomKind
}
