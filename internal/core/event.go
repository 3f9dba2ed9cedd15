package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventNewMessage carries a chat message or a targeted system notice.
	EventNewMessage EventKind = iota
	// EventBadgeUpdate announces a wallet address badge change to everyone.
	EventBadgeUpdate
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind EventKind

	// Message is set for EventNewMessage.
	Message *Message

	// Address and HasBadge are set for EventBadgeUpdate.
	Address  string
	HasBadge bool
}
