package proto

import "encoding/json"

// Inbound is the envelope for frames coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin  = "join-chat"
	InboundTypeMsg   = "send-message"
	InboundTypeBadge = "badge-update"

	OutboundTypeMessage = "new-message"
	OutboundTypeBadge   = "badge-update"
	OutboundTypeError   = "error"
)

// JoinData announces the client's identity and desired room.
type JoinData struct {
	Username string `json:"username"`
	Address  string `json:"address,omitempty"`
	ChatType string `json:"chatType,omitempty"`
}

// MsgData is a chat message from the client. Timestamp is the client's send
// instant; retransmissions carry the original value so the server can spot
// them.
type MsgData struct {
	Message   string `json:"message"`
	Username  string `json:"username"`
	Address   string `json:"address,omitempty"`
	ChatType  string `json:"chatType,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// BadgeData reports a badge status change for a wallet address.
type BadgeData struct {
	Address  string `json:"address"`
	HasBadge bool   `json:"hasBadge"`
}

// Outbound is the envelope for frames sent to the client.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
	// ChatType mirrors the payload field on new-message frames; some clients
	// read it from the envelope.
	ChatType string `json:"chatType,omitempty"`
	Error    *Error `json:"error,omitempty"`
}

// EventMessage is the new-message payload.
type EventMessage struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
	MessageID string `json:"messageId"`
	ChatType  string `json:"chatType"`
}

// EventBadge is the badge-update payload, delivered to every connection.
type EventBadge struct {
	Address  string `json:"address"`
	HasBadge bool   `json:"hasBadge"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
