package core

// Client is one live chat session as seen by the core layer. The transport
// owns the websocket; the core only drains the client's commands and pushes
// events into its channel.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 16),
	}
}
