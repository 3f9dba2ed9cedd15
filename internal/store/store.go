package store

import "context"

// Store persists badge flags across process restarts. Messages are
// deliberately not persisted; the relay is stateless about them.
type Store interface {
	// UpsertBadge records the flag for a lowercase wallet address,
	// overwriting any previous value.
	UpsertBadge(ctx context.Context, address string, hasBadge bool) error
	// ListBadges returns every stored address with its flag; the directory
	// seeds from it at startup and serves all reads from memory after that.
	ListBadges(ctx context.Context) (map[string]bool, error)
	Close() error
}
