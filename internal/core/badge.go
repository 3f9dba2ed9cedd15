package core

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// BadgePersister stores badge flags durably so they survive restarts.
// Implementations must tolerate concurrent calls.
type BadgePersister interface {
	UpsertBadge(ctx context.Context, address string, hasBadge bool) error
}

// BadgeDirectory maps a lowercase wallet address to its badge flag. Keyed by
// address, not connection: the flag survives reconnects and is shared across
// every connection claiming the address. Safe for concurrent use.
type BadgeDirectory struct {
	mu      sync.RWMutex
	flags   map[string]bool
	persist BadgePersister // optional
	log     *zerolog.Logger
}

// NewBadgeDirectory constructs a directory. persist may be nil, in which
// case flags live only for the process lifetime.
func NewBadgeDirectory(persist BadgePersister, logger *zerolog.Logger) *BadgeDirectory {
	return &BadgeDirectory{
		flags:   make(map[string]bool),
		persist: persist,
		log:     logger,
	}
}

// Load seeds the directory, typically from the persister at startup. Keys
// are lowercased; existing entries are overwritten.
func (d *BadgeDirectory) Load(flags map[string]bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for addr, has := range flags {
		d.flags[strings.ToLower(addr)] = has
	}
}

// SetBadge stores the flag for the address, last write wins. An empty
// address is silently ignored. Persistence failures are logged and do not
// affect the in-memory flag.
func (d *BadgeDirectory) SetBadge(address string, hasBadge bool) {
	addr := strings.ToLower(strings.TrimSpace(address))
	if addr == "" {
		return
	}

	d.mu.Lock()
	d.flags[addr] = hasBadge
	d.mu.Unlock()

	if d.persist == nil {
		return
	}
	if err := d.persist.UpsertBadge(context.Background(), addr, hasBadge); err != nil {
		d.log.Warn().Err(err).Str("address", addr).Msg("failed to persist badge")
	}
}

// HasBadge returns the stored flag, or false for an unknown address.
func (d *BadgeDirectory) HasBadge(address string) bool {
	addr := strings.ToLower(strings.TrimSpace(address))
	if addr == "" {
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.flags[addr]
}
