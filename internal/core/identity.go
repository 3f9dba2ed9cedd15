package core

import (
	"strings"
	"sync"
)

// IdentityRecord holds the last-announced identity for a connection.
type IdentityRecord struct {
	ConnID   string
	Username string
	// Address is the claimed wallet address, lowercase, or "" if the
	// connection never supplied one.
	Address string
}

// IdentityRegistry maps live connections to their announced identity and
// keeps a reverse index from wallet address to the connections claiming it.
// Safe for concurrent use.
type IdentityRegistry struct {
	mu     sync.RWMutex
	byConn map[string]*IdentityRecord
	byAddr map[string]map[string]struct{}
}

// NewIdentityRegistry constructs an empty registry.
func NewIdentityRegistry() *IdentityRegistry {
	return &IdentityRegistry{
		byConn: make(map[string]*IdentityRecord),
		byAddr: make(map[string]map[string]struct{}),
	}
}

// Upsert records the connection's display name and, when address is
// non-empty, its lowercased wallet address. Always succeeds; a later address
// overwrites an earlier one.
func (r *IdentityRegistry) Upsert(connID, username, address string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byConn[connID]
	if !ok {
		rec = &IdentityRecord{ConnID: connID}
		r.byConn[connID] = rec
	}
	rec.Username = username

	addr := strings.ToLower(strings.TrimSpace(address))
	if addr == "" || addr == rec.Address {
		return
	}
	r.unindex(rec)
	rec.Address = addr
	conns, ok := r.byAddr[addr]
	if !ok {
		conns = make(map[string]struct{})
		r.byAddr[addr] = conns
	}
	conns[connID] = struct{}{}
}

// AddressOf returns the connection's stored wallet address, if any.
func (r *IdentityRegistry) AddressOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byConn[connID]
	if !ok || rec.Address == "" {
		return "", false
	}
	return rec.Address, true
}

// ConnectionsFor returns the ids of every live connection claiming the
// address (case-insensitive).
func (r *IdentityRegistry) ConnectionsFor(address string) []string {
	addr := strings.ToLower(strings.TrimSpace(address))

	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.byAddr[addr]
	if len(conns) == 0 {
		return nil
	}
	ids := make([]string, 0, len(conns))
	for id := range conns {
		ids = append(ids, id)
	}
	return ids
}

// Remove deletes the connection's record. Removing an unknown connection is
// a no-op.
func (r *IdentityRegistry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byConn[connID]
	if !ok {
		return
	}
	r.unindex(rec)
	delete(r.byConn, connID)
}

// unindex drops the record from the reverse index. Caller holds the lock.
func (r *IdentityRegistry) unindex(rec *IdentityRecord) {
	if rec.Address == "" {
		return
	}
	conns := r.byAddr[rec.Address]
	delete(conns, rec.ConnID)
	if len(conns) == 0 {
		delete(r.byAddr, rec.Address)
	}
}
