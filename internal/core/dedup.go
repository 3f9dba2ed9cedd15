package core

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// DefaultDedupTTL is how long a processed fingerprint is retained. A
// retransmission arriving after the entry expired is treated as a new event.
const DefaultDedupTTL = 10 * time.Second

// Window is a time-bounded set of recently processed event fingerprints. A
// single shared instance serves both message and badge-broadcast admission.
type Window struct {
	cache *ttlcache.Cache[string, struct{}]
}

// NewWindow constructs a window with the given retention. A non-positive ttl
// falls back to DefaultDedupTTL. The caller must Stop the window to release
// its expiry goroutine.
func NewWindow(ttl time.Duration) *Window {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	cache := ttlcache.New[string, struct{}](
		ttlcache.WithTTL[string, struct{}](ttl),
		// Fixed retention, not sliding: a hit must not extend the entry.
		ttlcache.WithDisableTouchOnHit[string, struct{}](),
	)
	go cache.Start()
	return &Window{cache: cache}
}

// AdmitOnce atomically checks and records the fingerprint. It returns true
// the first time a fingerprint is seen and false for every retransmission
// until the entry expires.
func (w *Window) AdmitOnce(fingerprint string) bool {
	_, present := w.cache.GetOrSet(fingerprint, struct{}{})
	return !present
}

// Len returns the number of live entries.
func (w *Window) Len() int {
	return w.cache.Len()
}

// Stop terminates background expiry.
func (w *Window) Stop() {
	w.cache.Stop()
}
