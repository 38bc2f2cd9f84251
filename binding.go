package lazypix

import "sync"

// bindings tracks the current identifier bound to each target. At most one
// identifier is current for a target at any time; a later bind for the same
// target overwrites the earlier one. This record is the sole mechanism for
// stale-result suppression.
type bindings struct {
	mu      sync.Mutex
	current map[Target]string
}

func newBindings() *bindings {
	return &bindings{current: make(map[Target]string)}
}

// bind makes id the current identifier for t.
func (b *bindings) bind(t Target, id string) {
	b.mu.Lock()
	b.current[t] = id
	b.mu.Unlock()
}

// currentFor returns the identifier currently bound to t, or "" if none.
func (b *bindings) currentFor(t Target) string {
	b.mu.Lock()
	id := b.current[t]
	b.mu.Unlock()
	return id
}

// forget drops the binding for t so the registry doesn't grow without bound
// as surfaces are discarded by the embedder.
func (b *bindings) forget(t Target) {
	b.mu.Lock()
	delete(b.current, t)
	b.mu.Unlock()
}
