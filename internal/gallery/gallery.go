// Package gallery holds the registered identities: one reference
// feature vector per person, keyed by name. The gallery is the only
// owner of identity records; everything else works with copies.
package gallery

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	// ErrInvalidName is returned when an identity name is empty or not usable as a storage key.
	ErrInvalidName = errors.New("identity name is empty or invalid")
	// ErrNotFound is returned when an operation references an unregistered identity.
	ErrNotFound = errors.New("identity not found")
)

// Identity is a registered person. Immutable once created;
// re-registration replaces the record, it never merges.
type Identity struct {
	Name         string
	Vector       []float32
	RegisteredAt time.Time
}

// Gallery is an in-memory identity store with stable registration
// order. All methods are safe for concurrent use.
type Gallery struct {
	mu         sync.RWMutex
	identities map[string]Identity
	order      []string // registration order, used for match tie-breaking
	now        func() time.Time
}

// New creates an empty gallery.
func New() *Gallery {
	return &Gallery{
		identities: make(map[string]Identity),
		now:        time.Now,
	}
}

// validName rejects empty names and names that cannot be used as a
// directory name under the data root.
func validName(name string) bool {
	if name == "" {
		return false
	}
	if strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return false
	}
	return true
}

// Register stores an identity. An existing name is overwritten in
// place, keeping its original registration slot so match tie-breaking
// stays stable.
func (g *Gallery) Register(name string, vector []float32) error {
	name = strings.TrimSpace(name)
	if !validName(name) {
		return ErrInvalidName
	}

	vec := make([]float32, len(vector))
	copy(vec, vector)

	g.mu.Lock()
	defer g.mu.Unlock()

	key := Key(name)
	if _, exists := g.identities[key]; !exists {
		g.order = append(g.order, key)
	}
	g.identities[key] = Identity{
		Name:         name,
		Vector:       vec,
		RegisteredAt: g.now(),
	}
	return nil
}

// Remove deletes an identity by name.
func (g *Gallery) Remove(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := Key(strings.TrimSpace(name))
	if _, ok := g.identities[key]; !ok {
		return ErrNotFound
	}
	delete(g.identities, key)
	for i, k := range g.order {
		if k == key {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a copy of the identity, or false if it is not registered.
func (g *Gallery) Get(name string) (Identity, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	id, ok := g.identities[Key(strings.TrimSpace(name))]
	return id, ok
}

// List returns all identities in registration order.
func (g *Gallery) List() []Identity {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Identity, 0, len(g.order))
	for _, key := range g.order {
		if id, ok := g.identities[key]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Len returns the number of registered identities.
func (g *Gallery) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.identities)
}
