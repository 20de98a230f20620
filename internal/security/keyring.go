package security

import (
	"sync"

	"github.com/google/uuid"
)

// KeyRing maps session identifiers to negotiated symmetric keys. A key is
// valid for the lifetime of the logical client identity, not of any single
// connection: every credential-bearing request names its session id.
type KeyRing struct {
	mu   sync.RWMutex
	keys map[string][]byte
}

// NewKeyRing returns an empty key ring.
func NewKeyRing() *KeyRing {
	return &KeyRing{keys: make(map[string][]byte)}
}

// Add stores the key under a freshly generated session id, retrying until the
// id does not collide.
func (r *KeyRing) Add(key []byte) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		id := uuid.NewString()
		if _, taken := r.keys[id]; taken {
			continue
		}
		r.keys[id] = append([]byte(nil), key...)
		return id
	}
}

// Get returns the key bound to a session id.
func (r *KeyRing) Get(sessionID string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.keys[sessionID]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), key...), true
}

// Len reports how many sessions hold a key.
func (r *KeyRing) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}
