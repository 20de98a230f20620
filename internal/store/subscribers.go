package store

import (
	"sync"

	"github.com/hotelier/hotelier-server/internal/model"
)

// Subscriber is an opaque remote-callback handle registered for a city.
// Implementations live in the notify package; the store only needs identity
// and a way to push a ranking.
type Subscriber interface {
	// Key identifies the handle; duplicate keys per city are rejected.
	Key() string
	// Notify pushes the full ordered ranking. An error marks the handle dead.
	Notify(city string, ranking []model.Hotel) error
}

// SubscriberStore owns the per-city subscriber sets.
type SubscriberStore struct {
	mu     sync.RWMutex
	byCity map[string]map[string]Subscriber
}

// NewSubscriberStore returns an empty subscriber table.
func NewSubscriberStore() *SubscriberStore {
	return &SubscriberStore{byCity: make(map[string]map[string]Subscriber)}
}

// Subscribe registers a handle for a city. ErrAlreadySubscribed on duplicates.
func (s *SubscriberStore) Subscribe(city string, sub Subscriber) error {
	city = NormalizeKey(city)

	s.mu.Lock()
	defer s.mu.Unlock()

	subs, ok := s.byCity[city]
	if !ok {
		subs = make(map[string]Subscriber)
		s.byCity[city] = subs
	}
	if _, dup := subs[sub.Key()]; dup {
		return ErrAlreadySubscribed
	}
	subs[sub.Key()] = sub
	return nil
}

// Unsubscribe removes a handle from a city. ErrNotSubscribed if absent.
func (s *SubscriberStore) Unsubscribe(city, key string) error {
	city = NormalizeKey(city)

	s.mu.Lock()
	defer s.mu.Unlock()

	subs, ok := s.byCity[city]
	if !ok {
		return ErrNotSubscribed
	}
	if _, present := subs[key]; !present {
		return ErrNotSubscribed
	}
	delete(subs, key)
	return nil
}

// ForCity returns the current handles for a city. The slice is a snapshot;
// delivery iterates over it without holding the lock, so the set is never
// mutated while being iterated.
func (s *SubscriberStore) ForCity(city string) []Subscriber {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := s.byCity[NormalizeKey(city)]
	out := make([]Subscriber, 0, len(subs))
	for _, sub := range subs {
		out = append(out, sub)
	}
	return out
}

// Evict drops the given handle keys from a city after a failed delivery pass.
// Missing keys are ignored.
func (s *SubscriberStore) Evict(city string, keys []string) {
	if len(keys) == 0 {
		return
	}
	city = NormalizeKey(city)

	s.mu.Lock()
	defer s.mu.Unlock()

	subs, ok := s.byCity[city]
	if !ok {
		return
	}
	for _, key := range keys {
		delete(subs, key)
	}
}
