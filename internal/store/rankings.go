package store

import (
	"sync"

	"github.com/hotelier/hotelier-server/internal/model"
)

// RankingStore owns the per-city ordered hotel rankings. A city's list is
// replaced wholesale each recomputation cycle, never mutated in place.
type RankingStore struct {
	mu     sync.RWMutex
	byCity map[string][]model.Hotel
}

// NewRankingStore returns an empty ranking table.
func NewRankingStore() *RankingStore {
	return &RankingStore{byCity: make(map[string][]model.Hotel)}
}

// City returns a copy of the current ordered ranking for a city.
func (s *RankingStore) City(city string) ([]model.Hotel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranking, ok := s.byCity[NormalizeKey(city)]
	if !ok {
		return nil, false
	}
	out := make([]model.Hotel, len(ranking))
	for i, h := range ranking {
		out[i] = h.Clone()
	}
	return out, true
}

// Update runs fn with the write lock held, exposing the internal map. Used by
// the ranking cycle; fn must not retain references past its return.
func (s *RankingStore) Update(fn func(byCity map[string][]model.Hotel)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.byCity)
}
