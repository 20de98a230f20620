package store

import (
	"sort"
	"sync"

	"github.com/hotelier/hotelier-server/internal/model"
)

// ReviewStore owns the append-only review lists, keyed by hotel id.
type ReviewStore struct {
	mu      sync.RWMutex
	byHotel map[int][]model.Review
}

// NewReviewStore returns an empty review store.
func NewReviewStore() *ReviewStore {
	return &ReviewStore{byHotel: make(map[int][]model.Review)}
}

// Append adds a review to its hotel's list under the write lock.
func (s *ReviewStore) Append(r model.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byHotel[r.HotelID] = append(s.byHotel[r.HotelID], r)
}

// ForHotel returns a copy of the hotel's review list.
func (s *ReviewStore) ForHotel(hotelID int) []model.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Review(nil), s.byHotel[hotelID]...)
}

// Count reports how many reviews a hotel has.
func (s *ReviewStore) Count(hotelID int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byHotel[hotelID])
}

// View runs fn with the read lock held, exposing the internal map. The
// ranking cycle uses this to pin the reviews for a whole recomputation pass;
// fn must not retain references past its return.
func (s *ReviewStore) View(fn func(byHotel map[int][]model.Review)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.byHotel)
}

// Snapshot returns all reviews ordered by hotel id, preserving append order
// within a hotel.
func (s *ReviewStore) Snapshot() []model.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0, len(s.byHotel))
	for id := range s.byHotel {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]model.Review, 0)
	for _, id := range ids {
		out = append(out, s.byHotel[id]...)
	}
	return out
}
