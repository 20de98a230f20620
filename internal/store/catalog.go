package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/hotelier/hotelier-server/internal/model"
)

// CatalogStore owns the hotel catalog, keyed by lower-cased (city, name).
// Rate and category sub-scores inside the catalog are mutated only by the
// ranking engine, through Update.
type CatalogStore struct {
	mu     sync.RWMutex
	byCity map[string]map[string]*model.Hotel
}

// NewCatalogStore returns an empty catalog.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{byCity: make(map[string]map[string]*model.Hotel)}
}

// NormalizeKey lower-cases a city or hotel name into its canonical key form.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Put inserts or replaces a hotel, normalizing its keys.
func (s *CatalogStore) Put(h model.Hotel) {
	city := NormalizeKey(h.City)
	name := NormalizeKey(h.Name)
	h.City = city
	h.Name = name

	s.mu.Lock()
	defer s.mu.Unlock()

	hotels, ok := s.byCity[city]
	if !ok {
		hotels = make(map[string]*model.Hotel)
		s.byCity[city] = hotels
	}
	cp := h.Clone()
	hotels[name] = &cp
}

// Get returns a copy of the hotel under the read lock.
func (s *CatalogStore) Get(city, name string) (model.Hotel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hotels, ok := s.byCity[NormalizeKey(city)]
	if !ok {
		return model.Hotel{}, false
	}
	h, ok := hotels[NormalizeKey(name)]
	if !ok {
		return model.Hotel{}, false
	}
	return h.Clone(), true
}

// CityExists reports whether the city has at least one hotel.
func (s *CatalogStore) CityExists(city string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hotels, ok := s.byCity[NormalizeKey(city)]
	return ok && len(hotels) > 0
}

// Len reports the number of hotels across all cities.
func (s *CatalogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, hotels := range s.byCity {
		n += len(hotels)
	}
	return n
}

// Update runs fn with the write lock held, exposing the internal maps. Only
// the ranking engine and the bootstrap loader use this; fn must not retain
// references past its return.
func (s *CatalogStore) Update(fn func(byCity map[string]map[string]*model.Hotel)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.byCity)
}

// Snapshot returns all hotels, ordered by city then name.
func (s *CatalogStore) Snapshot() []model.Hotel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Hotel, 0)
	for _, hotels := range s.byCity {
		for _, h := range hotels {
			out = append(out, h.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].Name < out[j].Name
	})
	return out
}
