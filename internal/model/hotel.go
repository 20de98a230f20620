package model

// CategoryScores groups the four per-category ratings a review or hotel carries.
type CategoryScores struct {
	Cleaning float64 `json:"cleaning"`
	Position float64 `json:"position"`
	Services float64 `json:"services"`
	Quality  float64 `json:"quality"`
}

// Hotel is one catalog entry. City and Name are stored lower-cased; the pair
// is the canonical key. Rate and Ratings are recomputed by the ranking engine
// and must not be mutated elsewhere.
type Hotel struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	City        string         `json:"city"`
	Phone       string         `json:"phone"`
	Services    []string       `json:"services"`
	Rate        float64        `json:"rate"`
	Ratings     CategoryScores `json:"ratings"`
}

// Clone returns a deep copy, so catalog internals never escape a lock.
func (h Hotel) Clone() Hotel {
	out := h
	if h.Services != nil {
		out.Services = append([]string(nil), h.Services...)
	}
	return out
}
