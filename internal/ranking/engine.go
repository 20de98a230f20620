package ranking

import (
	"context"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/hotelier/hotelier-server/internal/metrics"
	"github.com/hotelier/hotelier-server/internal/model"
	"github.com/hotelier/hotelier-server/internal/store"
)

// Notifier receives the outcome of a recomputation cycle.
type Notifier interface {
	DeliverRanking(city string, ranking []model.Hotel)
	AnnounceLeader(city, hotelName string)
}

// Weights are the tunable parameters of the review aggregation.
type Weights struct {
	// RecencyDecayPerYear is subtracted from a review's weight for every
	// full year since it was written. A fresh review weighs 1.0.
	RecencyDecayPerYear float64
	// QuantityBase and QuantityStep form the sparse-data penalty:
	// max(0, base - step*(n-1)) is subtracted from every aggregated score
	// of a hotel with n reviews.
	QuantityBase float64
	QuantityStep float64
}

// Engine recomputes hotel rates and per-city rankings on a fixed interval.
// Each cycle pins the stores in the global lock order, rebuilds every city's
// ordered list, and hands changed cities to the notifier after the locks are
// released.
type Engine struct {
	reviews  *store.ReviewStore
	catalog  *store.CatalogStore
	rankings *store.RankingStore
	notifier Notifier
	clock    clockwork.Clock
	weights  Weights
	interval time.Duration
	metrics  *metrics.Metrics
	log      *zerolog.Logger
}

// New builds a ranking engine over the given stores.
func New(
	reviews *store.ReviewStore,
	catalog *store.CatalogStore,
	rankings *store.RankingStore,
	notifier Notifier,
	clock clockwork.Clock,
	weights Weights,
	interval time.Duration,
	m *metrics.Metrics,
	logger *zerolog.Logger,
) *Engine {
	return &Engine{
		reviews:  reviews,
		catalog:  catalog,
		rankings: rankings,
		notifier: notifier,
		clock:    clock,
		weights:  weights,
		interval: interval,
		metrics:  m,
		log:      logger,
	}
}

// Run executes recomputation cycles until the context is cancelled. There is
// never more than one cycle in flight.
func (e *Engine) Run(ctx context.Context) {
	ticker := e.clock.NewTicker(e.interval)
	defer ticker.Stop()

	e.log.Info().Dur("interval", e.interval).Msg("ranking engine started")
	for {
		select {
		case <-ctx.Done():
			e.log.Info().Msg("ranking engine stopped")
			return
		case <-ticker.Chan():
			e.RunCycle()
		}
	}
}

// cityUpdate is a changed city captured while the stores are still locked.
type cityUpdate struct {
	city      string
	ranking   []model.Hotel
	newLeader string // empty when the leader did not change
}

// RunCycle recomputes every hotel's rate and every city's ranking once.
//
// Lock order: reviews (read) is taken first and held across the catalog and
// ranking writes, so a cycle sees one consistent review set. Notifications go
// out only after all three locks are released; a slow subscriber must not
// stall request handling.
func (e *Engine) RunCycle() {
	now := e.clock.Now()
	var updates []cityUpdate

	e.reviews.View(func(byHotel map[int][]model.Review) {
		e.catalog.Update(func(byCity map[string]map[string]*model.Hotel) {
			e.rankings.Update(func(rankByCity map[string][]model.Hotel) {
				for city, hotels := range byCity {
					for _, h := range hotels {
						revs := byHotel[h.ID]
						if len(revs) == 0 {
							continue // keep the seeded scores
						}
						h.Rate, h.Ratings = e.aggregate(revs, now)
					}

					next := orderCity(hotels)
					prev := rankByCity[city]
					rankByCity[city] = next

					if sameOrder(prev, next) {
						continue
					}
					u := cityUpdate{city: city, ranking: next}
					if len(next) > 0 && len(prev) > 0 && prev[0].ID != next[0].ID {
						u.newLeader = next[0].Name
					}
					updates = append(updates, u)
				}
			})
		})
	})

	for _, u := range updates {
		e.log.Info().Str("city", u.city).Int("hotels", len(u.ranking)).
			Msg("ranking changed")
		if u.newLeader != "" {
			e.notifier.AnnounceLeader(u.city, u.newLeader)
		}
		e.notifier.DeliverRanking(u.city, u.ranking)
	}

	if e.metrics != nil {
		e.metrics.RankingCycles.Inc()
	}
}

// aggregate folds a hotel's reviews into its rate and category scores.
// Each review's scores are scaled by a recency weight that loses
// RecencyDecayPerYear per full year of age, then averaged; the quantity
// penalty is subtracted from every aggregate.
func (e *Engine) aggregate(revs []model.Review, now time.Time) (float64, model.CategoryScores) {
	n := float64(len(revs))
	var rate float64
	var cat model.CategoryScores

	for _, r := range revs {
		days := int(now.Sub(r.CreatedAt).Hours() / 24)
		w := 1 - e.weights.RecencyDecayPerYear*float64(days/365)
		if w < 0 {
			w = 0
		}
		rate += r.GlobalScore * w
		cat.Cleaning += r.Ratings.Cleaning * w
		cat.Position += r.Ratings.Position * w
		cat.Services += r.Ratings.Services * w
		cat.Quality += r.Ratings.Quality * w
	}

	penalty := e.weights.QuantityBase - e.weights.QuantityStep*(n-1)
	if penalty < 0 {
		penalty = 0
	}

	rate = rate/n - penalty
	cat.Cleaning = cat.Cleaning/n - penalty
	cat.Position = cat.Position/n - penalty
	cat.Services = cat.Services/n - penalty
	cat.Quality = cat.Quality/n - penalty
	return rate, cat
}

// orderCity snapshots a city's hotels sorted by rate, best first. Ties break
// by name so the order is stable across cycles regardless of map iteration.
func orderCity(hotels map[string]*model.Hotel) []model.Hotel {
	next := make([]model.Hotel, 0, len(hotels))
	for _, h := range hotels {
		next = append(next, h.Clone())
	}
	sort.Slice(next, func(i, j int) bool {
		if next[i].Rate != next[j].Rate {
			return next[i].Rate > next[j].Rate
		}
		return next[i].Name < next[j].Name
	})
	return next
}

// sameOrder reports whether two rankings list the same hotels in the same
// positions. Rate drift without reordering is not a change worth announcing.
func sameOrder(prev, next []model.Hotel) bool {
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if prev[i].ID != next[i].ID {
			return false
		}
	}
	return true
}
