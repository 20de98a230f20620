package ranking

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/hotelier/hotelier-server/internal/model"
	"github.com/hotelier/hotelier-server/internal/store"
)

type delivery struct {
	city    string
	ranking []model.Hotel
}

// recorder captures notifier calls in order.
type recorder struct {
	deliveries []delivery
	leaders    []string
}

func (r *recorder) DeliverRanking(city string, ranking []model.Hotel) {
	r.deliveries = append(r.deliveries, delivery{city: city, ranking: ranking})
}

func (r *recorder) AnnounceLeader(city, hotelName string) {
	r.leaders = append(r.leaders, city+"/"+hotelName)
}

func defaultWeights() Weights {
	return Weights{RecencyDecayPerYear: 0.05, QuantityBase: 0.3, QuantityStep: 0.02}
}

func newTestEngine(t *testing.T) (*Engine, *store.ReviewStore, *store.CatalogStore, *store.RankingStore, *recorder, *clockwork.FakeClock) {
	t.Helper()
	reviews := store.NewReviewStore()
	catalog := store.NewCatalogStore()
	rankings := store.NewRankingStore()
	rec := &recorder{}
	clock := clockwork.NewFakeClock()
	logger := zerolog.Nop()
	e := New(reviews, catalog, rankings, rec, clock, defaultWeights(), time.Second, nil, &logger)
	return e, reviews, catalog, rankings, rec, clock
}

func review(hotelID int, score float64, at time.Time) model.Review {
	return model.Review{
		Username:    "alice",
		HotelID:     hotelID,
		GlobalScore: score,
		CreatedAt:   at,
		Ratings:     model.CategoryScores{Cleaning: score, Position: score, Services: score, Quality: score},
	}
}

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSingleFreshPerfectReview(t *testing.T) {
	e, reviews, catalog, rankings, _, clock := newTestEngine(t)

	catalog.Put(model.Hotel{ID: 1, Name: "Grand", City: "Turin"})
	reviews.Append(review(1, 5, clock.Now()))

	e.RunCycle()

	ranking, ok := rankings.City("turin")
	if !ok || len(ranking) != 1 {
		t.Fatalf("expected one ranked hotel, got %v", ranking)
	}
	// one fresh all-fives review: mean 5.0 minus the full 0.3 penalty
	if !almost(ranking[0].Rate, 4.7) {
		t.Fatalf("rate = %v, want 4.7", ranking[0].Rate)
	}
	if !almost(ranking[0].Ratings.Cleaning, 4.7) {
		t.Fatalf("cleaning = %v, want 4.7", ranking[0].Ratings.Cleaning)
	}
}

func TestRecencyDecayPerFullYear(t *testing.T) {
	e, reviews, catalog, rankings, _, clock := newTestEngine(t)

	catalog.Put(model.Hotel{ID: 1, Name: "Grand", City: "Turin"})
	twoYearsAgo := clock.Now().Add(-2 * 365 * 24 * time.Hour)
	reviews.Append(review(1, 5, twoYearsAgo))

	e.RunCycle()

	ranking, _ := rankings.City("turin")
	// weight 0.9 after two full years: 5*0.9 - 0.3
	if !almost(ranking[0].Rate, 4.2) {
		t.Fatalf("rate = %v, want 4.2", ranking[0].Rate)
	}
}

func TestQuantityPenaltyShrinksWithVolume(t *testing.T) {
	e, reviews, catalog, rankings, _, clock := newTestEngine(t)

	catalog.Put(model.Hotel{ID: 1, Name: "Grand", City: "Turin"})
	for i := 0; i < 16; i++ {
		reviews.Append(review(1, 4, clock.Now()))
	}

	e.RunCycle()

	ranking, _ := rankings.City("turin")
	// 16 reviews floor the penalty at zero
	if !almost(ranking[0].Rate, 4.0) {
		t.Fatalf("rate = %v, want 4.0", ranking[0].Rate)
	}
}

func TestHotelsWithoutReviewsKeepSeededScores(t *testing.T) {
	e, reviews, catalog, rankings, _, clock := newTestEngine(t)

	catalog.Put(model.Hotel{ID: 1, Name: "Grand", City: "Turin", Rate: 3.5})
	catalog.Put(model.Hotel{ID: 2, Name: "Plaza", City: "Turin"})
	reviews.Append(review(2, 2, clock.Now()))

	e.RunCycle()

	ranking, _ := rankings.City("turin")
	if ranking[0].ID != 1 || !almost(ranking[0].Rate, 3.5) {
		t.Fatalf("seeded hotel should lead unchanged, got %+v", ranking)
	}
}

func TestCycleNotifiesOnlyOnOrderChange(t *testing.T) {
	e, reviews, catalog, _, rec, clock := newTestEngine(t)

	catalog.Put(model.Hotel{ID: 1, Name: "Grand", City: "Turin", Rate: 4.0})
	catalog.Put(model.Hotel{ID: 2, Name: "Plaza", City: "Turin", Rate: 3.0})

	e.RunCycle()
	if len(rec.deliveries) != 1 {
		t.Fatalf("first cycle should deliver the initial ranking, got %d", len(rec.deliveries))
	}
	if len(rec.leaders) != 0 {
		t.Fatalf("initial ranking must not announce a leader, got %v", rec.leaders)
	}

	// no new reviews, order is stable
	e.RunCycle()
	if len(rec.deliveries) != 1 {
		t.Fatalf("unchanged cycle must not notify, got %d deliveries", len(rec.deliveries))
	}

	// a burst of fresh fives flips the order
	for i := 0; i < 16; i++ {
		reviews.Append(review(2, 5, clock.Now()))
	}
	e.RunCycle()

	if len(rec.deliveries) != 2 {
		t.Fatalf("reorder should deliver again, got %d deliveries", len(rec.deliveries))
	}
	got := rec.deliveries[1]
	if got.city != "turin" || got.ranking[0].ID != 2 {
		t.Fatalf("unexpected delivery %+v", got)
	}
	if len(rec.leaders) != 1 || rec.leaders[0] != "turin/plaza" {
		t.Fatalf("expected leader announcement for plaza, got %v", rec.leaders)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	e, _, _, _, _, _ := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop after cancel")
	}
}
