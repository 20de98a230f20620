package notify

import (
	"github.com/rs/zerolog"

	"github.com/hotelier/hotelier-server/internal/metrics"
	"github.com/hotelier/hotelier-server/internal/model"
	"github.com/hotelier/hotelier-server/internal/store"
)

// LeaderAnnouncer is the broadcast half of the fan-out.
type LeaderAnnouncer interface {
	AnnounceLeader(city, hotelName string)
}

// Fanout drives the two notification channels: targeted per-subscriber
// delivery of the full ranking, and the best-effort leader broadcast.
type Fanout struct {
	subs      *store.SubscriberStore
	announcer LeaderAnnouncer
	metrics   *metrics.Metrics
	log       *zerolog.Logger
}

// NewFanout wires the fan-out. announcer may be nil when the broadcast
// channel is disabled.
func NewFanout(subs *store.SubscriberStore, announcer LeaderAnnouncer, m *metrics.Metrics, logger *zerolog.Logger) *Fanout {
	return &Fanout{subs: subs, announcer: announcer, metrics: m, log: logger}
}

// DeliverRanking pushes the full ordered list to every subscriber of a city,
// at most once. Handles that fail are collected during the pass and removed
// only after it completes, so the set is never mutated mid-iteration. No
// retries within a cycle.
func (f *Fanout) DeliverRanking(city string, ranking []model.Hotel) {
	subscribers := f.subs.ForCity(city)
	if len(subscribers) == 0 {
		return
	}

	var dead []string
	for _, sub := range subscribers {
		err := sub.Notify(city, ranking)
		f.metrics.ObserveNotification("targeted", err)
		if err != nil {
			f.log.Warn().Err(err).Str("city", city).Str("subscriber", sub.Key()).
				Msg("dropping subscriber after failed delivery")
			dead = append(dead, sub.Key())
		}
	}

	if len(dead) > 0 {
		f.subs.Evict(city, dead)
		if f.metrics != nil {
			f.metrics.SubscribersEvicted.Add(float64(len(dead)))
		}
	}
}

// AnnounceLeader fires the broadcast channel for a leadership change.
func (f *Fanout) AnnounceLeader(city, hotelName string) {
	if f.announcer == nil {
		return
	}
	f.announcer.AnnounceLeader(city, hotelName)
	f.metrics.ObserveNotification("broadcast", nil)
}
