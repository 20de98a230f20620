package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/hotelier/hotelier-server/internal/config"
	"github.com/hotelier/hotelier-server/internal/handler"
	"github.com/hotelier/hotelier-server/internal/metrics"
	"github.com/hotelier/hotelier-server/internal/notify"
	"github.com/hotelier/hotelier-server/internal/persist"
	"github.com/hotelier/hotelier-server/internal/ranking"
	"github.com/hotelier/hotelier-server/internal/security"
	"github.com/hotelier/hotelier-server/internal/store"
	transporthttp "github.com/hotelier/hotelier-server/internal/transport/http"
	transporttcp "github.com/hotelier/hotelier-server/internal/transport/tcp"
)

// App wires stores, the ranking engine, persistence and both transports.
type App struct {
	tcpServer  *transporttcp.Server
	httpServer *stdhttp.Server
	engine     *ranking.Engine
	runners    []*persist.Runner

	db          *persist.DB
	broadcaster *notify.Broadcaster

	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with the provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	db, err := persist.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	users := store.NewUserStore()
	catalog := store.NewCatalogStore()
	reviews := store.NewReviewStore()
	rankings := store.NewRankingStore()
	subscribers := store.NewSubscriberStore()

	if err := loadState(db, cfg.SeedPath, users, catalog, reviews, logger); err != nil {
		db.Close()
		return nil, err
	}

	exchanger, err := security.NewExchanger(cfg.DHPrime, cfg.DHGenerator)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init key exchange: %w", err)
	}
	keys := security.NewKeyRing()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	// a failed multicast socket degrades to targeted delivery only
	var announcer notify.LeaderAnnouncer
	broadcaster, err := notify.NewBroadcaster(cfg.MulticastAddr, logger)
	if err != nil {
		logger.Warn().Err(err).Str("addr", cfg.MulticastAddr).
			Msg("multicast unavailable, leader broadcasts disabled")
	} else {
		announcer = broadcaster
	}

	fanout := notify.NewFanout(subscribers, announcer, m, logger)
	clock := clockwork.NewRealClock()
	engine := ranking.New(reviews, catalog, rankings, fanout, clock,
		ranking.Weights{
			RecencyDecayPerYear: cfg.RecencyDecayPerYear,
			QuantityBase:        cfg.QuantityBase,
			QuantityStep:        cfg.QuantityStep,
		},
		cfg.RankingInterval, m, logger)

	dispatcher := handler.NewDispatcher(handler.Deps{
		Users:     users,
		Catalog:   catalog,
		Reviews:   reviews,
		Rankings:  rankings,
		Keys:      keys,
		Exchanger: exchanger,
		Clock:     clock,
		Metrics:   m,
		Log:       logger,
	})
	tcpServer := transporttcp.NewServer(cfg.TCPAddr, dispatcher,
		cfg.WorkerPoolSize, cfg.MaxFrameBytes, m, logger)

	httpHandlers := transporthttp.NewHandlers(users, keys, catalog, subscribers,
		cfg.NotifyTimeout, logger)
	httpServer := transporthttp.NewServer(cfg.HTTPAddr, httpHandlers, registry, logger)

	runners := []*persist.Runner{
		persist.NewRunner("users", cfg.UserFlushInterval, func(ctx context.Context) error {
			return db.SaveUsers(ctx, users.Snapshot())
		}, clock, logger),
		persist.NewRunner("hotels", cfg.HotelFlushInterval, func(ctx context.Context) error {
			return db.SaveHotels(ctx, catalog.Snapshot())
		}, clock, logger),
		persist.NewRunner("reviews", cfg.ReviewFlushInterval, func(ctx context.Context) error {
			return db.SaveReviews(ctx, reviews.Snapshot())
		}, clock, logger),
	}

	return &App{
		tcpServer:       tcpServer,
		httpServer:      httpServer,
		engine:          engine,
		runners:         runners,
		db:              db,
		broadcaster:     broadcaster,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}, nil
}

// loadState primes the in-memory stores from the last snapshot, falling back
// to the bundled seed catalog on first start.
func loadState(db *persist.DB, seedPath string, users *store.UserStore, catalog *store.CatalogStore, reviews *store.ReviewStore, logger *zerolog.Logger) error {
	ctx := context.Background()

	hotels, err := db.LoadHotels(ctx)
	if err != nil {
		return fmt.Errorf("load hotels: %w", err)
	}
	if len(hotels) == 0 {
		hotels, err = persist.LoadSeed(seedPath)
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		logger.Info().Int("hotels", len(hotels)).Str("seed", seedPath).Msg("catalog seeded")
	}
	for _, h := range hotels {
		catalog.Put(h)
	}

	loadedUsers, err := db.LoadUsers(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	for _, u := range loadedUsers {
		users.Put(u)
	}

	loadedReviews, err := db.LoadReviews(ctx)
	if err != nil {
		return fmt.Errorf("load reviews: %w", err)
	}
	for _, r := range loadedReviews {
		reviews.Append(r)
	}

	logger.Info().Int("hotels", catalog.Len()).Int("users", len(loadedUsers)).
		Int("reviews", len(loadedReviews)).Msg("state loaded")
	return nil
}

// Run starts all components and blocks until context cancellation or a fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	// compute the initial rankings before accepting any traffic
	a.engine.RunCycle()

	var wg sync.WaitGroup
	wg.Add(1 + len(a.runners))
	go func() {
		defer wg.Done()
		a.engine.Run(ctx)
	}()
	for _, r := range a.runners {
		go func(r *persist.Runner) {
			defer wg.Done()
			r.Run(ctx)
		}(r)
	}

	serverErr := make(chan error, 2)
	go func() { serverErr <- a.tcpServer.Run(ctx) }()
	go func() {
		a.log.Info().Str("addr", a.httpServer.Addr).Msg("http server listening")
		if err := a.httpServer.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down")
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			a.log.Warn().Err(err).Msg("http shutdown failed")
		}
		<-serverErr
		<-serverErr

		// flush runners finish before the database closes
		wg.Wait()
		a.cleanup()
		return nil
	}
}

// cleanup closes the database and the multicast socket.
func (a *App) cleanup() {
	if a.broadcaster != nil {
		if err := a.broadcaster.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close multicast socket")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close database")
		} else {
			a.log.Info().Msg("database closed")
		}
	}
}
