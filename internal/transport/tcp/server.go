package tcp

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hotelier/hotelier-server/internal/handler"
	"github.com/hotelier/hotelier-server/internal/metrics"
	"github.com/hotelier/hotelier-server/internal/proto"
)

// Server accepts framed client connections and feeds complete requests to the
// dispatcher. Each connection has a reader goroutine; handlers run inside it
// while holding a slot of the shared worker pool, so one connection's
// responses keep request order and a flood of requests cannot exceed the pool.
type Server struct {
	addr       string
	dispatcher *handler.Dispatcher
	workers    chan struct{}
	maxFrame   int
	metrics    *metrics.Metrics
	log        *zerolog.Logger
}

// NewServer builds a TCP front end with a pool of poolSize handler slots.
func NewServer(addr string, d *handler.Dispatcher, poolSize, maxFrame int, m *metrics.Metrics, logger *zerolog.Logger) *Server {
	if poolSize < 1 {
		poolSize = 1
	}
	return &Server{
		addr:       addr,
		dispatcher: d,
		workers:    make(chan struct{}, poolSize),
		maxFrame:   maxFrame,
		metrics:    m,
		log:        logger,
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("tcp server listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handleConn(ctx, conn)
	}
}

// session is the connection's login slot.
type session struct {
	mu   sync.Mutex
	user string
}

func (s *session) Bind(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != "" {
		return false
	}
	s.user = username
	return true
}

func (s *session) Username() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.user != ""
}

func (s *session) Clear(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if username == "" || s.user != username {
		return false
	}
	s.user = ""
	return true
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	remote := conn.RemoteAddr().String()
	log := s.log.With().Str("remote", remote).Logger()
	log.Debug().Msg("connection opened")

	if s.metrics != nil {
		s.metrics.ActiveConnections.Inc()
		defer s.metrics.ActiveConnections.Dec()
	}

	sess := &session{}
	for {
		frame, err := proto.ReadFrame(conn, s.maxFrame)
		if err != nil {
			// any read error is a disconnect; an in-progress login
			// evaporates with the connection
			log.Debug().Err(err).Msg("connection closed")
			return
		}
		if len(frame) == 0 {
			continue
		}

		s.workers <- struct{}{}
		resp := s.dispatcher.Dispatch(sess, frame)
		<-s.workers

		if resp == nil {
			continue
		}
		payload, err := json.Marshal(resp)
		if err != nil {
			log.Error().Err(err).Msg("response not encodable")
			continue
		}
		if err := proto.WriteFrame(conn, payload); err != nil {
			// the client may have gone away between request and reply
			log.Debug().Err(err).Msg("response write failed")
			return
		}
	}
}
