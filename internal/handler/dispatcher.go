package handler

import (
	"encoding/json"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/hotelier/hotelier-server/internal/metrics"
	"github.com/hotelier/hotelier-server/internal/proto"
	"github.com/hotelier/hotelier-server/internal/security"
	"github.com/hotelier/hotelier-server/internal/store"
)

// Session is the per-connection login state a handler sees. The transport
// owns the implementation; binding and clearing are connection-scoped.
type Session interface {
	// Bind attaches a username to the connection. It fails when the
	// connection already carries a login.
	Bind(username string) bool
	// Username returns the bound username, if any.
	Username() (string, bool)
	// Clear detaches the given username. It fails when that user is not
	// the one bound here.
	Clear(username string) bool
}

// opFunc handles one decoded operation.
type opFunc func(sess Session, param json.RawMessage) *proto.Response

// Deps collects everything the operation handlers touch.
type Deps struct {
	Users     *store.UserStore
	Catalog   *store.CatalogStore
	Reviews   *store.ReviewStore
	Rankings  *store.RankingStore
	Keys      *security.KeyRing
	Exchanger *security.Exchanger
	Clock     clockwork.Clock
	Metrics   *metrics.Metrics
	Log       *zerolog.Logger
}

// Dispatcher decodes request envelopes and routes them to the operation
// handlers. One dispatcher serves all connections.
type Dispatcher struct {
	deps Deps
	ops  map[string]opFunc
}

// NewDispatcher builds the operation table.
func NewDispatcher(deps Deps) *Dispatcher {
	d := &Dispatcher{deps: deps}
	d.ops = map[string]opFunc{
		proto.OpLogin:           d.login,
		proto.OpLogout:          d.logout,
		proto.OpSearchHotel:     d.searchHotel,
		proto.OpSearchAllHotels: d.searchAllHotels,
		proto.OpInsertReview:    d.insertReview,
		proto.OpShowMyBadges:    d.showMyBadges,
		proto.OpSendKey:         d.sendKey,
	}
	return d
}

// Dispatch decodes one frame and runs its handler. A nil return means the
// frame carried no recognizable operation and gets no reply; the connection
// stays up. A panicking handler yields a 500 instead of killing the server.
func (d *Dispatcher) Dispatch(sess Session, frame []byte) (resp *proto.Response) {
	var req proto.Request
	if err := json.Unmarshal(frame, &req); err != nil {
		d.deps.Log.Warn().Err(err).Msg("undecodable request envelope")
		return proto.NewResponse(proto.StatusBadRequest, nil, "malformed request")
	}

	op, ok := d.ops[req.Operation]
	if !ok {
		d.deps.Log.Warn().Str("operation", req.Operation).Msg("unknown operation, dropping")
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			d.deps.Log.Error().Interface("panic", r).Str("operation", req.Operation).
				Msg("handler panicked")
			resp = proto.NewResponse(proto.StatusInternal, nil, "internal error")
		}
		if resp != nil {
			d.deps.Metrics.ObserveRequest(req.Operation, resp.StatusCode)
		}
	}()

	return op(sess, req.Param)
}
