package http

import (
	"errors"
	"net"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hotelier/hotelier-server/internal/notify"
	"github.com/hotelier/hotelier-server/internal/proto"
	"github.com/hotelier/hotelier-server/internal/security"
	"github.com/hotelier/hotelier-server/internal/store"
)

// Handlers serves the account and subscription endpoints. The response body
// is always a proto.Response; its status code doubles as the HTTP status,
// since the platform vocabulary is a subset of HTTP's.
type Handlers struct {
	users         *store.UserStore
	keys          *security.KeyRing
	catalog       *store.CatalogStore
	subs          *store.SubscriberStore
	notifyTimeout time.Duration
	log           *zerolog.Logger
}

// NewHandlers creates the endpoint set.
func NewHandlers(
	users *store.UserStore,
	keys *security.KeyRing,
	catalog *store.CatalogStore,
	subs *store.SubscriberStore,
	notifyTimeout time.Duration,
	logger *zerolog.Logger,
) *Handlers {
	return &Handlers{
		users:         users,
		keys:          keys,
		catalog:       catalog,
		subs:          subs,
		notifyTimeout: notifyTimeout,
		log:           logger,
	}
}

// RegisterRequest carries a new account. Password is the AES-encrypted wire
// password under the session key named by SessionID.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  []byte `json:"password" binding:"required"`
	SessionID string `json:"session_id" binding:"required"`
}

// SubscriptionRequest names a city and the subscriber's callback endpoint.
type SubscriptionRequest struct {
	City         string `json:"city" binding:"required"`
	CallbackAddr string `json:"callback_addr" binding:"required"`
}

func respond(c *gin.Context, resp *proto.Response) {
	c.JSON(resp.StatusCode, resp)
}

// Register handles account creation.
// POST /api/register
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, proto.NewResponse(proto.StatusBadRequest, nil, "username, password and session id are required"))
		return
	}

	key, ok := h.keys.Get(req.SessionID)
	if !ok {
		respond(c, proto.NewResponse(proto.StatusNotFound, nil, "no key negotiated for this session"))
		return
	}
	password, err := security.DecryptPassword(req.Password, key)
	if err != nil || password == "" {
		respond(c, proto.NewResponse(proto.StatusBadRequest, nil, "password is empty or not decryptable"))
		return
	}

	hash, err := security.HashCredential(password)
	if err != nil {
		h.log.Error().Err(err).Msg("credential hashing failed")
		respond(c, proto.NewResponse(proto.StatusInternal, nil, "internal error"))
		return
	}

	if err := h.users.Register(req.Username, hash); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			respond(c, proto.NewResponse(proto.StatusDuplicate, nil, "username is taken"))
			return
		}
		h.log.Error().Err(err).Str("username", req.Username).Msg("registration failed")
		respond(c, proto.NewResponse(proto.StatusInternal, nil, "internal error"))
		return
	}

	h.log.Info().Str("username", req.Username).Msg("user registered")
	respond(c, proto.NewResponse(proto.StatusOK, nil, "registered"))
}

// Subscribe adds a ranking-update subscription for a city.
// POST /api/subscribe
func (h *Handlers) Subscribe(c *gin.Context) {
	var req SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, proto.NewResponse(proto.StatusBadRequest, nil, "city and callback address are required"))
		return
	}
	if _, _, err := net.SplitHostPort(req.CallbackAddr); err != nil {
		respond(c, proto.NewResponse(proto.StatusBadRequest, nil, "callback address must be host:port"))
		return
	}
	if !h.catalog.CityExists(req.City) {
		respond(c, proto.NewResponse(proto.StatusNotFound, nil, "no hotels in this city"))
		return
	}

	sub := notify.NewCallbackSubscriber(req.CallbackAddr, h.notifyTimeout)
	if err := h.subs.Subscribe(req.City, sub); err != nil {
		if errors.Is(err, store.ErrAlreadySubscribed) {
			respond(c, proto.NewResponse(proto.StatusDuplicate, nil, "already subscribed to this city"))
			return
		}
		respond(c, proto.NewResponse(proto.StatusInternal, nil, "internal error"))
		return
	}

	h.log.Info().Str("city", req.City).Str("callback", req.CallbackAddr).Msg("subscriber added")
	respond(c, proto.NewResponse(proto.StatusOK, nil, "subscribed"))
}

// Unsubscribe drops a subscription.
// POST /api/unsubscribe
func (h *Handlers) Unsubscribe(c *gin.Context) {
	var req SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, proto.NewResponse(proto.StatusBadRequest, nil, "city and callback address are required"))
		return
	}

	if err := h.subs.Unsubscribe(req.City, req.CallbackAddr); err != nil {
		respond(c, proto.NewResponse(proto.StatusNotFound, nil, "no such subscription"))
		return
	}

	h.log.Info().Str("city", req.City).Str("callback", req.CallbackAddr).Msg("subscriber removed")
	respond(c, proto.NewResponse(proto.StatusOK, nil, "unsubscribed"))
}
