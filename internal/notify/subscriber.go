package notify

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/hotelier/hotelier-server/internal/model"
	"github.com/hotelier/hotelier-server/internal/proto"
)

// RankingUpdate is the payload pushed to a subscriber's callback endpoint.
type RankingUpdate struct {
	City    string        `json:"city"`
	Ranking []model.Hotel `json:"ranking"`
}

// CallbackSubscriber pushes ranking updates to a client-side listener over a
// short-lived framed TCP connection. The callback address is the handle's
// identity: registering the same address twice for a city is a duplicate.
type CallbackSubscriber struct {
	addr    string
	timeout time.Duration
}

// NewCallbackSubscriber builds a handle for a callback address.
func NewCallbackSubscriber(addr string, timeout time.Duration) *CallbackSubscriber {
	return &CallbackSubscriber{addr: addr, timeout: timeout}
}

// Key returns the callback address.
func (s *CallbackSubscriber) Key() string { return s.addr }

// Notify dials the callback endpoint and writes one framed ranking update.
// Any error marks the handle dead; the caller evicts it after the delivery
// pass completes.
func (s *CallbackSubscriber) Notify(city string, ranking []model.Hotel) error {
	payload, err := json.Marshal(RankingUpdate{City: city, Ranking: ranking})
	if err != nil {
		return fmt.Errorf("encode ranking update: %w", err)
	}

	conn, err := net.DialTimeout("tcp", s.addr, s.timeout)
	if err != nil {
		return fmt.Errorf("dial subscriber %s: %w", s.addr, err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
		return err
	}
	if err := proto.WriteFrame(conn, payload); err != nil {
		return fmt.Errorf("push to subscriber %s: %w", s.addr, err)
	}
	return nil
}
