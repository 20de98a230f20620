package notify

import (
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hotelier/hotelier-server/internal/model"
	"github.com/hotelier/hotelier-server/internal/proto"
	"github.com/hotelier/hotelier-server/internal/store"
)

func TestCallbackSubscriberPushesFramedUpdate(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	received := make(chan RankingUpdate, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		payload, err := proto.ReadFrame(conn, 1<<20)
		if err != nil {
			return
		}
		var update RankingUpdate
		if json.Unmarshal(payload, &update) == nil {
			received <- update
		}
	}()

	sub := NewCallbackSubscriber(ln.Addr().String(), time.Second)
	ranking := []model.Hotel{{ID: 1, Name: "grand", City: "turin", Rate: 4.7}}
	if err := sub.Notify("turin", ranking); err != nil {
		t.Fatalf("notify: %v", err)
	}

	select {
	case update := <-received:
		if update.City != "turin" || len(update.Ranking) != 1 || update.Ranking[0].ID != 1 {
			t.Fatalf("unexpected update %+v", update)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no update received")
	}
}

func TestCallbackSubscriberFailsOnDeadEndpoint(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	sub := NewCallbackSubscriber(addr, 200*time.Millisecond)
	if err := sub.Notify("turin", nil); err == nil {
		t.Fatal("expected dial failure")
	}
}

type flakySubscriber struct {
	key  string
	err  error
	hits int
}

func (s *flakySubscriber) Key() string { return s.key }

func (s *flakySubscriber) Notify(string, []model.Hotel) error {
	s.hits++
	return s.err
}

func TestFanoutEvictsFailedHandlesAfterPass(t *testing.T) {
	logger := zerolog.Nop()
	subs := store.NewSubscriberStore()

	good := &flakySubscriber{key: "good"}
	bad := &flakySubscriber{key: "bad", err: errors.New("gone")}
	if err := subs.Subscribe("turin", good); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := subs.Subscribe("turin", bad); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	f := NewFanout(subs, nil, nil, &logger)
	f.DeliverRanking("turin", nil)

	if good.hits != 1 || bad.hits != 1 {
		t.Fatalf("delivery counts good=%d bad=%d, want one each", good.hits, bad.hits)
	}
	left := subs.ForCity("turin")
	if len(left) != 1 || left[0].Key() != "good" {
		t.Fatalf("expected only the good handle to remain, got %d", len(left))
	}

	// next cycle delivers to the survivor only
	f.DeliverRanking("turin", nil)
	if good.hits != 2 || bad.hits != 1 {
		t.Fatalf("second pass counts good=%d bad=%d", good.hits, bad.hits)
	}
}

func TestLeaveSentinel(t *testing.T) {
	if !IsLeaveSentinel([]byte(LeaveSentinel)) {
		t.Fatal("sentinel not recognized")
	}
	if IsLeaveSentinel([]byte("New leader: grand is now first in turin")) {
		t.Fatal("announcement mistaken for sentinel")
	}
}
