package tcp

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/hotelier/hotelier-server/internal/handler"
	"github.com/hotelier/hotelier-server/internal/proto"
	"github.com/hotelier/hotelier-server/internal/security"
	"github.com/hotelier/hotelier-server/internal/store"
)

func startServer(t *testing.T) string {
	t.Helper()

	ex, err := security.NewExchanger(39551, 7)
	if err != nil {
		t.Fatalf("exchanger: %v", err)
	}
	logger := zerolog.Nop()
	d := handler.NewDispatcher(handler.Deps{
		Users:     store.NewUserStore(),
		Catalog:   store.NewCatalogStore(),
		Reviews:   store.NewReviewStore(),
		Rankings:  store.NewRankingStore(),
		Keys:      security.NewKeyRing(),
		Exchanger: ex,
		Clock:     clockwork.NewRealClock(),
		Log:       &logger,
	})
	srv := NewServer("", d, 2, 1024, nil, &logger)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})

	return ln.Addr().String()
}

func sendRequest(t *testing.T, conn net.Conn, op string, param any) {
	t.Helper()
	raw, err := json.Marshal(param)
	if err != nil {
		t.Fatalf("marshal param: %v", err)
	}
	frame, err := json.Marshal(proto.Request{Operation: op, Param: raw})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	if err := proto.WriteFrame(conn, frame); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func readResponse(t *testing.T, conn net.Conn) proto.Response {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	payload, err := proto.ReadFrame(conn, 1<<20)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var resp proto.Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestKeyExchangeOverWire(t *testing.T) {
	addr := startServer(t)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sendRequest(t, conn, proto.OpSendKey, proto.SendKeyParams{PublicKey: "49"})
	resp := readResponse(t, conn)
	if resp.StatusCode != proto.StatusOK {
		t.Fatalf("status = %d body %q", resp.StatusCode, resp.Message.Body)
	}
	result, ok := resp.Message.Result.(map[string]any)
	if !ok || result["session_id"] == "" || result["server_key"] == "" {
		t.Fatalf("unexpected result %#v", resp.Message.Result)
	}
}

func TestRequestsOnOneConnectionKeepOrder(t *testing.T) {
	addr := startServer(t)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// pipeline several requests before reading anything back
	sendRequest(t, conn, proto.OpSearchHotel, proto.SearchHotelParams{})
	sendRequest(t, conn, proto.OpSendKey, proto.SendKeyParams{PublicKey: "49"})
	sendRequest(t, conn, proto.OpLogout, proto.LogoutParams{Username: "ghost"})

	if got := readResponse(t, conn).StatusCode; got != proto.StatusBadRequest {
		t.Fatalf("first status = %d", got)
	}
	if got := readResponse(t, conn).StatusCode; got != proto.StatusOK {
		t.Fatalf("second status = %d", got)
	}
	if got := readResponse(t, conn).StatusCode; got != proto.StatusUnauthorized {
		t.Fatalf("third status = %d", got)
	}
}

func TestAbruptDisconnectLeavesServerServing(t *testing.T) {
	addr := startServer(t)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	// half a length prefix, then gone
	if _, err := conn.Write([]byte{0, 0}); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.Close()

	conn2, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial after disconnect: %v", err)
	}
	defer conn2.Close()

	sendRequest(t, conn2, proto.OpSendKey, proto.SendKeyParams{PublicKey: "49"})
	if got := readResponse(t, conn2).StatusCode; got != proto.StatusOK {
		t.Fatalf("status after disconnect = %d", got)
	}
}

func TestUnknownOperationIsDropped(t *testing.T) {
	addr := startServer(t)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sendRequest(t, conn, "Nonsense", struct{}{})
	sendRequest(t, conn, proto.OpSendKey, proto.SendKeyParams{PublicKey: "49"})

	// the first reply on the wire belongs to the second request
	if got := readResponse(t, conn).StatusCode; got != proto.StatusOK {
		t.Fatalf("status = %d", got)
	}
}

func TestOversizedFrameDisconnects(t *testing.T) {
	addr := startServer(t)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// declared length far beyond the server's 1 KiB limit
	if _, err := conn.Write([]byte{0xff, 0xff, 0xff, 0xff}); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	if _, err := proto.ReadFrame(conn, 1<<20); err == nil {
		t.Fatal("expected the server to close the connection")
	}
}
