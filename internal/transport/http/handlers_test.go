package http

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hotelier/hotelier-server/internal/model"
	"github.com/hotelier/hotelier-server/internal/proto"
	"github.com/hotelier/hotelier-server/internal/security"
	"github.com/hotelier/hotelier-server/internal/store"
)

type fixture struct {
	server *httptest.Server
	users  *store.UserStore
	keys   *security.KeyRing
	subs   *store.SubscriberStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.Nop()

	users := store.NewUserStore()
	keys := security.NewKeyRing()
	catalog := store.NewCatalogStore()
	subs := store.NewSubscriberStore()
	catalog.Put(model.Hotel{ID: 1, Name: "Grand", City: "Turin"})

	h := NewHandlers(users, keys, catalog, subs, time.Second, &logger)
	srv := httptest.NewServer(NewServer("", h, nil, &logger).Handler)
	t.Cleanup(srv.Close)

	return &fixture{server: srv, users: users, keys: keys, subs: subs}
}

func (f *fixture) post(t *testing.T, path string, body any) (int, proto.Response) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := f.server.Client().Post(f.server.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	defer resp.Body.Close()

	var out proto.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	key := bytes.Repeat([]byte("k"), 16)
	sid := f.keys.Add(key)

	cipher, err := security.EncryptPassword("s3cret", key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	status, _ := f.post(t, "/api/register", RegisterRequest{Username: "alice", Password: cipher, SessionID: "missing"})
	if status != proto.StatusNotFound {
		t.Fatalf("unknown session status = %d", status)
	}

	status, _ = f.post(t, "/api/register", RegisterRequest{Username: "alice", Password: []byte("junk"), SessionID: sid})
	if status != proto.StatusBadRequest {
		t.Fatalf("undecryptable password status = %d", status)
	}

	status, _ = f.post(t, "/api/register", RegisterRequest{Username: "alice", Password: cipher, SessionID: sid})
	if status != proto.StatusOK {
		t.Fatalf("register status = %d", status)
	}

	user, ok := f.users.Get("alice")
	if !ok {
		t.Fatal("user not stored")
	}
	if user.CredentialHash == "s3cret" || user.CredentialHash == "" {
		t.Fatalf("credential stored unhashed: %q", user.CredentialHash)
	}
	if err := security.CompareCredential(user.CredentialHash, "s3cret"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}

	status, _ = f.post(t, "/api/register", RegisterRequest{Username: "alice", Password: cipher, SessionID: sid})
	if status != proto.StatusDuplicate {
		t.Fatalf("duplicate register status = %d", status)
	}
}

func TestSubscribeLifecycle(t *testing.T) {
	f := newFixture(t)

	status, _ := f.post(t, "/api/subscribe", SubscriptionRequest{City: "Turin", CallbackAddr: "not-an-addr"})
	if status != proto.StatusBadRequest {
		t.Fatalf("bad callback status = %d", status)
	}

	status, _ = f.post(t, "/api/subscribe", SubscriptionRequest{City: "Nowhere", CallbackAddr: "127.0.0.1:9000"})
	if status != proto.StatusNotFound {
		t.Fatalf("unknown city status = %d", status)
	}

	status, _ = f.post(t, "/api/subscribe", SubscriptionRequest{City: "Turin", CallbackAddr: "127.0.0.1:9000"})
	if status != proto.StatusOK {
		t.Fatalf("subscribe status = %d", status)
	}
	if got := len(f.subs.ForCity("turin")); got != 1 {
		t.Fatalf("subscriber count = %d", got)
	}

	status, _ = f.post(t, "/api/subscribe", SubscriptionRequest{City: "turin", CallbackAddr: "127.0.0.1:9000"})
	if status != proto.StatusDuplicate {
		t.Fatalf("duplicate subscribe status = %d", status)
	}

	status, _ = f.post(t, "/api/unsubscribe", SubscriptionRequest{City: "Turin", CallbackAddr: "127.0.0.1:9000"})
	if status != proto.StatusOK {
		t.Fatalf("unsubscribe status = %d", status)
	}

	status, _ = f.post(t, "/api/unsubscribe", SubscriptionRequest{City: "Turin", CallbackAddr: "127.0.0.1:9000"})
	if status != proto.StatusNotFound {
		t.Fatalf("missing unsubscribe status = %d", status)
	}
}
