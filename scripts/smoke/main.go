package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/big"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/hotelier/hotelier-server/internal/proto"
	"github.com/hotelier/hotelier-server/internal/security"
)

// Smoke test for a running server: negotiates a key, registers an account
// over the HTTP side channel, logs in over TCP and runs one search.
func main() {
	if err := run(); err != nil {
		log.Printf("smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	tcpAddr := flag.String("tcp", "localhost:7777", "server TCP address")
	httpAddr := flag.String("http", "http://localhost:8080", "server HTTP base URL")
	user := flag.String("user", fmt.Sprintf("smoke-%d", time.Now().Unix()), "username to register")
	password := flag.String("password", "smoke-password", "password to register with")
	city := flag.String("city", "Torino", "city to search")
	prime := flag.Int64("prime", 39551, "Diffie-Hellman modulus")
	generator := flag.Int64("generator", 7, "Diffie-Hellman generator")
	flag.Parse()

	conn, err := net.DialTimeout("tcp", *tcpAddr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	send := func(op string, param any) (proto.Response, error) {
		raw, err := json.Marshal(param)
		if err != nil {
			return proto.Response{}, fmt.Errorf("marshal %s param: %w", op, err)
		}
		frame, err := json.Marshal(proto.Request{Operation: op, Param: raw})
		if err != nil {
			return proto.Response{}, fmt.Errorf("marshal %s request: %w", op, err)
		}
		if err := proto.WriteFrame(conn, frame); err != nil {
			return proto.Response{}, fmt.Errorf("send %s: %w", op, err)
		}
		payload, err := proto.ReadFrame(conn, 1<<20)
		if err != nil {
			return proto.Response{}, fmt.Errorf("read %s reply: %w", op, err)
		}
		var resp proto.Response
		if err := json.Unmarshal(payload, &resp); err != nil {
			return proto.Response{}, fmt.Errorf("decode %s reply: %w", op, err)
		}
		return resp, nil
	}

	// key exchange
	secret := big.NewInt(time.Now().UnixNano()%(*prime-2) + 1)
	clientPub := new(big.Int).Exp(big.NewInt(*generator), secret, big.NewInt(*prime))
	resp, err := send(proto.OpSendKey, proto.SendKeyParams{PublicKey: clientPub.String()})
	if err != nil {
		return err
	}
	if resp.StatusCode != proto.StatusOK {
		return fmt.Errorf("SendKey: status %d: %s", resp.StatusCode, resp.Message.Body)
	}
	result, err := json.Marshal(resp.Message.Result)
	if err != nil {
		return fmt.Errorf("re-encode SendKey result: %w", err)
	}
	var exchange proto.KeyExchangeResult
	if err := json.Unmarshal(result, &exchange); err != nil {
		return fmt.Errorf("decode SendKey result: %w", err)
	}
	serverPub, ok := new(big.Int).SetString(exchange.ServerKey, 10)
	if !ok {
		return fmt.Errorf("server key is not decimal: %q", exchange.ServerKey)
	}
	key := security.SessionKey(new(big.Int).Exp(serverPub, secret, big.NewInt(*prime)))
	log.Printf("negotiated session %s", exchange.SessionID)

	// register over the side channel
	cipher, err := security.EncryptPassword(*password, key)
	if err != nil {
		return fmt.Errorf("encrypt password: %w", err)
	}
	body, err := json.Marshal(map[string]any{
		"username": *user, "password": cipher, "session_id": exchange.SessionID,
	})
	if err != nil {
		return fmt.Errorf("marshal register body: %w", err)
	}
	httpResp, err := http.Post(*httpAddr+"/api/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("register: status %d", httpResp.StatusCode)
	}
	log.Printf("registered %s", *user)

	// login and search
	resp, err = send(proto.OpLogin, proto.LoginParams{
		Username: *user, Password: cipher, SessionID: exchange.SessionID,
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != proto.StatusOK {
		return fmt.Errorf("Login: status %d: %s", resp.StatusCode, resp.Message.Body)
	}
	log.Printf("logged in")

	resp, err = send(proto.OpSearchAllHotels, proto.SearchAllHotelsParams{City: *city})
	if err != nil {
		return err
	}
	log.Printf("SearchAllHotels %s: status %d: %s", *city, resp.StatusCode, resp.Message.Body)

	resp, err = send(proto.OpLogout, proto.LogoutParams{Username: *user})
	if err != nil {
		return err
	}
	if resp.StatusCode != proto.StatusOK {
		return fmt.Errorf("Logout: status %d: %s", resp.StatusCode, resp.Message.Body)
	}
	log.Printf("logged out, smoke test passed")
	return nil
}
