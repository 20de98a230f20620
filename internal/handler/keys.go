package handler

import (
	"encoding/json"
	"errors"
	"math/big"

	"github.com/hotelier/hotelier-server/internal/proto"
	"github.com/hotelier/hotelier-server/internal/security"
)

func (d *Dispatcher) sendKey(_ Session, param json.RawMessage) *proto.Response {
	var p proto.SendKeyParams
	if err := json.Unmarshal(param, &p); err != nil {
		return proto.NewResponse(proto.StatusBadRequest, nil, "malformed key exchange parameters")
	}

	clientPub, ok := new(big.Int).SetString(p.PublicKey, 10)
	if !ok {
		return proto.NewResponse(proto.StatusBadRequest, nil, "public key must be a decimal integer")
	}

	serverPub, key, err := d.deps.Exchanger.Exchange(clientPub)
	if err != nil {
		if errors.Is(err, security.ErrInvalidPublicValue) {
			return proto.NewResponse(proto.StatusBadRequest, nil, "public key out of range")
		}
		d.deps.Log.Error().Err(err).Msg("key exchange failed")
		return proto.NewResponse(proto.StatusInternal, nil, "key exchange failed")
	}

	sessionID := d.deps.Keys.Add(key)
	d.deps.Log.Debug().Str("session_id", sessionID).Msg("session key negotiated")

	result := proto.KeyExchangeResult{ServerKey: serverPub.String(), SessionID: sessionID}
	return proto.NewResponse(proto.StatusOK, result, "key exchange complete")
}
