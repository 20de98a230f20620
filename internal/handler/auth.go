package handler

import (
	"encoding/json"

	"github.com/hotelier/hotelier-server/internal/proto"
	"github.com/hotelier/hotelier-server/internal/security"
)

func (d *Dispatcher) login(sess Session, param json.RawMessage) *proto.Response {
	var p proto.LoginParams
	if err := json.Unmarshal(param, &p); err != nil {
		return proto.NewResponse(proto.StatusBadRequest, nil, "malformed login parameters")
	}
	if p.Username == "" || len(p.Password) == 0 || p.SessionID == "" {
		return proto.NewResponse(proto.StatusBadRequest, nil, "username, password and session id are required")
	}

	key, ok := d.deps.Keys.Get(p.SessionID)
	if !ok {
		return proto.NewResponse(proto.StatusUnauthorized, nil, "no key negotiated for this session")
	}
	password, err := security.DecryptPassword(p.Password, key)
	if err != nil {
		d.deps.Log.Warn().Err(err).Str("username", p.Username).Msg("password decryption failed")
		return proto.NewResponse(proto.StatusUnauthorized, nil, "invalid credentials")
	}

	user, ok := d.deps.Users.Get(p.Username)
	if !ok {
		return proto.NewResponse(proto.StatusUnauthorized, nil, "invalid credentials")
	}
	if err := security.CompareCredential(user.CredentialHash, password); err != nil {
		return proto.NewResponse(proto.StatusUnauthorized, nil, "invalid credentials")
	}

	if !sess.Bind(p.Username) {
		return proto.NewResponse(proto.StatusDuplicate, nil, "user already logged in")
	}

	d.deps.Log.Info().Str("username", p.Username).Msg("user logged in")
	return proto.NewResponse(proto.StatusOK, nil, "logged in")
}

func (d *Dispatcher) logout(sess Session, param json.RawMessage) *proto.Response {
	var p proto.LogoutParams
	if err := json.Unmarshal(param, &p); err != nil {
		return proto.NewResponse(proto.StatusBadRequest, nil, "malformed logout parameters")
	}
	if p.Username == "" {
		return proto.NewResponse(proto.StatusBadRequest, nil, "username is required")
	}

	if !sess.Clear(p.Username) {
		return proto.NewResponse(proto.StatusUnauthorized, nil, "user is not logged in here")
	}

	d.deps.Log.Info().Str("username", p.Username).Msg("user logged out")
	return proto.NewResponse(proto.StatusOK, nil, "logged out")
}
