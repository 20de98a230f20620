package handler

import (
	"encoding/json"
	"fmt"

	"github.com/hotelier/hotelier-server/internal/proto"
)

func (d *Dispatcher) searchHotel(_ Session, param json.RawMessage) *proto.Response {
	var p proto.SearchHotelParams
	if err := json.Unmarshal(param, &p); err != nil {
		return proto.NewResponse(proto.StatusBadRequest, nil, "malformed search parameters")
	}
	if p.Name == "" || p.City == "" {
		return proto.NewResponse(proto.StatusBadRequest, nil, "hotel name and city are required")
	}

	if !d.deps.Catalog.CityExists(p.City) {
		return proto.NewResponse(proto.StatusNotFound, nil, "no hotels in this city")
	}
	h, ok := d.deps.Catalog.Get(p.City, p.Name)
	if !ok {
		return proto.NewResponse(proto.StatusNotFound, nil, "hotel not found in this city")
	}

	return proto.NewResponse(proto.StatusOK, h, "hotel found")
}

func (d *Dispatcher) searchAllHotels(_ Session, param json.RawMessage) *proto.Response {
	var p proto.SearchAllHotelsParams
	if err := json.Unmarshal(param, &p); err != nil {
		return proto.NewResponse(proto.StatusBadRequest, nil, "malformed search parameters")
	}
	if p.City == "" {
		return proto.NewResponse(proto.StatusBadRequest, nil, "city is required")
	}

	ranking, ok := d.deps.Rankings.City(p.City)
	if !ok || len(ranking) == 0 {
		return proto.NewResponse(proto.StatusNotFound, nil, "no hotels in this city")
	}

	return proto.NewResponse(proto.StatusOK, ranking, fmt.Sprintf("%d hotels found", len(ranking)))
}

func (d *Dispatcher) showMyBadges(sess Session, _ json.RawMessage) *proto.Response {
	username, ok := sess.Username()
	if !ok {
		return proto.NewResponse(proto.StatusUnauthorized, nil, "login required")
	}

	user, ok := d.deps.Users.Get(username)
	if !ok {
		// bound session for a user the store no longer knows
		return proto.NewResponse(proto.StatusUnauthorized, nil, "login required")
	}
	if user.Badge == "" {
		return proto.NewResponse(proto.StatusOK, user.Badge, "no badge earned yet, write your first review")
	}

	return proto.NewResponse(proto.StatusOK, user.Badge, fmt.Sprintf("current badge after %d reviews", user.NumReviews))
}
