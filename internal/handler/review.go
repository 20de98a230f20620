package handler

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hotelier/hotelier-server/internal/model"
	"github.com/hotelier/hotelier-server/internal/proto"
	"github.com/hotelier/hotelier-server/internal/store"
)

// singleScoreCount fixes the per-category score vector:
// cleaning, position, services, quality, in that order.
const singleScoreCount = 4

func (d *Dispatcher) insertReview(sess Session, param json.RawMessage) *proto.Response {
	var p proto.InsertReviewParams
	if err := json.Unmarshal(param, &p); err != nil {
		return proto.NewResponse(proto.StatusBadRequest, nil, "malformed review parameters")
	}
	if p.Name == "" || p.City == "" {
		return proto.NewResponse(proto.StatusBadRequest, nil, "hotel name and city are required")
	}
	if len(p.SingleScores) != singleScoreCount {
		return proto.NewResponse(proto.StatusBadRequest, nil,
			fmt.Sprintf("exactly %d category scores are required", singleScoreCount))
	}

	review := model.Review{
		GlobalScore: p.GlobalScore,
		CreatedAt:   d.deps.Clock.Now(),
		Ratings: model.CategoryScores{
			Cleaning: p.SingleScores[0],
			Position: p.SingleScores[1],
			Services: p.SingleScores[2],
			Quality:  p.SingleScores[3],
		},
	}
	if !review.Valid() {
		return proto.NewResponse(proto.StatusBadRequest, nil,
			fmt.Sprintf("scores must be between %d and %d", model.MinScore, model.MaxScore))
	}

	username, ok := sess.Username()
	if !ok {
		return proto.NewResponse(proto.StatusUnauthorized, nil, "login required")
	}

	if !d.deps.Catalog.CityExists(p.City) {
		return proto.NewResponse(proto.StatusNotFound, nil, "no hotels in this city")
	}
	hotel, ok := d.deps.Catalog.Get(p.City, p.Name)
	if !ok {
		return proto.NewResponse(proto.StatusNotFound, nil, "hotel not found in this city")
	}

	review.Username = username
	review.HotelID = hotel.ID
	review.HotelName = hotel.Name
	d.deps.Reviews.Append(review)

	user, err := d.deps.Users.IncrementReviews(username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return proto.NewResponse(proto.StatusUnauthorized, nil, "login required")
		}
		return proto.NewResponse(proto.StatusInternal, nil, "internal error")
	}

	d.deps.Log.Info().Str("username", username).Str("hotel", hotel.Name).
		Str("city", hotel.City).Msg("review recorded")
	return proto.NewResponse(proto.StatusOK, user.Badge,
		fmt.Sprintf("review recorded, %d reviews total", user.NumReviews))
}
