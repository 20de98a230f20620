package model

import "time"

// MinScore and MaxScore bound every review score, global and per category.
const (
	MinScore = 0
	MaxScore = 5
)

// Review is immutable once created. Reviews accumulate append-only per hotel
// id; they are never edited or deleted.
type Review struct {
	Username    string         `json:"username"`
	HotelID     int            `json:"hotel_id"`
	HotelName   string         `json:"hotel_name"`
	GlobalScore float64        `json:"global_score"`
	CreatedAt   time.Time      `json:"created_at"`
	Ratings     CategoryScores `json:"ratings"`
}

// ScoreInRange reports whether s is a valid review score.
func ScoreInRange(s float64) bool {
	return s >= MinScore && s <= MaxScore
}

// Valid reports whether all five scores of the review are in range.
func (r Review) Valid() bool {
	return ScoreInRange(r.GlobalScore) &&
		ScoreInRange(r.Ratings.Cleaning) &&
		ScoreInRange(r.Ratings.Position) &&
		ScoreInRange(r.Ratings.Services) &&
		ScoreInRange(r.Ratings.Quality)
}
