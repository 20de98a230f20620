package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hotelier/hotelier-server/internal/model"
)

// Each Save* replaces the table wholesale inside one transaction. Snapshots
// are full, not incremental: the tables mirror the in-memory stores as of the
// last completed flush, which is the crash-recovery contract.

// SaveUsers writes the user snapshot.
func (d *DB) SaveUsers(ctx context.Context, users []model.User) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin users snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	for _, u := range users {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (username, credential_hash, num_reviews, badge) VALUES (?, ?, ?, ?)`,
			u.Username, u.CredentialHash, u.NumReviews, u.Badge)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.Username, err)
		}
	}
	return tx.Commit()
}

// LoadUsers reads all persisted users.
func (d *DB) LoadUsers(ctx context.Context) ([]model.User, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT username, credential_hash, num_reviews, badge FROM users`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.Username, &u.CredentialHash, &u.NumReviews, &u.Badge); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SaveHotels writes the hotel snapshot, including computed scores.
func (d *DB) SaveHotels(ctx context.Context, hotels []model.Hotel) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin hotels snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM hotels`); err != nil {
		return fmt.Errorf("clear hotels: %w", err)
	}
	for _, h := range hotels {
		services, err := json.Marshal(h.Services)
		if err != nil {
			return fmt.Errorf("encode services for hotel %d: %w", h.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO hotels (id, name, description, city, phone, services, rate, cleaning, position, service, quality)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			h.ID, h.Name, h.Description, h.City, h.Phone, string(services),
			h.Rate, h.Ratings.Cleaning, h.Ratings.Position, h.Ratings.Services, h.Ratings.Quality)
		if err != nil {
			return fmt.Errorf("insert hotel %d: %w", h.ID, err)
		}
	}
	return tx.Commit()
}

// LoadHotels reads all persisted hotels.
func (d *DB) LoadHotels(ctx context.Context) ([]model.Hotel, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, name, description, city, phone, services, rate, cleaning, position, service, quality FROM hotels`)
	if err != nil {
		return nil, fmt.Errorf("query hotels: %w", err)
	}
	defer rows.Close()

	var out []model.Hotel
	for rows.Next() {
		var h model.Hotel
		var services string
		err := rows.Scan(&h.ID, &h.Name, &h.Description, &h.City, &h.Phone, &services,
			&h.Rate, &h.Ratings.Cleaning, &h.Ratings.Position, &h.Ratings.Services, &h.Ratings.Quality)
		if err != nil {
			return nil, fmt.Errorf("scan hotel: %w", err)
		}
		if err := json.Unmarshal([]byte(services), &h.Services); err != nil {
			return nil, fmt.Errorf("decode services for hotel %d: %w", h.ID, err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// SaveReviews writes the review snapshot.
func (d *DB) SaveReviews(ctx context.Context, reviews []model.Review) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reviews snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews`); err != nil {
		return fmt.Errorf("clear reviews: %w", err)
	}
	for _, r := range reviews {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO reviews (username, hotel_id, hotel_name, global_score, created_at, cleaning, position, service, quality)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Username, r.HotelID, r.HotelName, r.GlobalScore, r.CreatedAt,
			r.Ratings.Cleaning, r.Ratings.Position, r.Ratings.Services, r.Ratings.Quality)
		if err != nil {
			return fmt.Errorf("insert review: %w", err)
		}
	}
	return tx.Commit()
}

// LoadReviews reads all persisted reviews in insertion order.
func (d *DB) LoadReviews(ctx context.Context) ([]model.Review, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT username, hotel_id, hotel_name, global_score, created_at, cleaning, position, service, quality
		 FROM reviews ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var out []model.Review
	for rows.Next() {
		var r model.Review
		err := rows.Scan(&r.Username, &r.HotelID, &r.HotelName, &r.GlobalScore, &r.CreatedAt,
			&r.Ratings.Cleaning, &r.Ratings.Position, &r.Ratings.Services, &r.Ratings.Quality)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
