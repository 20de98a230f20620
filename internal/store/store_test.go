package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hotelier/hotelier-server/internal/model"
)

func TestUserStoreRegisterIsUnique(t *testing.T) {
	s := NewUserStore()

	require.NoError(t, s.Register("alice", "hash1"))
	err := s.Register("alice", "hash2")
	require.ErrorIs(t, err, ErrUserExists)

	u, ok := s.Get("alice")
	require.True(t, ok)
	require.Equal(t, "hash1", u.CredentialHash, "second registration must not overwrite the first")
}

func TestUserStoreIncrementReviews(t *testing.T) {
	s := NewUserStore()
	require.NoError(t, s.Register("bob", "h"))

	u, err := s.IncrementReviews("bob")
	require.NoError(t, err)
	require.Equal(t, 1, u.NumReviews)
	require.Equal(t, model.BadgeReviewer, u.Badge)

	_, err = s.IncrementReviews("ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestCatalogStoreNormalizesKeys(t *testing.T) {
	s := NewCatalogStore()
	s.Put(model.Hotel{ID: 1, Name: "Hotel Roma", City: "Rome"})

	h, ok := s.Get("ROME", "hotel roma")
	require.True(t, ok)
	require.Equal(t, 1, h.ID)
	require.Equal(t, "rome", h.City)
	require.Equal(t, "hotel roma", h.Name)

	require.True(t, s.CityExists(" Rome "))
	require.False(t, s.CityExists("paris"))
}

func TestCatalogStoreGetReturnsCopy(t *testing.T) {
	s := NewCatalogStore()
	s.Put(model.Hotel{ID: 1, Name: "a", City: "rome", Services: []string{"wifi"}})

	h, _ := s.Get("rome", "a")
	h.Rate = 99
	h.Services[0] = "mutated"

	again, _ := s.Get("rome", "a")
	require.Zero(t, again.Rate, "caller mutation must not reach the catalog")
	require.Equal(t, "wifi", again.Services[0])
}

func TestReviewStoreAppendOnly(t *testing.T) {
	s := NewReviewStore()
	s.Append(model.Review{HotelID: 7, Username: "alice", GlobalScore: 4})
	s.Append(model.Review{HotelID: 7, Username: "bob", GlobalScore: 2})

	got := s.ForHotel(7)
	require.Len(t, got, 2)
	require.Equal(t, "alice", got[0].Username, "append order must be preserved")

	got[0].GlobalScore = 0
	require.Equal(t, 4.0, s.ForHotel(7)[0].GlobalScore, "ForHotel must return a copy")
	require.Equal(t, 2, s.Count(7))
	require.Zero(t, s.Count(8))
}

type stubSubscriber struct{ key string }

func (s stubSubscriber) Key() string                        { return s.key }
func (s stubSubscriber) Notify(string, []model.Hotel) error { return nil }

func TestSubscriberStoreContract(t *testing.T) {
	s := NewSubscriberStore()
	h1 := stubSubscriber{key: "127.0.0.1:9001"}

	require.NoError(t, s.Subscribe("rome", h1))
	require.ErrorIs(t, s.Subscribe("rome", h1), ErrAlreadySubscribed)

	require.NoError(t, s.Unsubscribe("rome", h1.Key()))
	err := s.Unsubscribe("rome", h1.Key())
	require.True(t, errors.Is(err, ErrNotSubscribed))
}

func TestSubscriberStoreEvict(t *testing.T) {
	s := NewSubscriberStore()
	require.NoError(t, s.Subscribe("rome", stubSubscriber{key: "a"}))
	require.NoError(t, s.Subscribe("rome", stubSubscriber{key: "b"}))

	s.Evict("rome", []string{"a", "missing"})

	subs := s.ForCity("rome")
	require.Len(t, subs, 1)
	require.Equal(t, "b", subs[0].Key())
}

func TestRankingStoreReplaceAndRead(t *testing.T) {
	s := NewRankingStore()

	_, ok := s.City("rome")
	require.False(t, ok)

	s.Update(func(byCity map[string][]model.Hotel) {
		byCity["rome"] = []model.Hotel{{ID: 2, Rate: 4.5}, {ID: 1, Rate: 3.0}}
	})

	ranking, ok := s.City("Rome")
	require.True(t, ok)
	require.Equal(t, []int{2, 1}, []int{ranking[0].ID, ranking[1].ID})

	ranking[0].Rate = 0
	again, _ := s.City("rome")
	require.Equal(t, 4.5, again[0].Rate, "City must return a copy")
}
