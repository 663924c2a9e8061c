package memory

import (
	"context"
	"errors"
	"testing"

	"triptailor-backend/internal/domain"
	"triptailor-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemStore(t *testing.T) {
	ctx := context.Background()
	s := NewItemStore()

	t.Run("MissingIsNotFound", func(t *testing.T) {
		_, err := s.Latest(ctx, domain.KindFlight, "nope")
		assert.True(t, repository.IsNotFound(err))
	})

	t.Run("PutNeverOverwrites", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, domain.KindFlight, "F1", domain.Document{"v": 1.0}))
		err := s.Put(ctx, domain.KindFlight, "F1", domain.Document{"v": 2.0})
		assert.True(t, repository.IsConflict(err))

		doc, err := s.Latest(ctx, domain.KindFlight, "F1")
		require.NoError(t, err)
		assert.Equal(t, 1.0, doc["v"])
	})

	t.Run("LatestVersionWins", func(t *testing.T) {
		s.AddVersion(domain.KindHotel, "H1", domain.Document{"v": "old"})
		s.AddVersion(domain.KindHotel, "H1", domain.Document{"v": "new"})
		doc, err := s.Latest(ctx, domain.KindHotel, "H1")
		require.NoError(t, err)
		assert.Equal(t, "new", doc["v"])
	})

	t.Run("KindsAreSeparate", func(t *testing.T) {
		_, err := s.Latest(ctx, domain.KindHotel, "F1")
		assert.True(t, repository.IsNotFound(err))
	})
}

func TestTripStoreCopiesRecords(t *testing.T) {
	ctx := context.Background()
	s := NewTripStore()
	key := domain.TripKey{UserID: "u", ChatID: "c"}

	rec := domain.NewTripRecord(key)
	rec.Flights.Put("F1", domain.StatusAvailable)
	require.NoError(t, s.Put(ctx, rec))

	rec.Flights.Put("F2", domain.StatusAvailable)
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"F1"}, got.Flights.IDs())

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.True(t, repository.IsNotFound(err))
}

func TestTripStoreInjectedError(t *testing.T) {
	s := NewTripStore()
	boom := errors.New("boom")
	s.SetError("Put", boom)
	err := s.Put(context.Background(), domain.NewTripRecord(domain.TripKey{UserID: "u", ChatID: "c"}))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Puts())
}
