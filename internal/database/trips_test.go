package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopRankedOrdering(t *testing.T) {
	db := NewTestDB(t)

	rows, err := db.TopRanked(5)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, "東京經典五日遊", rows[0].Title)
	assert.Equal(t, "京都楓葉慢旅", rows[1].Title)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].PopularityScore, rows[i].PopularityScore,
			"leaderboard must descend by popularity")
	}
}

func TestTopRankedLimit(t *testing.T) {
	db := NewTestDB(t)

	rows, err := db.TopRanked(3)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestTripByRank(t *testing.T) {
	db := NewTestDB(t)

	trip, err := db.TripByRank(1)
	require.NoError(t, err)
	assert.Equal(t, "東京經典五日遊", trip.Title)
	require.NotEmpty(t, trip.Days)
	assert.Equal(t, "淺草寺", trip.Days[0].Location, "detail rows come back in day order")

	_, err = db.TripByRank(0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.TripByRank(100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetTripMissing(t *testing.T) {
	db := NewTestDB(t)

	_, err := db.GetTrip(99999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetTripQueryFailureIsNotNotFound(t *testing.T) {
	db := NewTestDB(t)
	require.NoError(t, db.Close())

	// A broken connection is a lookup failure, not a missing row.
	_, err := db.GetTrip(1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestTripsByArea(t *testing.T) {
	db := NewTestDB(t)

	trips, err := db.TripsByArea("東京", 5)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	for _, trip := range trips {
		assert.Contains(t, trip.Area, "東京")
	}

	none, err := db.TripsByArea("火星", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTripsByAreaLimit(t *testing.T) {
	db := NewTestDB(t)

	trips, err := db.TripsByArea("東京", 1)
	require.NoError(t, err)
	assert.Len(t, trips, 1)
}
