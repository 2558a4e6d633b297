package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weichenlin/tripmate/internal/apperr"
	"github.com/weichenlin/tripmate/internal/cache"
	"github.com/weichenlin/tripmate/internal/database"
)

func newTestGateway(t *testing.T, lockerEndpoint string) *Gateway {
	t.Helper()
	db := database.NewTestDB(t)
	return New(db, cache.New(cache.DefaultOptions()), lockerEndpoint)
}

func TestTopRankedCachesSecondCall(t *testing.T) {
	g := newTestGateway(t, "")
	ctx := context.Background()

	first, err := g.TopRanked(ctx, 5)
	require.NoError(t, err)
	require.Len(t, first, 5)

	second, err := g.TopRanked(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stats := g.cache.Stats()
	assert.Equal(t, uint64(1), stats.Hits[cache.L1]+stats.Hits[cache.L2]+stats.Hits[cache.L3])
}

func TestRankDetailEmptySlotIsNotFound(t *testing.T) {
	g := newTestGateway(t, "")

	_, err := g.RankDetail(context.Background(), 50)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestTripDetailMissingIsNotFound(t *testing.T) {
	g := newTestGateway(t, "")

	_, err := g.TripDetail(context.Background(), 99999)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestTripsByLocation(t *testing.T) {
	g := newTestGateway(t, "")

	trips, err := g.TripsByLocation(context.Background(), "京都", 5)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "京都楓葉慢旅", trips[0].Title)
}

func TestLockersNearSortsAndLimits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("lat"))
		assert.NotEmpty(t, r.URL.Query().Get("lng"))
		// Returned out of distance order on purpose.
		json.NewEncoder(w).Encode([]Locker{
			{Name: "遠的", Address: "遠處", Lat: 35.80, Lng: 139.80, Available: 2},
			{Name: "近的", Address: "近處", Lat: 35.712, Lng: 139.771, Available: 5},
			{Name: "中間的", Address: "中間", Lat: 35.73, Lng: 139.78, Available: 1},
		})
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)

	lockers, err := g.LockersNear(context.Background(), 35.711, 139.770, 2)
	require.NoError(t, err)
	require.Len(t, lockers, 2)
	assert.Equal(t, "近的", lockers[0].Name)
	assert.Equal(t, "中間的", lockers[1].Name)
	assert.Less(t, lockers[0].DistanceKM, lockers[1].DistanceKM)
}

func TestLockersNearCachedValueIsIsolated(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode([]Locker{
			{Name: "近的", Lat: 35.712, Lng: 139.771},
			{Name: "遠的", Lat: 35.80, Lng: 139.80},
		})
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)

	first, err := g.LockersNear(context.Background(), 35.711, 139.770, 9)
	require.NoError(t, err)
	require.Len(t, first, 2)

	// A caller scribbling on its result must not reach the cached copy.
	first[0] = Locker{Name: "改掉了"}

	second, err := g.LockersNear(context.Background(), 35.711, 139.770, 9)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "近的", second[0].Name)
	assert.Equal(t, 1, calls, "second call must come from the cache")
}

func TestLockersNearUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)

	_, err := g.LockersNear(context.Background(), 35.711, 139.770, 9)
	require.Error(t, err)
	assert.Equal(t, apperr.DataUnavailable, apperr.KindOf(err))
}

func TestLockersNearWithoutEndpoint(t *testing.T) {
	g := newTestGateway(t, "")

	_, err := g.LockersNear(context.Background(), 35.711, 139.770, 9)
	require.Error(t, err)
	assert.Equal(t, apperr.DataUnavailable, apperr.KindOf(err))
}

func TestHaversineKnownDistance(t *testing.T) {
	// Tokyo Station to Shinjuku Station is roughly 6.3km.
	d := haversineKM(35.6812, 139.7671, 35.6896, 139.7006)
	assert.InDelta(t, 6.1, d, 0.5)
}
