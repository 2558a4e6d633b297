// Package gateway is the read-only access path to leaderboard, trip and
// locker data. Every call goes through the tiered cache and comes back
// with an error kind the dispatcher can act on.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/weichenlin/tripmate/internal/apperr"
	"github.com/weichenlin/tripmate/internal/cache"
	"github.com/weichenlin/tripmate/internal/database"
)

const (
	defaultQueryTimeout  = 10 * time.Second
	defaultLockerTimeout = 12 * time.Second
)

type Gateway struct {
	db    *database.DB
	cache *cache.Cache

	lockerEndpoint string
	httpClient     *http.Client

	queryTimeout  time.Duration
	lockerTimeout time.Duration
}

func New(db *database.DB, c *cache.Cache, lockerEndpoint string) *Gateway {
	return &Gateway{
		db:             db,
		cache:          c,
		lockerEndpoint: lockerEndpoint,
		httpClient:     &http.Client{},
		queryTimeout:   defaultQueryTimeout,
		lockerTimeout:  defaultLockerTimeout,
	}
}

// TopRanked returns up to limit leaderboard rows, best first.
func (g *Gateway) TopRanked(ctx context.Context, limit int) ([]database.LeaderboardRow, error) {
	key := cache.Key("top_ranked", limit)
	rows, err := cache.Through(ctx, g.cache, key, func(ctx context.Context) ([]database.LeaderboardRow, error) {
		ctx, cancel := context.WithTimeout(ctx, g.queryTimeout)
		defer cancel()
		return g.topRanked(ctx, limit)
	})
	if err != nil {
		return nil, normalize(err, "leaderboard query")
	}
	return rows, nil
}

func (g *Gateway) topRanked(ctx context.Context, limit int) ([]database.LeaderboardRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.db.TopRanked(limit)
}

// RankDetail returns the full trip record holding rank 1..5.
// An empty slot is not-found, not a failure.
func (g *Gateway) RankDetail(ctx context.Context, rank int) (*database.TripRecord, error) {
	key := cache.Key("rank_detail", rank)
	rec, err := cache.Through(ctx, g.cache, key, func(ctx context.Context) (*database.TripRecord, error) {
		ctx, cancel := context.WithTimeout(ctx, g.queryTimeout)
		defer cancel()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return g.db.TripByRank(rank)
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "no trip holds rank %d", rank)
		}
		return nil, normalize(err, "rank detail query")
	}
	return rec, nil
}

// TripsByLocation returns up to limit trips whose area matches the place.
func (g *Gateway) TripsByLocation(ctx context.Context, place string, limit int) ([]database.TripRecord, error) {
	key := cache.Key("trips_by_location", place, limit)
	trips, err := cache.Through(ctx, g.cache, key, func(ctx context.Context) ([]database.TripRecord, error) {
		ctx, cancel := context.WithTimeout(ctx, g.queryTimeout)
		defer cancel()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return g.db.TripsByArea(place, limit)
	})
	if err != nil {
		return nil, normalize(err, "trips by location query")
	}
	return trips, nil
}

// TripDetail loads one trip by id.
func (g *Gateway) TripDetail(ctx context.Context, tripID int64) (*database.TripRecord, error) {
	key := cache.Key("trip_detail", tripID)
	rec, err := cache.Through(ctx, g.cache, key, func(ctx context.Context) (*database.TripRecord, error) {
		ctx, cancel := context.WithTimeout(ctx, g.queryTimeout)
		defer cancel()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return g.db.GetTrip(tripID)
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "trip %d not found", tripID)
		}
		return nil, normalize(err, "trip detail query")
	}
	return rec, nil
}

// normalize maps raw upstream failures to the data-unavailable kind
// (deadline expiry keeps its timeout kind).
func normalize(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.Timeout, op, err)
	}
	return apperr.Wrap(apperr.DataUnavailable, op, err)
}
