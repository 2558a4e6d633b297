package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"

	"github.com/weichenlin/tripmate/internal/apperr"
	"github.com/weichenlin/tripmate/internal/cache"
)

// Locker is one nearby-locker candidate, already distance-sorted.
type Locker struct {
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Available  int     `json:"available"`
	DistanceKM float64 `json:"distance_km"`
}

// LockersNear fetches locker candidates around a point and returns the
// closest ones. How the endpoint gets its data (scraping included) is its
// own business; this side only sees shaped records.
func (g *Gateway) LockersNear(ctx context.Context, lat, lng float64, limit int) ([]Locker, error) {
	key := cache.Key("lockers_near", fmt.Sprintf("%.3f", lat), fmt.Sprintf("%.3f", lng), limit)
	lockers, err := cache.Through(ctx, g.cache, key, func(ctx context.Context) ([]Locker, error) {
		ctx, cancel := context.WithTimeout(ctx, g.lockerTimeout)
		defer cancel()
		return g.fetchLockers(ctx, lat, lng)
	})
	if err != nil {
		return nil, normalize(err, "locker lookup")
	}

	// The cached slice is shared between callers; hand out a copy so
	// nobody mutates it.
	out := make([]Locker, len(lockers))
	copy(out, lockers)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (g *Gateway) fetchLockers(ctx context.Context, lat, lng float64) ([]Locker, error) {
	if g.lockerEndpoint == "" {
		return nil, apperr.New(apperr.DataUnavailable, "locker endpoint not configured")
	}

	u, err := url.Parse(g.lockerEndpoint)
	if err != nil {
		return nil, fmt.Errorf("bad locker endpoint: %w", err)
	}
	q := u.Query()
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lng", fmt.Sprintf("%f", lng))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("locker endpoint returned %d", resp.StatusCode)
	}

	var lockers []Locker
	if err := json.NewDecoder(resp.Body).Decode(&lockers); err != nil {
		return nil, fmt.Errorf("failed to decode locker response: %w", err)
	}

	for i := range lockers {
		lockers[i].DistanceKM = haversineKM(lat, lng, lockers[i].Lat, lockers[i].Lng)
	}
	// Sorted before the result lands in the cache, so cached values are
	// never reordered after other readers can see them.
	sort.SliceStable(lockers, func(i, j int) bool {
		return lockers[i].DistanceKM < lockers[j].DistanceKM
	})
	return lockers, nil
}

const earthRadiusKM = 6371.0

func haversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
