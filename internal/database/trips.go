package database

import (
	"database/sql"
	"errors"
	"fmt"
)

// LeaderboardRow is one entry of the popularity leaderboard.
type LeaderboardRow struct {
	TripID          int64   `json:"trip_id"`
	Title           string  `json:"title"`
	Area            string  `json:"area"`
	PopularityScore float64 `json:"popularity_score"`
	FavoriteCount   int     `json:"favorite_count"`
	ShareCount      int     `json:"share_count"`
	ViewCount       int     `json:"view_count"`
}

// TripDetailRow is one per-day row of a trip.
type TripDetailRow struct {
	Location    string `json:"location"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description"`
}

// TripRecord is a trip with its ordered per-day detail rows.
type TripRecord struct {
	TripID      int64           `json:"trip_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Area        string          `json:"area"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Days        []TripDetailRow `json:"days"`
}

// TopRanked returns the leaderboard ordered by popularity score, then
// favorites, then shares.
func (d *DB) TopRanked(limit int) ([]LeaderboardRow, error) {
	rows, err := d.Query(`
		SELECT t.trip_id, t.title, t.area, s.popularity_score, s.favorite_count, s.share_count, s.view_count
		FROM trips t
		JOIN trip_stats s ON s.trip_id = t.trip_id
		ORDER BY s.popularity_score DESC, s.favorite_count DESC, s.share_count DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []LeaderboardRow
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.TripID, &r.Title, &r.Area, &r.PopularityScore, &r.FavoriteCount, &r.ShareCount, &r.ViewCount); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TripByRank resolves rank 1..5 through the leaderboard ordering and
// loads the full record. ErrNotFound when the slot is empty.
func (d *DB) TripByRank(rank int) (*TripRecord, error) {
	if rank < 1 {
		return nil, ErrNotFound
	}
	ranked, err := d.TopRanked(rank)
	if err != nil {
		return nil, err
	}
	if len(ranked) < rank {
		return nil, ErrNotFound
	}
	return d.GetTrip(ranked[rank-1].TripID)
}

// GetTrip loads one trip with its detail rows ordered by (date, start_time).
func (d *DB) GetTrip(tripID int64) (*TripRecord, error) {
	var t TripRecord
	err := d.QueryRow(`
		SELECT trip_id, title, COALESCE(description, ''), area, start_date, end_date
		FROM trips WHERE trip_id = ?
	`, tripID).Scan(&t.TripID, &t.Title, &t.Description, &t.Area, &t.StartDate, &t.EndDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	rows, err := d.Query(`
		SELECT location, date, start_time, end_time, COALESCE(description, '')
		FROM trip_details
		WHERE trip_id = ?
		ORDER BY date, start_time
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trip details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day TripDetailRow
		if err := rows.Scan(&day.Location, &day.Date, &day.StartTime, &day.EndTime, &day.Description); err != nil {
			return nil, fmt.Errorf("failed to scan trip detail: %w", err)
		}
		t.Days = append(t.Days, day)
	}
	return &t, rows.Err()
}

// TripsByArea returns trips whose area contains the place phrase.
func (d *DB) TripsByArea(place string, limit int) ([]TripRecord, error) {
	rows, err := d.Query(`
		SELECT trip_id, title, COALESCE(description, ''), area, start_date, end_date
		FROM trips
		WHERE area LIKE ?
		ORDER BY trip_id
		LIMIT ?
	`, "%"+place+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips by area: %w", err)
	}
	defer rows.Close()

	var out []TripRecord
	for rows.Next() {
		var t TripRecord
		if err := rows.Scan(&t.TripID, &t.Title, &t.Description, &t.Area, &t.StartDate, &t.EndDate); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
