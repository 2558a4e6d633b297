package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// MeetingStatus represents the status of a meeting
type MeetingStatus string

const (
	MeetingStatusActive    MeetingStatus = "active"
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

// Offset is a reminder offset in minutes before the meeting time.
type Offset int

const (
	OffsetMinus10 Offset = 10
	OffsetMinus5  Offset = 5
	OffsetOnTime  Offset = 0
)

// Offsets lists the reminder offsets in firing order.
var Offsets = []Offset{OffsetMinus10, OffsetMinus5, OffsetOnTime}

func (o Offset) column() string {
	switch o {
	case OffsetMinus10:
		return "sent_minus10"
	case OffsetMinus5:
		return "sent_minus5"
	default:
		return "sent_on_time"
	}
}

// Meeting represents one user-created meeting with per-offset
// reminder-sent flags. The flags only ever flip false to true.
type Meeting struct {
	ID          int64         `json:"id"`
	OwnerUserID string        `json:"owner_user_id"`
	DisplayName string        `json:"display_name"`
	TimeOfDay   string        `json:"time_of_day"` // HH:MM, 24h
	Place       string        `json:"place"`
	Date        string        `json:"date"` // YYYY-MM-DD
	Status      MeetingStatus `json:"status"`
	SentMinus10 bool          `json:"sent_minus10"`
	SentMinus5  bool          `json:"sent_minus5"`
	SentOnTime  bool          `json:"sent_on_time"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Instant resolves the meeting's wall-clock instant in loc.
func (m *Meeting) Instant(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", m.Date+" "+m.TimeOfDay, loc)
}

// Sent reports the flag for one offset.
func (m *Meeting) Sent(o Offset) bool {
	switch o {
	case OffsetMinus10:
		return m.SentMinus10
	case OffsetMinus5:
		return m.SentMinus5
	default:
		return m.SentOnTime
	}
}

// DueReminder pairs a meeting with the offset that is currently due.
type DueReminder struct {
	Meeting Meeting
	Offset  Offset
}

// CreateMeeting records a meeting for the creation day. timeOfDay must be
// a valid 24h HH:MM or the call fails with ErrBadTime. An empty name gets
// the default "MM月DD日 {place}集合".
func (d *DB) CreateMeeting(owner, timeOfDay, place, name string, now time.Time) (*Meeting, error) {
	parsed, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadTime, timeOfDay)
	}
	timeOfDay = parsed.Format("15:04")

	if name == "" {
		name = fmt.Sprintf("%02d月%02d日 %s集合", int(now.Month()), now.Day(), place)
	}
	date := now.Format("2006-01-02")

	result, err := d.Exec(`
		INSERT INTO meetings (owner_user_id, display_name, time_of_day, place, date, status)
		VALUES (?, ?, ?, ?, ?, 'active')
	`, owner, name, timeOfDay, place, date)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting id: %w", err)
	}

	return &Meeting{
		ID:          id,
		OwnerUserID: owner,
		DisplayName: name,
		TimeOfDay:   timeOfDay,
		Place:       place,
		Date:        date,
		Status:      MeetingStatusActive,
		CreatedAt:   now,
	}, nil
}

const meetingColumns = `id, owner_user_id, display_name, time_of_day, place, date, status,
	sent_minus10, sent_minus5, sent_on_time, created_at`

type meetingScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(scanner meetingScanner) (*Meeting, error) {
	var m Meeting
	err := scanner.Scan(
		&m.ID, &m.OwnerUserID, &m.DisplayName, &m.TimeOfDay, &m.Place, &m.Date, &m.Status,
		&m.SentMinus10, &m.SentMinus5, &m.SentOnTime, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMeeting fetches one meeting by id.
func (d *DB) GetMeeting(id int64) (*Meeting, error) {
	row := d.QueryRow(`SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, id)
	m, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return m, nil
}

// ListActiveMeetings returns the owner's active meetings, soonest first.
func (d *DB) ListActiveMeetings(owner string) ([]Meeting, error) {
	rows, err := d.Query(`
		SELECT `+meetingColumns+`
		FROM meetings
		WHERE owner_user_id = ? AND status = 'active'
		ORDER BY date, time_of_day
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		meetings = append(meetings, *m)
	}
	return meetings, rows.Err()
}

// CancelMeeting marks a meeting cancelled. Cancelling twice is the same
// as cancelling once.
func (d *DB) CancelMeeting(id int64, owner string) error {
	var currentOwner string
	err := d.QueryRow(`SELECT owner_user_id FROM meetings WHERE id = ?`, id).Scan(&currentOwner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up meeting: %w", err)
	}
	if currentOwner != owner {
		return ErrNotOwned
	}

	_, err = d.Exec(`UPDATE meetings SET status = 'cancelled' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to cancel meeting: %w", err)
	}
	return nil
}

// DueReminders selects (meeting, offset) pairs whose reminder window
// covers now: active meetings dated today whose fire instant for the
// offset is at most one minute in the past, with the offset's sent flag
// still unset. A meeting can appear up to once per offset.
func (d *DB) DueReminders(now time.Time) ([]DueReminder, error) {
	rows, err := d.Query(`
		SELECT `+meetingColumns+`
		FROM meetings
		WHERE date = ? AND status = 'active'
		  AND (sent_minus10 = 0 OR sent_minus5 = 0 OR sent_on_time = 0)
	`, now.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	defer rows.Close()

	var due []DueReminder
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}

		instant, err := m.Instant(now.Location())
		if err != nil {
			// A row that slipped past validation; skip rather than wedge the sweep.
			continue
		}

		for _, o := range Offsets {
			if m.Sent(o) {
				continue
			}
			fireAt := instant.Add(-time.Duration(o) * time.Minute)
			// Due during [fireAt, fireAt+1m): the boundary minute is inclusive.
			if !now.Before(fireAt) && now.Before(fireAt.Add(time.Minute)) {
				due = append(due, DueReminder{Meeting: *m, Offset: o})
			}
		}
	}
	return due, rows.Err()
}

// MarkReminderSent flips one offset flag false→true. The update is a
// compare-and-set on the flag, so concurrent sweeps take it at most once;
// extra calls are no-ops. It reports whether this call did the flip.
func (d *DB) MarkReminderSent(id int64, offset Offset) (bool, error) {
	col := offset.column()
	result, err := d.Exec(
		`UPDATE meetings SET `+col+` = 1 WHERE id = ? AND `+col+` = 0`, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}
