package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 1,
		Name:    "create_meetings_table",
		Up:      createMeetingsTable,
	})
}

func createMeetingsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS meetings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_user_id TEXT NOT NULL,
			display_name TEXT NOT NULL,
			time_of_day TEXT NOT NULL,
			place TEXT NOT NULL,
			date TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'cancelled')),
			sent_minus10 INTEGER NOT NULL DEFAULT 0,
			sent_minus5 INTEGER NOT NULL DEFAULT 0,
			sent_on_time INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_meetings_date_status ON meetings(date, status)
	`)
	return err
}
