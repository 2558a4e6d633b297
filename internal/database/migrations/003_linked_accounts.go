package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 3,
		Name:    "create_linked_accounts_table",
		Up:      createLinkedAccountsTable,
	})
}

func createLinkedAccountsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS linked_accounts (
			user_id TEXT PRIMARY KEY,
			site_account TEXT NOT NULL,
			access_token TEXT NOT NULL,
			linked_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}
