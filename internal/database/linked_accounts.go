package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LinkedAccount ties a chat user to a travel-site account.
type LinkedAccount struct {
	UserID      string    `json:"user_id"`
	SiteAccount string    `json:"site_account"`
	AccessToken string    `json:"-"`
	LinkedAt    time.Time `json:"linked_at"`
}

// UpsertLinkedAccount stores or replaces the link for a user.
func (d *DB) UpsertLinkedAccount(userID, siteAccount, accessToken string) error {
	_, err := d.Exec(`
		INSERT INTO linked_accounts (user_id, site_account, access_token)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			site_account = excluded.site_account,
			access_token = excluded.access_token,
			linked_at = CURRENT_TIMESTAMP
	`, userID, siteAccount, accessToken)
	if err != nil {
		return fmt.Errorf("failed to upsert linked account: %w", err)
	}
	return nil
}

// GetLinkedAccount returns the link for a user, or ErrNotFound.
func (d *DB) GetLinkedAccount(userID string) (*LinkedAccount, error) {
	var a LinkedAccount
	err := d.QueryRow(`
		SELECT user_id, site_account, access_token, linked_at
		FROM linked_accounts WHERE user_id = ?
	`, userID).Scan(&a.UserID, &a.SiteAccount, &a.AccessToken, &a.LinkedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get linked account: %w", err)
	}
	return &a, nil
}
