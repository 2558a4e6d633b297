// Package linking drives the travel-site account binding flow: hand the
// user an authorize URL with a single-use state, then on the OAuth
// callback exchange the code, persist the link, and push a confirmation.
package linking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"sync"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"golang.org/x/oauth2"

	"github.com/weichenlin/tripmate/internal/apperr"
	"github.com/weichenlin/tripmate/internal/card"
	"github.com/weichenlin/tripmate/internal/database"
	"github.com/weichenlin/tripmate/internal/push"
)

const stateTTL = 10 * time.Minute

type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
}

type stateEntry struct {
	userID    string
	expiresAt time.Time
}

type Service struct {
	db     *database.DB
	sender push.Sender
	oauth  *oauth2.Config

	mu     sync.Mutex
	states map[string]stateEntry

	now func() time.Time
}

func New(db *database.DB, sender push.Sender, cfg Config) *Service {
	return &Service{
		db:     db,
		sender: sender,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		states: make(map[string]stateEntry),
		now:    time.Now,
	}
}

// Configured reports whether linking credentials are present.
func (s *Service) Configured() bool {
	return s.oauth.ClientID != ""
}

// AuthURL builds the authorize URL for a user, binding a fresh random
// state to them for the callback.
func (s *Service) AuthURL(userID string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", apperr.Wrap(apperr.Internal, "generate state", err)
	}
	state := hex.EncodeToString(buf)

	s.mu.Lock()
	now := s.now()
	for k, e := range s.states {
		if now.After(e.expiresAt) {
			delete(s.states, k)
		}
	}
	s.states[state] = stateEntry{userID: userID, expiresAt: now.Add(stateTTL)}
	s.mu.Unlock()

	return s.oauth.AuthCodeURL(state), nil
}

// HandleCallback completes the flow: validates the state, exchanges the
// code, stores the link, and pushes a success card to the user.
func (s *Service) HandleCallback(ctx context.Context, state, code string) error {
	s.mu.Lock()
	e, ok := s.states[state]
	delete(s.states, state)
	s.mu.Unlock()

	if !ok || s.now().After(e.expiresAt) {
		return apperr.New(apperr.BadInput, "unknown or expired linking state")
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return apperr.Wrap(apperr.DataUnavailable, "token exchange", err)
	}

	siteAccount := token.Extra("account_id")
	account, _ := siteAccount.(string)
	if account == "" {
		account = e.userID
	}

	if err := s.db.UpsertLinkedAccount(e.userID, account, token.AccessToken); err != nil {
		return apperr.Wrap(apperr.Internal, "persist linked account", err)
	}

	msg, err := card.Render(card.ErrorCard, map[string]any{
		"message": "✅ 帳號綁定完成！",
		"advice":  "聊天室建立的行程與集合現在會同步到網站。",
	})
	if err != nil {
		return err
	}
	if err := s.sender.Push(ctx, e.userID, []messaging_api.MessageInterface{msg}); err != nil {
		// The link itself succeeded; the confirmation is best-effort.
		log.Printf("Linking: success push failed for %s: %v", e.userID, err)
	}
	return nil
}
