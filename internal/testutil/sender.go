package testutil

import (
	"context"
	"sync"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// SentMessage is one recorded Reply or Push call.
type SentMessage struct {
	Kind     string // "reply" or "push"
	Target   string // reply token or user id
	Messages []messaging_api.MessageInterface
}

// MockSender records outbound sends and can be told to fail.
type MockSender struct {
	mu      sync.Mutex
	sent    []SentMessage
	failErr error
}

func NewMockSender() *MockSender {
	return &MockSender{}
}

// FailWith makes every subsequent send fail with err (nil restores success).
func (m *MockSender) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

func (m *MockSender) Reply(_ context.Context, replyToken string, msgs []messaging_api.MessageInterface) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.sent = append(m.sent, SentMessage{Kind: "reply", Target: replyToken, Messages: msgs})
	return nil
}

func (m *MockSender) Push(_ context.Context, userID string, msgs []messaging_api.MessageInterface) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.sent = append(m.sent, SentMessage{Kind: "push", Target: userID, Messages: msgs})
	return nil
}

// Sent returns a copy of everything recorded so far.
func (m *MockSender) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// Reset clears the recording.
func (m *MockSender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}
