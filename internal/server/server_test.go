package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weichenlin/tripmate/internal/cache"
	"github.com/weichenlin/tripmate/internal/database"
	"github.com/weichenlin/tripmate/internal/dispatcher"
	"github.com/weichenlin/tripmate/internal/gateway"
	"github.com/weichenlin/tripmate/internal/intent"
	"github.com/weichenlin/tripmate/internal/session"
	"github.com/weichenlin/tripmate/internal/testutil"
)

const testChannelSecret = "test-channel-secret"

func newTestServer(t *testing.T) (*Server, *testutil.MockSender) {
	t.Helper()

	db := database.NewTestDB(t)
	c := cache.New(cache.DefaultOptions())
	gw := gateway.New(db, c, "")
	sender := testutil.NewMockSender()
	sessions := session.NewStore()
	t.Cleanup(sessions.Stop)
	resolver := intent.NewResolver(intent.DefaultTable("https://tripmate.example"))
	d := dispatcher.New(db, gw, resolver, sender, sessions, nil)

	s := New(ServerConfig{
		Dispatcher:    d,
		Cache:         c,
		ChannelSecret: testChannelSecret,
		Port:          0,
	})
	return s, sender
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testChannelSecret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookBody(eventJSON string) string {
	return `{"destination":"bot","events":[` + eventJSON + `]}`
}

const textEventJSON = `{
	"type": "message",
	"mode": "active",
	"timestamp": 1756700000000,
	"webhookEventId": "evt-1",
	"deliveryContext": {"isRedelivery": false},
	"replyToken": "reply-token",
	"source": {"type": "user", "userId": "user-1"},
	"message": {"type": "text", "id": "msg-1", "quoteToken": "q", "text": "排行榜"}
}`

func TestHealthCheck(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealthCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Contains(t, payload, "cache")
}

func TestWebhookDispatchesTextMessage(t *testing.T) {
	s, sender := newTestServer(t)

	body := webhookBody(textEventJSON)
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set("x-line-signature", sign(body))
	rec := httptest.NewRecorder()
	s.handleWebhook(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "reply", sent[0].Kind)
	assert.Equal(t, "reply-token", sent[0].Target)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	s, sender := newTestServer(t)

	body := webhookBody(textEventJSON)
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set("x-line-signature", "bm90LXRoZS1yaWdodC1zaWduYXR1cmU=")
	rec := httptest.NewRecorder()
	s.handleWebhook(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, sender.Sent())
}

func TestWebhookIgnoresNonTextMessages(t *testing.T) {
	s, sender := newTestServer(t)

	sticker := `{
		"type": "message",
		"mode": "active",
		"timestamp": 1756700000000,
		"webhookEventId": "evt-2",
		"deliveryContext": {"isRedelivery": false},
		"replyToken": "reply-token",
		"source": {"type": "user", "userId": "user-1"},
		"message": {"type": "sticker", "id": "msg-2", "packageId": "1", "stickerId": "2"}
	}`
	body := webhookBody(sticker)
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set("x-line-signature", sign(body))
	rec := httptest.NewRecorder()
	s.handleWebhook(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sender.Sent())
}

func TestLinkingCallbackRequiresParams(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/linking/callback", nil)
	rec := httptest.NewRecorder()
	s.handleLinkingCallback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
