package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weichenlin/tripmate/internal/cache"
	"github.com/weichenlin/tripmate/internal/database"
	"github.com/weichenlin/tripmate/internal/gateway"
	"github.com/weichenlin/tripmate/internal/intent"
	"github.com/weichenlin/tripmate/internal/session"
	"github.com/weichenlin/tripmate/internal/testutil"
)

var taipei = time.FixedZone("CST", 8*60*60)

func newTestDispatcher(t *testing.T) (*Dispatcher, *database.DB, *testutil.MockSender) {
	t.Helper()

	db := database.NewTestDB(t)
	c := cache.New(cache.DefaultOptions())
	gw := gateway.New(db, c, "")
	sender := testutil.NewMockSender()
	sessions := session.NewStore()
	t.Cleanup(sessions.Stop)
	resolver := intent.NewResolver(intent.DefaultTable("https://tripmate.example"))

	d := New(db, gw, resolver, sender, sessions, nil)
	d.now = func() time.Time { return time.Date(2026, 9, 1, 10, 0, 0, 0, taipei) }
	return d, db, sender
}

func textEvent(text string) TextEvent {
	return TextEvent{ReplyToken: "reply-token", UserID: "user-1", Text: text}
}

func postbackEvent(data string) PostbackEvent {
	return PostbackEvent{ReplyToken: "reply-token", UserID: "user-1", Data: data}
}

// replyJSON marshals the single reply of the most recent send. The SDK
// types HTML-escape ampersands inside their own MarshalJSON no matter
// what the outer encoder is told, so the document is decoded and
// re-encoded with escaping off to keep postback data strings greppable.
func replyJSON(t *testing.T, sender *testutil.MockSender) string {
	t.Helper()
	sent := sender.Sent()
	require.NotEmpty(t, sent, "expected a reply to be sent")
	last := sent[len(sent)-1]
	require.Equal(t, "reply", last.Kind)
	require.Len(t, last.Messages, 1)

	raw, err := json.Marshal(last.Messages[0])
	require.NoError(t, err)

	var doc any
	require.NoError(t, json.Unmarshal(raw, &doc))
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(doc))
	return buf.String()
}

func TestHandleTextMeetingSet(t *testing.T) {
	d, db, sender := newTestDispatcher(t)

	d.HandleText(context.Background(), textEvent("下午2:35 淺草寺集合"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "集合提醒已設定")
	assert.Contains(t, body, "⏰ 14:25")
	assert.Contains(t, body, "🚨 14:30")
	assert.Contains(t, body, "🎯 14:35")

	meetings, err := db.ListActiveMeetings("user-1")
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, "14:35", meetings[0].TimeOfDay)
	assert.Equal(t, "淺草寺", meetings[0].Place)
	assert.Equal(t, "09月01日 淺草寺集合", meetings[0].DisplayName)
}

func TestHandleTextMeetingMissingPlace(t *testing.T) {
	d, db, sender := newTestDispatcher(t)

	d.HandleText(context.Background(), textEvent("下午3點集合"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "看不出集合地點")

	meetings, err := db.ListActiveMeetings("user-1")
	require.NoError(t, err)
	assert.Empty(t, meetings)
}

func TestHandleTextMeetingMissingTime(t *testing.T) {
	d, _, sender := newTestDispatcher(t)

	d.HandleText(context.Background(), textEvent("淺草寺集合"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "看不出集合時間")
}

func TestHandleTextMeetingKeywordBeatsVerb(t *testing.T) {
	d, _, sender := newTestDispatcher(t)

	// No parseable time or place, so the keyword intent takes over.
	d.HandleText(context.Background(), textEvent("集合時鐘"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "⏰ 集合時鐘")
	assert.Contains(t, body, "https://tripmate.example/meetings")
}

func TestHandleTextMeetingVerbWithoutDetails(t *testing.T) {
	d, _, sender := newTestDispatcher(t)

	d.HandleText(context.Background(), textEvent("集合"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "想設定集合提醒嗎")
}

func TestHandleTextRankDetail(t *testing.T) {
	d, _, sender := newTestDispatcher(t)

	d.HandleText(context.Background(), textEvent("第一名"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "第1名人氣行程")
	assert.Contains(t, body, "東京經典五日遊")
	assert.Contains(t, body, "97.4")
	assert.Contains(t, body, "action=trip_detail&id=1")
}

func TestHandleTextRankTripDetail(t *testing.T) {
	d, _, sender := newTestDispatcher(t)

	d.HandleText(context.Background(), textEvent("第一名詳細行程"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "東京經典五日遊")
	assert.Contains(t, body, "淺草寺")
	assert.Contains(t, body, "2026-10-01 09:00-11:30")
}

func TestHandleTextTripListByLocation(t *testing.T) {
	d, _, sender := newTestDispatcher(t)

	d.HandleText(context.Background(), textEvent("東京"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "東京經典五日遊")
	assert.Contains(t, body, "東京近郊溫泉兩日")
	assert.Contains(t, body, "action=trip_detail&id=1")
}

func TestHandleTextTripListNoMatch(t *testing.T) {
	d, _, sender := newTestDispatcher(t)

	d.HandleText(context.Background(), textEvent("奈良"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "找不到 奈良 的行程")
}

func TestHandleTextFeatureCard(t *testing.T) {
	d, _, sender := newTestDispatcher(t)

	d.HandleText(context.Background(), textEvent("排行榜"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "人氣行程排行榜")
	assert.Contains(t, body, "https://tripmate.example/leaderboard")
}

func TestHandleTextChitChatIsSilent(t *testing.T) {
	d, _, sender := newTestDispatcher(t)

	d.HandleText(context.Background(), textEvent("隨便說說"))

	assert.Empty(t, sender.Sent(), "unmatched chit-chat must not be answered")
}

func TestHandlePostbackTripDetail(t *testing.T) {
	d, _, sender := newTestDispatcher(t)

	d.HandlePostback(context.Background(), postbackEvent("action=trip_detail&id=2"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "京都楓葉慢旅")
	assert.Contains(t, body, "清水寺")
}

func TestHandlePostbackTripDetailMissing(t *testing.T) {
	d, _, sender := newTestDispatcher(t)

	d.HandlePostback(context.Background(), postbackEvent("action=trip_detail&id=99999"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "這個行程不存在了")
}

func TestHandlePostbackViewMeetings(t *testing.T) {
	d, db, sender := newTestDispatcher(t)

	created := time.Date(2026, 9, 1, 10, 0, 0, 0, taipei)
	m, err := db.CreateMeeting("user-1", "14:35", "淺草寺", "", created)
	require.NoError(t, err)

	d.HandlePostback(context.Background(), postbackEvent("action=view_meetings"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "09月01日 淺草寺集合")
	assert.Contains(t, body, fmt.Sprintf("action=cancel_meeting&id=%d", m.ID))
}

func TestHandlePostbackCancelMeeting(t *testing.T) {
	d, db, sender := newTestDispatcher(t)

	created := time.Date(2026, 9, 1, 10, 0, 0, 0, taipei)
	m, err := db.CreateMeeting("user-1", "14:35", "淺草寺", "", created)
	require.NoError(t, err)

	d.HandlePostback(context.Background(), postbackEvent("action=cancel_meeting&id=1"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "集合已取消")

	got, err := db.GetMeeting(m.ID)
	require.NoError(t, err)
	assert.Equal(t, database.MeetingStatusCancelled, got.Status)

	// Nothing is due for a cancelled meeting, even inside the window.
	due, err := db.DueReminders(time.Date(2026, 9, 1, 14, 25, 0, 0, taipei))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestHandlePostbackCancelMeetingNotOwned(t *testing.T) {
	d, db, sender := newTestDispatcher(t)

	created := time.Date(2026, 9, 1, 10, 0, 0, 0, taipei)
	_, err := db.CreateMeeting("user-2", "14:35", "淺草寺", "", created)
	require.NoError(t, err)

	d.HandlePostback(context.Background(), postbackEvent("action=cancel_meeting&id=1"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "這不是你建立的集合")
}

func TestHandlePostbackLockerNextWithoutSession(t *testing.T) {
	d, _, sender := newTestDispatcher(t)

	d.HandlePostback(context.Background(), postbackEvent("action=locker_next"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "置物櫃查詢已過期")
}

func TestHandlePostbackLockerNextWrapsAround(t *testing.T) {
	d, _, sender := newTestDispatcher(t)

	d.sessions.Put("user-1", session.LockerSession{
		Lockers: []gateway.Locker{
			{Name: "上野站置物櫃", Address: "台東區", Available: 3, DistanceKM: 0.2},
			{Name: "淺草站置物櫃", Address: "台東區", Available: 1, DistanceKM: 0.6},
		},
		Index: 1,
	})

	d.HandlePostback(context.Background(), postbackEvent("action=locker_next"))

	body := replyJSON(t, sender)
	assert.Contains(t, body, "上野站置物櫃")
	assert.Contains(t, body, "(1/2)")
}

func TestHandlePostbackUnknownActionIsSilent(t *testing.T) {
	d, _, sender := newTestDispatcher(t)

	d.HandlePostback(context.Background(), postbackEvent("action=mystery"))

	assert.Empty(t, sender.Sent())
}
