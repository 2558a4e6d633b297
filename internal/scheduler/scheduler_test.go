package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weichenlin/tripmate/internal/database"
	"github.com/weichenlin/tripmate/internal/testutil"
)

var taipei = time.FixedZone("CST", 8*60*60)

func newTestScheduler(t *testing.T) (*Scheduler, *database.DB, *testutil.MockSender, *time.Time) {
	t.Helper()
	db := database.NewTestDB(t)
	sender := testutil.NewMockSender()
	s := New(db, sender, time.Minute)
	t.Cleanup(s.Stop)

	now := time.Date(2026, 9, 1, 8, 0, 0, 0, taipei)
	s.now = func() time.Time { return now }
	return s, db, sender, &now
}

func messageText(t *testing.T, sent testutil.SentMessage) string {
	t.Helper()
	require.Len(t, sent.Messages, 1)
	text, ok := sent.Messages[0].(*messaging_api.TextMessage)
	require.True(t, ok)
	return text.Text
}

func TestSweepFiresOnceAndFlipsFlag(t *testing.T) {
	s, db, sender, now := newTestScheduler(t)

	m, err := db.CreateMeeting("user-1", "14:30", "淺草寺", "", *now)
	require.NoError(t, err)

	*now = time.Date(2026, 9, 1, 14, 20, 0, 0, taipei)
	s.sweep()

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "push", sent[0].Kind)
	assert.Equal(t, "user-1", sent[0].Target)
	assert.Equal(t, "⏰ 還有 10 分鐘就要在 淺草寺 集合了！", messageText(t, sent[0]))

	got, err := db.GetMeeting(m.ID)
	require.NoError(t, err)
	assert.True(t, got.SentMinus10)
	assert.False(t, got.SentMinus5)
	assert.False(t, got.SentOnTime)
}

func TestSweepDoesNotRefire(t *testing.T) {
	s, db, sender, now := newTestScheduler(t)

	_, err := db.CreateMeeting("user-1", "14:30", "淺草寺", "", *now)
	require.NoError(t, err)

	*now = time.Date(2026, 9, 1, 14, 20, 0, 0, taipei)
	s.sweep()
	// A second sweep inside the same window finds the flag already up.
	*now = time.Date(2026, 9, 1, 14, 20, 30, 0, taipei)
	s.sweep()

	assert.Len(t, sender.Sent(), 1)
}

func TestSweepFiresEachOffsetSeparately(t *testing.T) {
	s, db, sender, now := newTestScheduler(t)

	_, err := db.CreateMeeting("user-1", "14:30", "淺草寺", "", *now)
	require.NoError(t, err)

	*now = time.Date(2026, 9, 1, 14, 20, 0, 0, taipei)
	s.sweep()
	*now = time.Date(2026, 9, 1, 14, 25, 0, 0, taipei)
	s.sweep()
	*now = time.Date(2026, 9, 1, 14, 30, 0, 0, taipei)
	s.sweep()

	sent := sender.Sent()
	require.Len(t, sent, 3)
	assert.Equal(t, "⏰ 還有 10 分鐘就要在 淺草寺 集合了！", messageText(t, sent[0]))
	assert.Equal(t, "🚨 還有 5 分鐘就要在 淺草寺 集合了！", messageText(t, sent[1]))
	assert.Equal(t, "🎯 集合時間到了！請準時到達 淺草寺！", messageText(t, sent[2]))
}

func TestSweepRetriesAfterPushFailure(t *testing.T) {
	s, db, sender, now := newTestScheduler(t)

	m, err := db.CreateMeeting("user-1", "14:30", "淺草寺", "", *now)
	require.NoError(t, err)

	sender.FailWith(errors.New("line is down"))
	*now = time.Date(2026, 9, 1, 14, 20, 0, 0, taipei)
	s.sweep()

	got, err := db.GetMeeting(m.ID)
	require.NoError(t, err)
	assert.False(t, got.SentMinus10, "flag must stay down when the push failed")
	assert.Empty(t, sender.Sent())

	// Next tick, still inside the window, delivers and flips the flag.
	sender.FailWith(nil)
	*now = time.Date(2026, 9, 1, 14, 20, 45, 0, taipei)
	s.sweep()

	got, err = db.GetMeeting(m.ID)
	require.NoError(t, err)
	assert.True(t, got.SentMinus10)
	assert.Len(t, sender.Sent(), 1)
}

func TestSweepSkipsCancelledMeeting(t *testing.T) {
	s, db, sender, now := newTestScheduler(t)

	m, err := db.CreateMeeting("user-1", "14:30", "淺草寺", "", *now)
	require.NoError(t, err)
	require.NoError(t, db.CancelMeeting(m.ID, "user-1"))

	for _, at := range []time.Time{
		time.Date(2026, 9, 1, 14, 20, 0, 0, taipei),
		time.Date(2026, 9, 1, 14, 25, 0, 0, taipei),
		time.Date(2026, 9, 1, 14, 30, 0, 0, taipei),
	} {
		*now = at
		s.sweep()
	}

	assert.Empty(t, sender.Sent())
}

func TestSweepOutsideWindowDropsSilently(t *testing.T) {
	s, db, sender, now := newTestScheduler(t)

	_, err := db.CreateMeeting("user-1", "14:30", "淺草寺", "", *now)
	require.NoError(t, err)

	// The process was down over the whole minus-10 window.
	*now = time.Date(2026, 9, 1, 14, 23, 0, 0, taipei)
	s.sweep()

	assert.Empty(t, sender.Sent(), "a missed window is dropped, not delivered late")
}

func TestNewDefaultsInterval(t *testing.T) {
	db := database.NewTestDB(t)
	s := New(db, testutil.NewMockSender(), 0)
	t.Cleanup(s.Stop)
	assert.Equal(t, defaultInterval, s.interval)
}
