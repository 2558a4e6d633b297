package dispatcher

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strconv"

	"github.com/weichenlin/tripmate/internal/card"
	"github.com/weichenlin/tripmate/internal/database"
	"github.com/weichenlin/tripmate/internal/gateway"
	"github.com/weichenlin/tripmate/internal/session"
)

const lockerPageSize = 9

// HandlePostback routes one button press. Postback data is a query
// string with an action key, e.g. "action=trip_detail&id=3".
func (d *Dispatcher) HandlePostback(ctx context.Context, ev PostbackEvent) {
	values, err := url.ParseQuery(ev.Data)
	if err != nil {
		log.Printf("Dispatcher: bad postback data %q: %v", ev.Data, err)
		return
	}

	switch values.Get("action") {
	case "trip_detail":
		d.postbackTripDetail(ctx, ev, values.Get("id"))
	case "view_meetings":
		d.postbackViewMeetings(ctx, ev)
	case "cancel_meeting":
		d.postbackCancelMeeting(ctx, ev, values.Get("id"))
	case "locker_near":
		d.postbackLockerNear(ctx, ev, values)
	case "locker_next":
		d.postbackLockerNext(ctx, ev)
	case "help":
		d.replyCard(ctx, ev.ReplyToken, card.Help, map[string]any{})
	default:
		log.Printf("Dispatcher: unknown postback action in %q", ev.Data)
	}
}

func (d *Dispatcher) postbackTripDetail(ctx context.Context, ev PostbackEvent, idStr string) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		log.Printf("Dispatcher: bad trip id %q", idStr)
		return
	}

	rec, err := d.gw.TripDetail(ctx, id)
	if err != nil {
		d.replyErrorFor(ctx, ev.ReplyToken, err, "這個行程不存在了")
		return
	}
	d.replyTripDetailRecord(ctx, ev.ReplyToken, rec)
}

func (d *Dispatcher) postbackViewMeetings(ctx context.Context, ev PostbackEvent) {
	meetings, err := d.db.ListActiveMeetings(ev.UserID)
	if err != nil {
		log.Printf("Dispatcher: list meetings failed: %v", err)
		d.replyErrorFor(ctx, ev.ReplyToken, err, "")
		return
	}

	rows := make([]card.MeetingRow, 0, len(meetings))
	for _, m := range meetings {
		rows = append(rows, card.MeetingRow{
			ID:    m.ID,
			Name:  m.DisplayName,
			Time:  m.TimeOfDay,
			Place: m.Place,
		})
	}
	d.replyCard(ctx, ev.ReplyToken, card.MeetingList, map[string]any{"meetings": rows})
}

func (d *Dispatcher) postbackCancelMeeting(ctx context.Context, ev PostbackEvent, idStr string) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		log.Printf("Dispatcher: bad meeting id %q", idStr)
		return
	}

	err = d.db.CancelMeeting(id, ev.UserID)
	switch {
	case err == nil:
		d.replyCard(ctx, ev.ReplyToken, card.ErrorCard, map[string]any{
			"message": "✅ 集合已取消",
			"advice":  "提醒不會再送出。",
		})
	case errors.Is(err, database.ErrNotOwned):
		d.replyCard(ctx, ev.ReplyToken, card.ErrorCard, map[string]any{
			"message": "這不是你建立的集合",
			"advice":  "只有建立者可以取消。",
		})
	case errors.Is(err, database.ErrNotFound):
		d.replyCard(ctx, ev.ReplyToken, card.ErrorCard, map[string]any{
			"message": "找不到這個集合",
			"advice":  "它可能已經被取消了。",
		})
	default:
		log.Printf("Dispatcher: cancel meeting failed: %v", err)
	}
}

// postbackLockerNear starts a locker carousel session around a location
// shared from a feature menu ("action=locker_near&lat=..&lng=..").
func (d *Dispatcher) postbackLockerNear(ctx context.Context, ev PostbackEvent, values url.Values) {
	lat, errLat := strconv.ParseFloat(values.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(values.Get("lng"), 64)
	if errLat != nil || errLng != nil {
		log.Printf("Dispatcher: bad locker coordinates in %q", ev.Data)
		return
	}

	lockers, err := d.gw.LockersNear(ctx, lat, lng, lockerPageSize)
	if err != nil {
		d.replyErrorFor(ctx, ev.ReplyToken, err, "附近沒有置物櫃資料")
		return
	}
	if len(lockers) == 0 {
		d.replyCard(ctx, ev.ReplyToken, card.ErrorCard, map[string]any{
			"message": "附近沒有置物櫃資料",
			"advice":  "換個地點試試看。",
		})
		return
	}

	d.sessions.Put(ev.UserID, session.LockerSession{Lockers: lockers, Index: 0})
	d.replyLockerPage(ctx, ev.ReplyToken, lockers, 0)
}

// postbackLockerNext advances the user's carousel; past the end it wraps
// back to the first page.
func (d *Dispatcher) postbackLockerNext(ctx context.Context, ev PostbackEvent) {
	s, ok := d.sessions.Get(ev.UserID)
	if !ok || len(s.Lockers) == 0 {
		d.replyCard(ctx, ev.ReplyToken, card.ErrorCard, map[string]any{
			"message": "置物櫃查詢已過期",
			"advice":  "請重新查詢附近置物櫃。",
		})
		return
	}

	s.Index = (s.Index + 1) % len(s.Lockers)
	d.sessions.Put(ev.UserID, s)
	d.replyLockerPage(ctx, ev.ReplyToken, s.Lockers, s.Index)
}

func (d *Dispatcher) replyLockerPage(ctx context.Context, replyToken string, lockers []gateway.Locker, index int) {
	l := lockers[index]
	d.replyCard(ctx, replyToken, card.LockerPage, map[string]any{
		"locker": card.LockerInfo{
			Name:       l.Name,
			Address:    l.Address,
			Available:  l.Available,
			DistanceKM: l.DistanceKM,
		},
		"index": index,
		"total": len(lockers),
	})
}
