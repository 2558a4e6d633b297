package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/weichenlin/tripmate/internal/card"
	"github.com/weichenlin/tripmate/internal/database"
	"github.com/weichenlin/tripmate/internal/intent"
	"github.com/weichenlin/tripmate/internal/textparse"
)

// HandleText routes one inbound text message. Unmatched chit-chat is
// dropped without a reply.
func (d *Dispatcher) HandleText(ctx context.Context, ev TextEvent) {
	if intent.HasMeetingVerb(ev.Text) {
		// Meeting sentences win over keyword intents only when no keyword
		// matches; the resolver already encodes that, but a sentence that
		// parses to time+place is a meeting regardless.
		if d.tryMeetingSet(ctx, ev) {
			return
		}
	}

	if it := d.resolver.Resolve(ev.Text); it != nil {
		d.dispatchIntent(ctx, ev, it)
		return
	}

	// No keyword, no meeting verb: stay silent.
}

// tryMeetingSet handles the meeting-set path. It returns false only when
// the text carries a meeting verb but neither time nor place parses and a
// keyword intent should get its chance instead.
func (d *Dispatcher) tryMeetingSet(ctx context.Context, ev TextEvent) bool {
	timeOfDay, hasTime := textparse.ExtractTime(ev.Text)
	place, hasPlace := textparse.ExtractPlace(ev.Text)

	if !hasTime && !hasPlace {
		return false
	}

	// Without a time the "place" may just be a feature keyword that
	// happens to contain a meeting verb (集合時鐘). A keyword intent
	// outranks that guess; only a real parse holds the meeting path.
	if !hasTime {
		if it := d.resolver.Resolve(ev.Text); it != nil && it.ID != intent.MeetingSetID {
			return false
		}
	}

	if !hasTime || !hasPlace {
		missing := "集合時間"
		example := "例如：「下午3點 淺草寺集合」"
		if !hasPlace {
			missing = "集合地點"
		}
		d.replyCard(ctx, ev.ReplyToken, card.ErrorCard, map[string]any{
			"message": fmt.Sprintf("看不出%s", missing),
			"advice":  example,
		})
		return true
	}

	m, err := d.db.CreateMeeting(ev.UserID, timeOfDay, place, "", d.now())
	if err != nil {
		if errors.Is(err, database.ErrBadTime) {
			d.replyCard(ctx, ev.ReplyToken, card.ErrorCard, map[string]any{
				"message": "集合時間格式不對",
				"advice":  "例如:「下午3點 淺草寺集合」",
			})
			return true
		}
		log.Printf("Dispatcher: create meeting failed: %v", err)
		return true
	}

	d.replyCard(ctx, ev.ReplyToken, card.MeetingSuccess, map[string]any{
		"name":     m.DisplayName,
		"time":     m.TimeOfDay,
		"place":    m.Place,
		"previews": reminderPreviews(m.TimeOfDay),
	})
	return true
}

// reminderPreviews returns the three reminder times (t-10, t-5, t).
func reminderPreviews(timeOfDay string) []string {
	t, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return []string{timeOfDay, timeOfDay, timeOfDay}
	}
	return []string{
		t.Add(-10 * time.Minute).Format("15:04"),
		t.Add(-5 * time.Minute).Format("15:04"),
		t.Format("15:04"),
	}
}

func (d *Dispatcher) dispatchIntent(ctx context.Context, ev TextEvent, it *intent.Intent) {
	switch it.Template {
	case card.FeatureCard:
		d.replyFeatureCard(ctx, ev, it)
	case card.RankDetail:
		d.replyRankDetail(ctx, ev, it.Rank)
	case card.TripDetail:
		d.replyRankTripDetail(ctx, ev, it.Rank)
	case card.TripList:
		d.replyTripList(ctx, ev, it.Place)
	case card.Help:
		d.replyCard(ctx, ev.ReplyToken, card.Help, map[string]any{})
	default:
		if it.ID == intent.MeetingSetID {
			// Meeting verb but nothing parseable: ask for both halves.
			d.replyCard(ctx, ev.ReplyToken, card.ErrorCard, map[string]any{
				"message": "想設定集合提醒嗎？",
				"advice":  "告訴我時間和地點，例如:「下午3點 淺草寺集合」",
			})
			return
		}
		log.Printf("Dispatcher: intent %s has no template route", it.ID)
	}
}

func (d *Dispatcher) replyFeatureCard(ctx context.Context, ev TextEvent, it *intent.Intent) {
	ctaURI := it.CTAURI
	if it.ID == "account_binding" && d.linking != nil && d.linking.Configured() {
		if u, err := d.linking.AuthURL(ev.UserID); err == nil {
			ctaURI = u
		}
	}
	d.replyCard(ctx, ev.ReplyToken, card.FeatureCard, map[string]any{
		"title":       it.Title,
		"description": it.Description,
		"color":       it.Color,
		"cta_label":   it.CTALabel,
		"cta_uri":     ctaURI,
	})
}

func (d *Dispatcher) replyRankDetail(ctx context.Context, ev TextEvent, rank int) {
	rec, err := d.gw.RankDetail(ctx, rank)
	if err != nil {
		d.replyErrorFor(ctx, ev.ReplyToken, err, fmt.Sprintf("第%d名目前沒有行程", rank))
		return
	}

	ranked, err := d.gw.TopRanked(ctx, rank)
	popularity := ""
	if err == nil && len(ranked) >= rank {
		popularity = fmt.Sprintf("%.1f", ranked[rank-1].PopularityScore)
	}

	d.replyCard(ctx, ev.ReplyToken, card.RankDetail, map[string]any{
		"rank":        rank,
		"title":       rec.Title,
		"area":        rec.Area,
		"popularity":  popularity,
		"description": rec.Description,
		"trip_id":     rec.TripID,
	})
}

func (d *Dispatcher) replyRankTripDetail(ctx context.Context, ev TextEvent, rank int) {
	rec, err := d.gw.RankDetail(ctx, rank)
	if err != nil {
		d.replyErrorFor(ctx, ev.ReplyToken, err, fmt.Sprintf("第%d名目前沒有行程", rank))
		return
	}
	d.replyTripDetailRecord(ctx, ev.ReplyToken, rec)
}

func (d *Dispatcher) replyTripDetailRecord(ctx context.Context, replyToken string, rec *database.TripRecord) {
	days := make([]card.TripDay, 0, len(rec.Days))
	for _, r := range rec.Days {
		days = append(days, card.TripDay{
			Date:        r.Date,
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			Location:    r.Location,
			Description: r.Description,
		})
	}
	d.replyCard(ctx, replyToken, card.TripDetail, map[string]any{
		"title":       rec.Title,
		"area":        rec.Area,
		"description": rec.Description,
		"days":        days,
	})
}

func (d *Dispatcher) replyTripList(ctx context.Context, ev TextEvent, place string) {
	trips, err := d.gw.TripsByLocation(ctx, place, tripListLimit)
	if err != nil {
		d.replyErrorFor(ctx, ev.ReplyToken, err, fmt.Sprintf("找不到 %s 的行程", place))
		return
	}
	if len(trips) == 0 {
		d.replyCard(ctx, ev.ReplyToken, card.ErrorCard, map[string]any{
			"message": fmt.Sprintf("找不到 %s 的行程", place),
			"advice":  "換個城市試試看。",
		})
		return
	}

	rows := make([]card.TripRow, 0, len(trips))
	for _, t := range trips {
		rows = append(rows, card.TripRow{
			ID:    t.TripID,
			Title: t.Title,
			Area:  t.Area,
			Dates: fmt.Sprintf("%s ~ %s", t.StartDate, t.EndDate),
		})
	}
	d.replyCard(ctx, ev.ReplyToken, card.TripList, map[string]any{
		"place": place,
		"trips": rows,
	})
}
