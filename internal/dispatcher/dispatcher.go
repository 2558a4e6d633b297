// Package dispatcher is the top-level message handler: it classifies
// inbound text, pulls whatever data the intent needs, renders the reply
// card, and sends exactly one reply per event. Callback (postback)
// events run through a separate router.
package dispatcher

import (
	"context"
	"log"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/weichenlin/tripmate/internal/apperr"
	"github.com/weichenlin/tripmate/internal/card"
	"github.com/weichenlin/tripmate/internal/database"
	"github.com/weichenlin/tripmate/internal/gateway"
	"github.com/weichenlin/tripmate/internal/intent"
	"github.com/weichenlin/tripmate/internal/linking"
	"github.com/weichenlin/tripmate/internal/push"
	"github.com/weichenlin/tripmate/internal/session"
)

const tripListLimit = 5

// TextEvent is a validated inbound text message.
type TextEvent struct {
	ReplyToken string
	UserID     string
	Text       string
}

// PostbackEvent is a validated inbound button press.
type PostbackEvent struct {
	ReplyToken string
	UserID     string
	Data       string
}

type Dispatcher struct {
	db       *database.DB
	gw       *gateway.Gateway
	resolver *intent.Resolver
	sender   push.Sender
	sessions *session.Store
	linking  *linking.Service

	now func() time.Time
}

func New(db *database.DB, gw *gateway.Gateway, resolver *intent.Resolver, sender push.Sender, sessions *session.Store, link *linking.Service) *Dispatcher {
	return &Dispatcher{
		db:       db,
		gw:       gw,
		resolver: resolver,
		sender:   sender,
		sessions: sessions,
		linking:  link,
		now:      time.Now,
	}
}

// reply sends the single outbound reply for this event. Render or send
// problems are logged; internal failures drop the reply rather than
// crash the handler.
func (d *Dispatcher) reply(ctx context.Context, replyToken string, msg messaging_api.MessageInterface) {
	if err := d.sender.Reply(ctx, replyToken, []messaging_api.MessageInterface{msg}); err != nil {
		log.Printf("Dispatcher: reply failed: %v", err)
	}
}

// replyCard renders and replies; a render failure degrades to silence.
func (d *Dispatcher) replyCard(ctx context.Context, replyToken string, id card.TemplateID, bag map[string]any) {
	msg, err := card.Render(id, bag)
	if err != nil {
		log.Printf("Dispatcher: render %s failed: %v", id, err)
		return
	}
	d.reply(ctx, replyToken, msg)
}

// replyErrorFor maps an error kind to the user-facing advice card of the
// reply policy. Internal errors reply nothing.
func (d *Dispatcher) replyErrorFor(ctx context.Context, replyToken string, err error, notFoundMsg string) {
	switch apperr.KindOf(err) {
	case apperr.NotFound:
		d.replyCard(ctx, replyToken, card.ErrorCard, map[string]any{
			"message": notFoundMsg,
			"advice":  "換個關鍵字試試看。",
		})
	case apperr.DataUnavailable, apperr.Timeout:
		d.replyCard(ctx, replyToken, card.ErrorCard, map[string]any{
			"message": "資料暫時拿不到",
			"advice":  "請稍後再試一次。",
		})
	default:
		log.Printf("Dispatcher: internal error: %v", err)
	}
}
