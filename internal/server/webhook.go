package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/weichenlin/tripmate/internal/dispatcher"
)

// handleWebhook verifies and unpacks a LINE webhook call, then hands the
// validated events to the dispatcher. LINE expects a fast 200; event
// processing happens before returning but each event is independent.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	cb, err := webhook.ParseRequest(s.channelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	for _, event := range cb.Events {
		switch e := event.(type) {
		case webhook.MessageEvent:
			textMsg, ok := e.Message.(webhook.TextMessageContent)
			if !ok {
				continue
			}
			s.dispatcher.HandleText(r.Context(), dispatcher.TextEvent{
				ReplyToken: e.ReplyToken,
				UserID:     userID(e.Source),
				Text:       textMsg.Text,
			})
		case webhook.PostbackEvent:
			s.dispatcher.HandlePostback(r.Context(), dispatcher.PostbackEvent{
				ReplyToken: e.ReplyToken,
				UserID:     userID(e.Source),
				Data:       e.Postback.Data,
			})
		default:
			log.Printf("Webhook: ignoring event type %T", event)
		}
	}

	w.WriteHeader(http.StatusOK)
}

func userID(source webhook.SourceInterface) string {
	if u, ok := source.(webhook.UserSource); ok {
		return u.UserId
	}
	return ""
}
