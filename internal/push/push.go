// Package push is the single outbound surface to the chat platform:
// a one-shot reply bound to an inbound event, and an unbounded push
// addressed by user id. There is no queue; failures go back to the
// caller.
package push

import (
	"context"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/weichenlin/tripmate/internal/apperr"
)

const defaultTimeout = 8 * time.Second

// Sender sends a reply or a push to a user.
type Sender interface {
	Reply(ctx context.Context, replyToken string, msgs []messaging_api.MessageInterface) error
	Push(ctx context.Context, userID string, msgs []messaging_api.MessageInterface) error
}

// LineSender is the LINE Messaging API implementation.
type LineSender struct {
	client *messaging_api.MessagingApiAPI
}

func NewLineSender(channelToken string) (*LineSender, error) {
	client, err := messaging_api.NewMessagingApiAPI(
		channelToken,
		messaging_api.WithHTTPClient(&http.Client{Timeout: defaultTimeout}),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "create messaging API client", err)
	}
	return &LineSender{client: client}, nil
}

func (s *LineSender) Reply(ctx context.Context, replyToken string, msgs []messaging_api.MessageInterface) error {
	if err := ctx.Err(); err != nil {
		return apperr.Wrap(apperr.PushFailed, "reply", err)
	}
	_, err := s.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   msgs,
	})
	if err != nil {
		return apperr.Wrap(apperr.PushFailed, "reply", err)
	}
	return nil
}

func (s *LineSender) Push(ctx context.Context, userID string, msgs []messaging_api.MessageInterface) error {
	if err := ctx.Err(); err != nil {
		return apperr.Wrap(apperr.PushFailed, "push", err)
	}
	_, err := s.client.PushMessage(&messaging_api.PushMessageRequest{
		To:       userID,
		Messages: msgs,
	}, "")
	if err != nil {
		return apperr.Wrap(apperr.PushFailed, "push", err)
	}
	return nil
}
