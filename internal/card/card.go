// Package card renders the structured reply documents the bot sends back
// to LINE. Templates are data: each one declares the keys its data bag
// must carry, and Render fills placeholders into a Flex container.
// Rendering is pure; the same (template, bag) always yields the same
// document.
package card

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/weichenlin/tripmate/internal/apperr"
)

type TemplateID string

const (
	FeatureCard    TemplateID = "feature_card"
	RankDetail     TemplateID = "rank_detail"
	TripList       TemplateID = "trip_list"
	TripDetail     TemplateID = "trip_detail"
	MeetingSuccess TemplateID = "meeting_success"
	MeetingList    TemplateID = "meeting_list"
	LockerPage     TemplateID = "locker_page"
	Help           TemplateID = "help"
	ErrorCard      TemplateID = "error"
	Reminder       TemplateID = "reminder"
)

// requiredKeys pairs each template with the bag keys it cannot render
// without. Optional keys are filled with zero values.
var requiredKeys = map[TemplateID][]string{
	FeatureCard:    {"title", "description", "color", "cta_label", "cta_uri"},
	RankDetail:     {"rank", "title", "area", "popularity"},
	TripList:       {"place", "trips"},
	TripDetail:     {"title", "area", "days"},
	MeetingSuccess: {"name", "time", "place", "previews"},
	MeetingList:    {"meetings"},
	LockerPage:     {"locker", "index", "total"},
	Help:           {},
	ErrorCard:      {"message"},
	Reminder:       {"text"},
}

// TripRow is one entry of a trip_list card.
type TripRow struct {
	ID    int64
	Title string
	Area  string
	Dates string
}

// TripDay is one per-day row of a trip_detail card.
type TripDay struct {
	Date        string
	StartTime   string
	EndTime     string
	Location    string
	Description string
}

// MeetingRow is one entry of a meeting_list card.
type MeetingRow struct {
	ID    int64
	Name  string
	Time  string
	Place string
}

// LockerInfo is the single bubble of a locker carousel page.
type LockerInfo struct {
	Name       string
	Address    string
	Available  int
	DistanceKM float64
}

const (
	colorPrimary = "#1E88E5"
	colorNeutral = "#607D8B"
	colorAccent  = "#FB8C00"
	colorText    = "#333333"
	colorSubtle  = "#888888"
)

// Render builds the reply message for a template and its data bag.
// A missing required key fails with bad-input before anything is built.
func Render(id TemplateID, bag map[string]any) (messaging_api.MessageInterface, error) {
	keys, ok := requiredKeys[id]
	if !ok {
		return nil, apperr.Newf(apperr.Internal, "unknown template %q", id)
	}
	for _, k := range keys {
		if _, present := bag[k]; !present {
			return nil, apperr.Newf(apperr.BadInput, "template %q missing key %q", id, k)
		}
	}

	switch id {
	case FeatureCard:
		return renderFeatureCard(bag), nil
	case RankDetail:
		return renderRankDetail(bag), nil
	case TripList:
		return renderTripList(bag)
	case TripDetail:
		return renderTripDetail(bag)
	case MeetingSuccess:
		return renderMeetingSuccess(bag)
	case MeetingList:
		return renderMeetingList(bag)
	case LockerPage:
		return renderLockerPage(bag)
	case Help:
		return renderHelp(), nil
	case ErrorCard:
		return renderError(bag), nil
	case Reminder:
		return &messaging_api.TextMessage{Text: bagString(bag, "text")}, nil
	}
	return nil, apperr.Newf(apperr.Internal, "unknown template %q", id)
}

func bagString(bag map[string]any, key string) string {
	if v, ok := bag[key].(string); ok {
		return v
	}
	return ""
}

func bagInt(bag map[string]any, key string) int {
	switch v := bag[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func headerBox(title, color string) *messaging_api.FlexBox {
	return &messaging_api.FlexBox{
		Layout:          "vertical",
		BackgroundColor: color,
		PaddingAll:      "lg",
		Contents: []messaging_api.FlexComponentInterface{
			&messaging_api.FlexText{Text: title, Weight: "bold", Size: "lg", Color: "#FFFFFF", Wrap: true},
		},
	}
}

func bodyText(text, color, size string) *messaging_api.FlexText {
	return &messaging_api.FlexText{Text: text, Color: color, Size: size, Wrap: true}
}

func flexMessage(altText string, contents messaging_api.FlexContainerInterface) *messaging_api.FlexMessage {
	return &messaging_api.FlexMessage{AltText: altText, Contents: contents}
}
