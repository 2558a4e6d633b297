package card

import (
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/weichenlin/tripmate/internal/apperr"
)

func renderFeatureCard(bag map[string]any) messaging_api.MessageInterface {
	title := bagString(bag, "title")
	color := bagString(bag, "color")
	if color == "" {
		color = colorPrimary
	}

	bubble := messaging_api.FlexBubble{
		Header: headerBox(title, color),
		Body: &messaging_api.FlexBox{
			Layout:  "vertical",
			Spacing: "md",
			Contents: []messaging_api.FlexComponentInterface{
				bodyText(bagString(bag, "description"), colorText, "md"),
			},
		},
		Footer: &messaging_api.FlexBox{
			Layout: "vertical",
			Contents: []messaging_api.FlexComponentInterface{
				&messaging_api.FlexButton{
					Style: "primary",
					Color: color,
					Action: &messaging_api.UriAction{
						Label: bagString(bag, "cta_label"),
						Uri:   bagString(bag, "cta_uri"),
					},
				},
			},
		},
	}
	return flexMessage(title, &bubble)
}

func renderRankDetail(bag map[string]any) messaging_api.MessageInterface {
	rank := bagInt(bag, "rank")
	title := bagString(bag, "title")

	contents := []messaging_api.FlexComponentInterface{
		bodyText(title, colorText, "lg"),
		bodyText(fmt.Sprintf("地區：%s", bagString(bag, "area")), colorSubtle, "sm"),
		bodyText(fmt.Sprintf("人氣指數：%s", bagString(bag, "popularity")), colorSubtle, "sm"),
	}
	if desc := bagString(bag, "description"); desc != "" {
		contents = append(contents,
			&messaging_api.FlexSeparator{Margin: "md"},
			bodyText(desc, colorText, "sm"))
	}

	bubble := messaging_api.FlexBubble{
		Header: headerBox(fmt.Sprintf("🏆 第%d名人氣行程", rank), colorAccent),
		Body: &messaging_api.FlexBox{
			Layout:   "vertical",
			Spacing:  "sm",
			Contents: contents,
		},
		Footer: &messaging_api.FlexBox{
			Layout: "vertical",
			Contents: []messaging_api.FlexComponentInterface{
				&messaging_api.FlexButton{
					Style: "secondary",
					Action: &messaging_api.PostbackAction{
						Label: "詳細行程",
						Data:  fmt.Sprintf("action=trip_detail&id=%d", bag["trip_id"]),
					},
				},
			},
		},
	}
	return flexMessage(fmt.Sprintf("第%d名：%s", rank, title), &bubble)
}

func renderTripList(bag map[string]any) (messaging_api.MessageInterface, error) {
	place := bagString(bag, "place")
	trips, ok := bag["trips"].([]TripRow)
	if !ok {
		return nil, apperr.New(apperr.BadInput, "trip_list wants []TripRow under \"trips\"")
	}

	rows := []messaging_api.FlexComponentInterface{}
	for i, t := range trips {
		if i > 0 {
			rows = append(rows, &messaging_api.FlexSeparator{Margin: "md"})
		}
		rows = append(rows, &messaging_api.FlexBox{
			Layout:  "vertical",
			Margin:  "md",
			Spacing: "xs",
			Contents: []messaging_api.FlexComponentInterface{
				bodyText(t.Title, colorText, "md"),
				bodyText(fmt.Sprintf("%s｜%s", t.Area, t.Dates), colorSubtle, "xs"),
				&messaging_api.FlexButton{
					Height: "sm",
					Style:  "link",
					Action: &messaging_api.PostbackAction{
						Label: "查看詳情",
						Data:  fmt.Sprintf("action=trip_detail&id=%d", t.ID),
					},
				},
			},
		})
	}

	bubble := messaging_api.FlexBubble{
		Header: headerBox(fmt.Sprintf("🗺 %s 的行程", place), colorPrimary),
		Body: &messaging_api.FlexBox{
			Layout:   "vertical",
			Contents: rows,
		},
	}
	return flexMessage(fmt.Sprintf("%s 的行程列表", place), &bubble), nil
}

func renderTripDetail(bag map[string]any) (messaging_api.MessageInterface, error) {
	title := bagString(bag, "title")
	days, ok := bag["days"].([]TripDay)
	if !ok {
		return nil, apperr.New(apperr.BadInput, "trip_detail wants []TripDay under \"days\"")
	}

	contents := []messaging_api.FlexComponentInterface{
		bodyText(fmt.Sprintf("地區：%s", bagString(bag, "area")), colorSubtle, "sm"),
	}
	if desc := bagString(bag, "description"); desc != "" {
		contents = append(contents, bodyText(desc, colorText, "sm"))
	}
	for _, d := range days {
		contents = append(contents,
			&messaging_api.FlexSeparator{Margin: "md"},
			&messaging_api.FlexBox{
				Layout:  "vertical",
				Margin:  "md",
				Spacing: "xs",
				Contents: []messaging_api.FlexComponentInterface{
					bodyText(fmt.Sprintf("%s %s-%s", d.Date, d.StartTime, d.EndTime), colorSubtle, "xs"),
					bodyText(d.Location, colorText, "md"),
					bodyText(d.Description, colorSubtle, "sm"),
				},
			})
	}

	bubble := messaging_api.FlexBubble{
		Header: headerBox(title, colorPrimary),
		Body: &messaging_api.FlexBox{
			Layout:   "vertical",
			Contents: contents,
		},
	}
	return flexMessage(title, &bubble), nil
}

func renderMeetingSuccess(bag map[string]any) (messaging_api.MessageInterface, error) {
	previews, ok := bag["previews"].([]string)
	if !ok || len(previews) != 3 {
		return nil, apperr.New(apperr.BadInput, "meeting_success wants three preview times under \"previews\"")
	}

	bubble := messaging_api.FlexBubble{
		Header: headerBox("✅ 集合提醒已設定", "#43A047"),
		Body: &messaging_api.FlexBox{
			Layout:  "vertical",
			Spacing: "sm",
			Contents: []messaging_api.FlexComponentInterface{
				bodyText(bagString(bag, "name"), colorText, "md"),
				bodyText(fmt.Sprintf("時間：%s", bagString(bag, "time")), colorText, "sm"),
				bodyText(fmt.Sprintf("地點：%s", bagString(bag, "place")), colorText, "sm"),
				&messaging_api.FlexSeparator{Margin: "md"},
				bodyText("將於以下時間提醒你：", colorSubtle, "xs"),
				bodyText(fmt.Sprintf("⏰ %s（前 10 分鐘）", previews[0]), colorSubtle, "xs"),
				bodyText(fmt.Sprintf("🚨 %s（前 5 分鐘）", previews[1]), colorSubtle, "xs"),
				bodyText(fmt.Sprintf("🎯 %s（集合時間）", previews[2]), colorSubtle, "xs"),
			},
		},
		Footer: &messaging_api.FlexBox{
			Layout: "vertical",
			Contents: []messaging_api.FlexComponentInterface{
				&messaging_api.FlexButton{
					Style: "link",
					Action: &messaging_api.PostbackAction{
						Label: "查看我的集合",
						Data:  "action=view_meetings",
					},
				},
			},
		},
	}
	return flexMessage("集合提醒已設定", &bubble), nil
}

func renderMeetingList(bag map[string]any) (messaging_api.MessageInterface, error) {
	meetings, ok := bag["meetings"].([]MeetingRow)
	if !ok {
		return nil, apperr.New(apperr.BadInput, "meeting_list wants []MeetingRow under \"meetings\"")
	}

	if len(meetings) == 0 {
		bubble := messaging_api.FlexBubble{
			Header: headerBox("📋 我的集合", colorPrimary),
			Body: &messaging_api.FlexBox{
				Layout: "vertical",
				Contents: []messaging_api.FlexComponentInterface{
					bodyText("目前沒有進行中的集合。", colorSubtle, "sm"),
				},
			},
		}
		return flexMessage("我的集合", &bubble), nil
	}

	rows := []messaging_api.FlexComponentInterface{}
	for i, m := range meetings {
		if i > 0 {
			rows = append(rows, &messaging_api.FlexSeparator{Margin: "md"})
		}
		rows = append(rows, &messaging_api.FlexBox{
			Layout:  "vertical",
			Margin:  "md",
			Spacing: "xs",
			Contents: []messaging_api.FlexComponentInterface{
				bodyText(m.Name, colorText, "md"),
				bodyText(fmt.Sprintf("%s @ %s", m.Time, m.Place), colorSubtle, "xs"),
				&messaging_api.FlexButton{
					Height: "sm",
					Style:  "link",
					Action: &messaging_api.PostbackAction{
						Label: "取消",
						Data:  fmt.Sprintf("action=cancel_meeting&id=%d", m.ID),
					},
				},
			},
		})
	}

	bubble := messaging_api.FlexBubble{
		Header: headerBox("📋 我的集合", colorPrimary),
		Body: &messaging_api.FlexBox{
			Layout:   "vertical",
			Contents: rows,
		},
	}
	return flexMessage("我的集合", &bubble), nil
}

func renderLockerPage(bag map[string]any) (messaging_api.MessageInterface, error) {
	locker, ok := bag["locker"].(LockerInfo)
	if !ok {
		return nil, apperr.New(apperr.BadInput, "locker_page wants LockerInfo under \"locker\"")
	}
	index := bagInt(bag, "index")
	total := bagInt(bag, "total")

	bubble := messaging_api.FlexBubble{
		Header: headerBox(fmt.Sprintf("🧳 附近置物櫃 (%d/%d)", index+1, total), colorAccent),
		Body: &messaging_api.FlexBox{
			Layout:  "vertical",
			Spacing: "sm",
			Contents: []messaging_api.FlexComponentInterface{
				bodyText(locker.Name, colorText, "md"),
				bodyText(locker.Address, colorSubtle, "sm"),
				bodyText(fmt.Sprintf("距離約 %.1f 公里｜空櫃 %d", locker.DistanceKM, locker.Available), colorSubtle, "xs"),
			},
		},
		Footer: &messaging_api.FlexBox{
			Layout: "vertical",
			Contents: []messaging_api.FlexComponentInterface{
				&messaging_api.FlexButton{
					Style: "secondary",
					Action: &messaging_api.PostbackAction{
						Label: "下一個",
						Data:  "action=locker_next",
					},
				},
			},
		},
	}
	return flexMessage("附近置物櫃", &bubble), nil
}

func renderHelp() messaging_api.MessageInterface {
	bubble := messaging_api.FlexBubble{
		Header: headerBox("📖 功能說明", colorPrimary),
		Body: &messaging_api.FlexBox{
			Layout:  "vertical",
			Spacing: "sm",
			Contents: []messaging_api.FlexComponentInterface{
				bodyText("輸入關鍵字使用各項功能：", colorText, "sm"),
				bodyText("「排行榜」查看人氣行程排名", colorSubtle, "sm"),
				bodyText("「第一名」～「第五名」查看單一名次", colorSubtle, "sm"),
				bodyText("輸入城市名（如「東京」）搜尋行程", colorSubtle, "sm"),
				bodyText("「下午3點 淺草寺集合」設定集合提醒", colorSubtle, "sm"),
				bodyText("「置物櫃」尋找附近置物櫃", colorSubtle, "sm"),
				bodyText("「分帳」開啟分帳工具", colorSubtle, "sm"),
				bodyText("「綁定」連結網站帳號", colorSubtle, "sm"),
			},
		},
	}
	return flexMessage("功能說明", &bubble)
}

func renderError(bag map[string]any) messaging_api.MessageInterface {
	bubble := messaging_api.FlexBubble{
		Header: headerBox("ℹ️ 提示", colorNeutral),
		Body: &messaging_api.FlexBox{
			Layout:  "vertical",
			Spacing: "sm",
			Contents: []messaging_api.FlexComponentInterface{
				bodyText(bagString(bag, "message"), colorText, "sm"),
				bodyText(bagString(bag, "advice"), colorSubtle, "xs"),
			},
		},
	}
	return flexMessage(bagString(bag, "message"), &bubble)
}
