// Package intent holds the static keyword-to-intent table and the
// deterministic resolver over it.
package intent

import "github.com/weichenlin/tripmate/internal/card"

// Intent is one immutable entry of the table. Feature intents render a
// feature card straight from their display fields; data-driven intents
// carry Rank or Place for the gateway.
type Intent struct {
	ID       string
	Keywords []string
	Template card.TemplateID

	// Data parameters
	Rank  int
	Place string

	// Feature-card display fields
	Title       string
	Description string
	Color       string
	CTALabel    string
	CTAURI      string
}

// MeetingSetID is the resolver's fallback intent when the text carries a
// meeting verb but matches no keyword.
const MeetingSetID = "meeting_set"

// DefaultTable builds the intent table. siteBaseURL is the web suite the
// feature cards link into. Order matters: it is the tie-break for
// equal-length keyword matches.
func DefaultTable(siteBaseURL string) []Intent {
	return []Intent{
		// Rank intents sit above the leaderboard card so a text naming a
		// specific rank ("排行榜第一名") resolves to the rank, not the board.
		{ID: "rank_1_detail", Keywords: []string{"第一名詳細行程", "第1名詳細行程"}, Template: card.TripDetail, Rank: 1},
		{ID: "rank_2_detail", Keywords: []string{"第二名詳細行程", "第2名詳細行程"}, Template: card.TripDetail, Rank: 2},
		{ID: "rank_3_detail", Keywords: []string{"第三名詳細行程", "第3名詳細行程"}, Template: card.TripDetail, Rank: 3},
		{ID: "rank_4_detail", Keywords: []string{"第四名詳細行程", "第4名詳細行程"}, Template: card.TripDetail, Rank: 4},
		{ID: "rank_5_detail", Keywords: []string{"第五名詳細行程", "第5名詳細行程"}, Template: card.TripDetail, Rank: 5},

		{ID: "rank_1", Keywords: []string{"第一名", "第1名"}, Template: card.RankDetail, Rank: 1},
		{ID: "rank_2", Keywords: []string{"第二名", "第2名"}, Template: card.RankDetail, Rank: 2},
		{ID: "rank_3", Keywords: []string{"第三名", "第3名"}, Template: card.RankDetail, Rank: 3},
		{ID: "rank_4", Keywords: []string{"第四名", "第4名"}, Template: card.RankDetail, Rank: 4},
		{ID: "rank_5", Keywords: []string{"第五名", "第5名"}, Template: card.RankDetail, Rank: 5},

		{
			ID:          "leaderboard",
			Keywords:    []string{"排行榜", "人氣排行", "排名", "人氣行程"},
			Template:    card.FeatureCard,
			Title:       "🏆 人氣行程排行榜",
			Description: "看看大家最愛的行程，前五名即時更新。輸入「第一名」到「第五名」可以看單一名次。",
			Color:       "#FB8C00",
			CTALabel:    "開啟排行榜",
			CTAURI:      siteBaseURL + "/leaderboard",
		},

		{
			ID:          "trips_open",
			Keywords:    []string{"行程管理", "行程規劃", "我的行程"},
			Template:    card.FeatureCard,
			Title:       "🗺 行程管理",
			Description: "建立、編輯與分享你的旅遊行程板。",
			Color:       "#1E88E5",
			CTALabel:    "開啟行程管理",
			CTAURI:      siteBaseURL + "/trips",
		},
		{
			ID:          "locker_open",
			Keywords:    []string{"置物櫃", "寄物", "寄放行李"},
			Template:    card.FeatureCard,
			Title:       "🧳 置物櫃地圖",
			Description: "查詢附近的投幣置物櫃與空櫃狀況。",
			Color:       "#FB8C00",
			CTALabel:    "開啟置物櫃地圖",
			CTAURI:      siteBaseURL + "/lockers",
		},
		{
			ID:          "split_bill_open",
			Keywords:    []string{"分帳", "拆帳", "分攤"},
			Template:    card.FeatureCard,
			Title:       "💰 旅費分帳",
			Description: "記錄旅途中的共同開銷，自動算出誰該給誰多少。",
			Color:       "#43A047",
			CTALabel:    "開啟分帳工具",
			CTAURI:      siteBaseURL + "/bills",
		},
		{
			ID:          "meeting_clock_open",
			Keywords:    []string{"集合時鐘", "集合提醒"},
			Template:    card.FeatureCard,
			Title:       "⏰ 集合時鐘",
			Description: "設定集合時間後，會在前 10 分鐘、前 5 分鐘與集合當下提醒你。也可以直接輸入「下午3點 淺草寺集合」。",
			Color:       "#8E24AA",
			CTALabel:    "開啟集合時鐘",
			CTAURI:      siteBaseURL + "/meetings",
		},
		{
			ID:          "website_open",
			Keywords:    []string{"網站", "官網", "開啟網站"},
			Template:    card.FeatureCard,
			Title:       "🌐 旅遊小幫手網站",
			Description: "完整功能都在網站上：行程板、置物櫃地圖、分帳、集合時鐘。",
			Color:       "#1E88E5",
			CTALabel:    "前往網站",
			CTAURI:      siteBaseURL,
		},
		{
			ID:          "account_binding",
			Keywords:    []string{"綁定", "帳號綁定", "連結帳號"},
			Template:    card.FeatureCard,
			Title:       "🔗 帳號綁定",
			Description: "綁定網站帳號後，在聊天室建立的行程與集合會同步到網站。",
			Color:       "#607D8B",
			CTALabel:    "開始綁定",
			CTAURI:      siteBaseURL + "/linking/start",
		},

		{ID: "loc_tokyo", Keywords: []string{"東京"}, Template: card.TripList, Place: "東京"},
		{ID: "loc_osaka", Keywords: []string{"大阪"}, Template: card.TripList, Place: "大阪"},
		{ID: "loc_kyoto", Keywords: []string{"京都"}, Template: card.TripList, Place: "京都"},
		{ID: "loc_hokkaido", Keywords: []string{"北海道"}, Template: card.TripList, Place: "北海道"},
		{ID: "loc_okinawa", Keywords: []string{"沖繩"}, Template: card.TripList, Place: "沖繩"},
		{ID: "loc_nara", Keywords: []string{"奈良"}, Template: card.TripList, Place: "奈良"},
		{ID: "loc_fukuoka", Keywords: []string{"福岡"}, Template: card.TripList, Place: "福岡"},
		{ID: "loc_kyushu", Keywords: []string{"九州"}, Template: card.TripList, Place: "九州"},

		{ID: "help", Keywords: []string{"幫助", "說明", "功能", "help"}, Template: card.Help},
	}
}
