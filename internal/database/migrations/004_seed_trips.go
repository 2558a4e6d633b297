package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 4,
		Name:    "seed_trip_data",
		Up:      seedTripData,
	})
}

// Seed rows so a fresh install can answer leaderboard and location
// queries before any real data lands.
func seedTripData(db *sql.DB) error {
	seeds := []struct {
		title, description, area, startDate, endDate string
		favorites, shares, views                     int
		popularity                                   float64
		details                                      [][5]string // location, date, start, end, description
	}{
		{
			title: "東京經典五日遊", description: "淺草、澀谷、台場一次走完的入門行程。",
			area: "東京", startDate: "2026-10-01", endDate: "2026-10-05",
			favorites: 412, shares: 188, views: 9210, popularity: 97.4,
			details: [][5]string{
				{"淺草寺", "2026-10-01", "09:00", "11:30", "雷門與仲見世通散策"},
				{"晴空塔", "2026-10-01", "13:00", "15:00", "展望台看東京全景"},
				{"澀谷", "2026-10-02", "10:00", "13:00", "十字路口與逛街"},
				{"台場", "2026-10-03", "14:00", "18:00", "海濱公園與購物"},
			},
		},
		{
			title: "京都楓葉慢旅", description: "秋季限定，清水寺到嵐山的賞楓路線。",
			area: "京都", startDate: "2026-11-20", endDate: "2026-11-23",
			favorites: 376, shares: 201, views: 8455, popularity: 95.1,
			details: [][5]string{
				{"清水寺", "2026-11-20", "08:30", "11:00", "清水舞台賞楓"},
				{"金閣寺", "2026-11-21", "09:00", "10:30", "金閣倒影"},
				{"嵐山", "2026-11-22", "10:00", "16:00", "竹林小徑與渡月橋"},
			},
		},
		{
			title: "大阪吃貨三日衝刺", description: "道頓堀、黑門市場，為了吃而來。",
			area: "大阪", startDate: "2026-09-12", endDate: "2026-09-14",
			favorites: 298, shares: 154, views: 7012, popularity: 91.8,
			details: [][5]string{
				{"道頓堀", "2026-09-12", "17:00", "21:00", "章魚燒與招牌巡禮"},
				{"黑門市場", "2026-09-13", "09:00", "12:00", "海鮮早午餐"},
				{"大阪城", "2026-09-13", "14:00", "16:30", "天守閣"},
			},
		},
		{
			title: "北海道道央自駕", description: "札幌、小樽、富良野的夏季花海。",
			area: "北海道", startDate: "2026-07-10", endDate: "2026-07-15",
			favorites: 244, shares: 96, views: 5830, popularity: 88.2,
			details: [][5]string{
				{"札幌", "2026-07-10", "10:00", "18:00", "市區與狸小路"},
				{"小樽運河", "2026-07-11", "09:30", "15:00", "運河與玻璃工房"},
				{"富良野", "2026-07-12", "08:00", "17:00", "薰衣草田"},
			},
		},
		{
			title: "沖繩跳島潛水", description: "慶良間藍的浮潛與離島巡禮。",
			area: "沖繩", startDate: "2026-08-02", endDate: "2026-08-06",
			favorites: 231, shares: 120, views: 5411, popularity: 86.9,
			details: [][5]string{
				{"那霸", "2026-08-02", "11:00", "17:00", "國際通"},
				{"座間味島", "2026-08-03", "08:00", "16:00", "浮潛一日"},
				{"美麗海水族館", "2026-08-05", "09:00", "13:00", "黑潮之海"},
			},
		},
		{
			title: "東京近郊溫泉兩日", description: "箱根大涌谷與蘆之湖的放空行程。",
			area: "東京", startDate: "2026-12-05", endDate: "2026-12-06",
			favorites: 187, shares: 77, views: 4102, popularity: 81.3,
			details: [][5]string{
				{"箱根湯本", "2026-12-05", "11:00", "20:00", "溫泉街與旅館"},
				{"大涌谷", "2026-12-06", "09:30", "11:30", "黑蛋與火山谷"},
			},
		},
	}

	for _, s := range seeds {
		res, err := db.Exec(
			`INSERT INTO trips (title, description, area, start_date, end_date) VALUES (?, ?, ?, ?, ?)`,
			s.title, s.description, s.area, s.startDate, s.endDate,
		)
		if err != nil {
			return err
		}
		tripID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		if _, err := db.Exec(
			`INSERT INTO trip_stats (trip_id, favorite_count, share_count, view_count, popularity_score) VALUES (?, ?, ?, ?, ?)`,
			tripID, s.favorites, s.shares, s.views, s.popularity,
		); err != nil {
			return err
		}

		for _, d := range s.details {
			if _, err := db.Exec(
				`INSERT INTO trip_details (trip_id, location, date, start_time, end_time, description) VALUES (?, ?, ?, ?, ?, ?)`,
				tripID, d[0], d[1], d[2], d[3], d[4],
			); err != nil {
				return err
			}
		}
	}
	return nil
}
