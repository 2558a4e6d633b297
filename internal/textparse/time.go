// Package textparse extracts a time-of-day and a place phrase from free
// Chinese text. Everything here is deterministic regexp work; there is no
// language model behind it.
package textparse

import (
	"fmt"
	"regexp"
	"strconv"
)

// The time patterns are tried strictly in order; the first match wins.
var timePatterns = []struct {
	re      *regexp.Regexp
	periods bool // group 1 is a period word
	halfMin bool // minutes fixed to 30
	noMin   bool // minutes fixed to 00
}{
	{re: regexp.MustCompile(`(上午|下午|晚上|凌晨)(\d{1,2})[:.](\d{1,2})`), periods: true},
	{re: regexp.MustCompile(`(上午|下午|晚上|凌晨)(\d{1,2})點(\d{1,2})分`), periods: true},
	{re: regexp.MustCompile(`(\d{1,2})點半`), halfMin: true},
	{re: regexp.MustCompile(`(\d{1,2})點(\d{1,2})分`)},
	{re: regexp.MustCompile(`(上午|下午|晚上|凌晨)(\d{1,2})點`), periods: true, noMin: true},
	{re: regexp.MustCompile(`(\d{1,2})點`), noMin: true},
	{re: regexp.MustCompile(`(\d{2}):(\d{2})`)},
	{re: regexp.MustCompile(`(\d{1,2}):(\d{2})`)},
}

// ExtractTime finds a time-of-day in the text and returns it as a
// zero-padded 24h "HH:MM".
//
// Period adjustment convention: 下午/晚上 add 12 only when the hour is
// below 12, so 下午12:00 stays 12:00 and 晚上12:35 stays 12:35.
// 上午/凌晨 map hour 12 to 0 (凌晨12:00 becomes 00:00) and leave smaller
// hours alone.
func ExtractTime(text string) (string, bool) {
	for _, p := range timePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		var period string
		args := m[1:]
		if p.periods {
			period = args[0]
			args = args[1:]
		}

		hour, _ := strconv.Atoi(args[0])
		minute := 0
		switch {
		case p.halfMin:
			minute = 30
		case p.noMin:
			minute = 0
		default:
			minute, _ = strconv.Atoi(args[1])
		}

		switch period {
		case "下午", "晚上":
			if hour < 12 {
				hour += 12
			}
		case "上午", "凌晨":
			if hour == 12 {
				hour = 0
			}
		}

		if hour > 23 || minute > 59 {
			continue
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), true
	}
	return "", false
}
