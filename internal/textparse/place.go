package textparse

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// knownPlaces are checked first, in order. Listing the landmark before
// the district keeps "淺草寺" from resolving to "淺草".
var knownPlaces = []string{
	"淺草寺", "東京鐵塔", "晴空塔", "雷門", "上野公園", "明治神宮",
	"清水寺", "金閣寺", "伏見稻荷", "大阪城", "道頓堀", "心齋橋",
	"環球影城", "迪士尼樂園", "富士山", "澀谷", "新宿", "秋葉原",
	"銀座", "池袋", "原宿", "台場", "淺草",
}

var (
	placeAfterParticleRe = regexp.MustCompile(`(?:約在|集合於|見面於|在|到|於)([\p{Han}A-Za-z0-9]{2,10})(?:集合|見面|碰面|會合)`)
	placeBeforeVerbRe    = regexp.MustCompile(`([\p{Han}A-Za-z0-9]{2,10})(?:集合|見面|碰面|會合)`)
	landmarkSuffixRe     = regexp.MustCompile(`([\p{Han}]{1,8}(?:車站|神社|公園|廣場|商店街|百貨|飯店|機場|大橋|寺|站|橋|塔|門))`)
	hanRunRe             = regexp.MustCompile(`[\p{Han}]{2,10}`)

	pureDigitsRe = regexp.MustCompile(`^[0-9]+$`)
	timeWordRe   = regexp.MustCompile(`^(?:上午|下午|晚上|凌晨)$|^[0-9]*(?:點|分|點半)[0-9]*分?$`)
)

// ExtractPlace finds the place phrase of a meeting sentence.
func ExtractPlace(text string) (string, bool) {
	for _, p := range knownPlaces {
		if strings.Contains(text, p) {
			return p, true
		}
	}

	for _, re := range []*regexp.Regexp{placeAfterParticleRe, placeBeforeVerbRe, landmarkSuffixRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			if cand, ok := cleanCandidate(m[1]); ok {
				return cand, true
			}
		}
	}

	// Last resort: the first plausible run of Han characters.
	for _, run := range hanRunRe.FindAllString(text, -1) {
		if cand, ok := cleanCandidate(run); ok && !meetingVerbOnly(cand) {
			return cand, true
		}
	}
	return "", false
}

func cleanCandidate(s string) (string, bool) {
	// Time fragments and particles sneak into the capture when the
	// sentence puts them right before the place.
	s = strings.TrimLeft(s, "0123456789:.")
	for _, prefix := range []string{"約在", "集合於", "見面於", "在", "到", "於", "上午", "下午", "晚上", "凌晨", "點半", "點", "分"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimLeft(s, "0123456789:.")

	if utf8.RuneCountInString(s) < 2 {
		return "", false
	}
	if pureDigitsRe.MatchString(s) || timeWordRe.MatchString(s) {
		return "", false
	}
	return s, true
}

func meetingVerbOnly(s string) bool {
	switch s {
	case "集合", "見面", "碰面", "會合":
		return true
	}
	return false
}
