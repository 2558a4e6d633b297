package intent

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var meetingVerbRe = regexp.MustCompile(`集合|見面|碰面|會合`)

// HasMeetingVerb reports whether the text contains a meeting verb.
func HasMeetingVerb(text string) bool {
	return meetingVerbRe.MatchString(text)
}

// Resolver classifies raw text to at most one intent from a fixed table.
type Resolver struct {
	table []Intent
}

func NewResolver(table []Intent) *Resolver {
	return &Resolver{table: table}
}

// Resolve picks the intent for a text, or nil.
//
// Exact keyword equality wins outright. Otherwise the longest keyword
// found as a substring wins, with table order breaking length ties. Text
// with no keyword but a meeting verb falls back to the meeting-set
// intent.
func (r *Resolver) Resolve(text string) *Intent {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	for i := range r.table {
		for _, kw := range r.table[i].Keywords {
			if text == kw {
				return &r.table[i]
			}
		}
	}

	var best *Intent
	bestLen := 0
	for i := range r.table {
		for _, kw := range r.table[i].Keywords {
			if n := utf8.RuneCountInString(kw); n > bestLen && strings.Contains(text, kw) {
				best = &r.table[i]
				bestLen = n
			}
		}
	}
	if best != nil {
		return best
	}

	if HasMeetingVerb(text) {
		return &Intent{ID: MeetingSetID}
	}
	return nil
}
