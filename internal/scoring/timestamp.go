package scoring

import (
	"strings"
	"time"
)

// Layouts accepted for feed timestamps. Google Forms exports (zh-TW and
// en-US) come first since that is what the reference deployment produces.
var timestampLayouts = []string{
	"2006/1/2 PM 3:04:05",
	"2006/1/2 3:04:05 PM",
	"2006/1/2 15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006 15:04:05",
}

var meridiem = strings.NewReplacer("上午", "AM", "下午", "PM")

// parseInstant turns a feed timestamp into a comparable instant. zh-TW
// meridiem markers are mapped to AM/PM before layout parsing.
func parseInstant(raw string) (time.Time, bool) {
	s := strings.TrimSpace(meridiem.Replace(raw))
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// instantBefore orders two raw timestamps. When both parse, their instants
// decide; otherwise raw string comparison is the fallback so an odd
// timestamp degrades ordering instead of failing the pass.
func instantBefore(a, b string) bool {
	ta, okA := parseInstant(a)
	tb, okB := parseInstant(b)
	if okA && okB {
		return ta.Before(tb)
	}
	return a < b
}
