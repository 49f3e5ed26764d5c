package ranking

import (
	"strings"
	"time"
)

// TimeRange is a resolved time_range token.
type TimeRange struct {
	Token string `json:"token"`
	Days  int    `json:"days"`
}

var timeRanges = map[string]int{
	"day":   1,
	"week":  7,
	"month": 30,
	"year":  365,
}

// ParseTimeRange resolves a token. Unknown tokens fall back to week.
func ParseTimeRange(token string) TimeRange {
	token = strings.ToLower(strings.TrimSpace(token))
	if days, ok := timeRanges[token]; ok {
		return TimeRange{Token: token, Days: days}
	}
	return TimeRange{Token: "week", Days: 7}
}

// Since returns the start of the window ending at now.
func (r TimeRange) Since(now time.Time) time.Time {
	return now.AddDate(0, 0, -r.Days)
}
