package model

import (
	"strings"
	"time"
)

// Weekdays lists the keys of Job.ActiveDays in calendar order.
var Weekdays = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

// DefaultJobStatus is used when a job is created without a status.
const DefaultJobStatus = "pending"

// Job is a per-user schedule descriptor. Only the day of week is honoured at
// run time; AtFrom, To and Every are stored for clients.
type Job struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	ActiveDays map[string]bool `json:"active_days"`
	AtFrom     string          `json:"at_from"`
	To         string          `json:"to"`
	Every      *string         `json:"every"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  *time.Time      `json:"updated_at"`
	UserID     int64           `json:"user_id"`
}

// DayKey returns the ActiveDays key for t's weekday, e.g. "MON".
func DayKey(t time.Time) string {
	return strings.ToUpper(t.Weekday().String()[:3])
}

// NormalizeActiveDays returns a map holding every weekday key, upper-cased,
// defaulting missing days to false. Unknown keys are dropped.
func NormalizeActiveDays(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(Weekdays))
	for _, d := range Weekdays {
		out[d] = false
	}
	for k, v := range in {
		key := strings.ToUpper(strings.TrimSpace(k))
		if _, ok := out[key]; ok {
			out[key] = v
		}
	}
	return out
}
