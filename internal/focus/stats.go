package focus

import (
	"encoding/json"
	"log"
	"time"

	"life-goals/internal/dates"
)

// StatsKey is the fixed storage key of the persisted stats record.
const StatsKey = "focusStats"

// Stats are the per-day focus counters plus a consecutive-day streak.
type Stats struct {
	Date              string `json:"date"`
	SessionsToday     int    `json:"sessionsToday"`
	TotalMinutesToday int    `json:"totalMinutesToday"`
	StreakDays        int    `json:"streakDays"`
}

// FreshStats starts a new record for today's day.
func FreshStats(today time.Time) Stats {
	return Stats{Date: dates.Key(today), StreakDays: 1}
}

// ResumeStats restores persisted stats for today. A record from today is
// kept as is; one from yesterday extends the streak and clears the counters;
// anything older, missing or unreadable starts over with a streak of 1.
func ResumeStats(raw []byte, today time.Time) Stats {
	if len(raw) == 0 {
		return FreshStats(today)
	}
	var prev Stats
	if err := json.Unmarshal(raw, &prev); err != nil {
		log.Printf("[warn] focus stats unreadable, starting fresh: %v", err)
		return FreshStats(today)
	}
	return prev.rollTo(today)
}

func (s Stats) rollTo(today time.Time) Stats {
	key := dates.Key(today)
	switch s.Date {
	case key:
		if s.StreakDays < 1 {
			s.StreakDays = 1
		}
		return s
	case dates.Key(dates.AddDays(today, -1)):
		return Stats{Date: key, StreakDays: s.StreakDays + 1}
	default:
		return FreshStats(today)
	}
}

// Record adds a completed focus session. A session finishing on a later day
// than the record first rolls the record over to that day.
func (s Stats) Record(minutes int, now time.Time) Stats {
	s = s.rollTo(now)
	s.SessionsToday++
	s.TotalMinutesToday += minutes
	return s
}

// Marshal encodes the record for storage.
func (s Stats) Marshal() ([]byte, error) {
	return json.Marshal(s)
}
