package calendar

import (
	"time"

	"life-goals/internal/dates"
	"life-goals/internal/model"
)

// PlannerDay lists the goals active on one day of the weekly planner.
type PlannerDay struct {
	Date  time.Time
	Key   string
	Goals []model.Goal
}

// WeekDays returns Monday through Sunday of the week containing anchor.
func WeekDays(anchor time.Time) [7]time.Time {
	var days [7]time.Time
	monday := dates.MondayOf(anchor)
	for i := range days {
		days[i] = dates.AddDays(monday, i)
	}
	return days
}

// PlanWeek assigns goals to the days of anchor's week on which they are
// active. A goal without a start date is treated as starting on Monday and
// one without an end date as ending on Sunday; unparseable dates count as
// missing.
func PlanWeek(goals []model.Goal, anchor time.Time) []PlannerDay {
	days := WeekDays(anchor)
	loc := anchor.Location()
	plan := make([]PlannerDay, len(days))
	for i, d := range days {
		plan[i] = PlannerDay{Date: d, Key: dates.Key(d)}
	}

	for _, g := range goals {
		start := days[0]
		if s, err := dates.ParseKey(g.StartDate, loc); err == nil {
			start = s
		}
		end := days[6]
		if e, err := dates.ParseKey(g.EndDate, loc); err == nil {
			end = e
		}
		for i, d := range days {
			if !d.Before(start) && !d.After(end) {
				plan[i].Goals = append(plan[i].Goals, g)
			}
		}
	}
	return plan
}
