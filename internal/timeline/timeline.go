// Package timeline lays goals out on a shared date axis.
//
// The axis spans every goal with two days of padding on each side. A goal
// with no start date is placed at the axis start, one with no end date
// runs for a week. Goals at 100% progress are listed separately.
package timeline

import (
	"math"
	"sort"
	"time"

	"life-goals/internal/dates"
	"life-goals/internal/model"
)

const (
	padDays         = 2
	defaultSpanDays = 7
	emptyRangeDays  = 30
)

// Milestone is a task marker inside a goal bar. Position is in (0, 1),
// tasks are spaced evenly in their backend order.
type Milestone struct {
	Title     string
	Completed bool
	Position  float64
}

// Bar is one goal row.
type Bar struct {
	Goal       model.Goal
	Start, End time.Time
	// Offset is the number of days from the axis start, Length the
	// inclusive duration in days. Both are at least 0 and 1.
	Offset     int
	Length     int
	Progress   int
	DoneTasks  int
	TotalTasks int
	Milestones []Milestone
	// DependsOn is the goal starting just before this one, if any.
	DependsOn *model.Goal
}

// Completed reports whether all of the goal's tasks are done.
func (b Bar) Completed() bool {
	return b.Progress >= 100
}

type Timeline struct {
	Start, End time.Time
	Days       int
	// TodayOffset is today's day index on the axis, -1 when outside it.
	TodayOffset int
	Active      []Bar
	Completed   []Bar
}

type span struct {
	goal       model.Goal
	start, end time.Time
	hasStart   bool
	hasEnd     bool
}

// Build computes the timeline for goals as seen on today. Unparseable
// dates count as missing.
func Build(goals []model.Goal, today time.Time) Timeline {
	loc := today.Location()
	today = dates.StartOfDay(today)

	if len(goals) == 0 {
		end := dates.AddDays(today, emptyRangeDays)
		return Timeline{Start: today, End: end, Days: emptyRangeDays, TodayOffset: 0}
	}

	spans := make([]span, len(goals))
	var first, last time.Time
	for i, g := range goals {
		sp := span{goal: g, start: today}
		if s, err := dates.ParseKey(g.StartDate, loc); err == nil {
			sp.start, sp.hasStart = s, true
		}
		sp.end = dates.AddDays(sp.start, defaultSpanDays)
		if e, err := dates.ParseKey(g.EndDate, loc); err == nil {
			sp.end, sp.hasEnd = e, true
		}
		spans[i] = sp

		if i == 0 || sp.start.Before(first) {
			first = sp.start
		}
		if i == 0 || sp.end.After(last) {
			last = sp.end
		}
	}
	first = dates.AddDays(first, -padDays)
	last = dates.AddDays(last, padDays)

	tl := Timeline{Start: first, End: last, Days: dates.DaysBetween(first, last), TodayOffset: -1}
	if tl.Days < 1 {
		tl.Days = 1
	}
	if off := dates.DaysBetween(first, today); off >= 0 && off <= tl.Days {
		tl.TodayOffset = off
	}

	deps := dependencies(spans)
	for _, sp := range ordered(spans) {
		bar := newBar(sp, first)
		bar.DependsOn = deps[sp.goal.ID]
		if bar.Completed() {
			tl.Completed = append(tl.Completed, bar)
		} else {
			tl.Active = append(tl.Active, bar)
		}
	}
	return tl
}

func newBar(sp span, axisStart time.Time) Bar {
	start := axisStart
	if sp.hasStart {
		start = sp.start
	}
	end := dates.AddDays(start, defaultSpanDays)
	if sp.hasEnd {
		end = sp.end
	}

	g := sp.goal
	bar := Bar{
		Goal:       g,
		Start:      start,
		End:        end,
		Offset:     dates.DaysBetween(axisStart, start),
		Length:     dates.DaysBetween(start, end) + 1,
		DoneTasks:  g.CompletedTasks(),
		TotalTasks: len(g.Tasks),
	}
	if bar.Offset < 0 {
		bar.Offset = 0
	}
	if bar.Length < 1 {
		bar.Length = 1
	}
	if bar.TotalTasks > 0 {
		bar.Progress = int(math.Round(float64(bar.DoneTasks) * 100 / float64(bar.TotalTasks)))
	}
	for i, t := range g.Tasks {
		bar.Milestones = append(bar.Milestones, Milestone{
			Title:     t.Title,
			Completed: t.Completed,
			Position:  float64(i+1) / float64(len(g.Tasks)+1),
		})
	}
	return bar
}

// dependencies links each goal to the one starting immediately before it.
// Missing start dates sort as today.
func dependencies(spans []span) map[uint]*model.Goal {
	byStart := make([]span, len(spans))
	copy(byStart, spans)
	sort.SliceStable(byStart, func(i, j int) bool {
		return byStart[i].start.Before(byStart[j].start)
	})

	deps := make(map[uint]*model.Goal, len(byStart))
	for i := 1; i < len(byStart); i++ {
		prev := byStart[i-1].goal
		deps[byStart[i].goal.ID] = &prev
	}
	return deps
}

// ordered sorts rows by start date, falling back to the end date. Goals
// with neither go last.
func ordered(spans []span) []span {
	out := make([]span, len(spans))
	copy(out, spans)
	key := func(sp span) (time.Time, bool) {
		switch {
		case sp.hasStart:
			return sp.start, true
		case sp.hasEnd:
			return sp.end, true
		default:
			return time.Time{}, false
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := key(out[i])
		b, bok := key(out[j])
		if aok != bok {
			return aok
		}
		return aok && a.Before(b)
	})
	return out
}
