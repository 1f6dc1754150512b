// Package calendar builds the habit month grid and the weekly planner.
package calendar

import (
	"time"

	"life-goals/internal/dates"
	"life-goals/internal/model"
)

// Status describes how many habits were completed on a day.
type Status string

const (
	StatusFull    Status = "full"
	StatusPartial Status = "partial"
	StatusNone    Status = "none"
	StatusOut     Status = "out"
)

// Cell is one day of a month grid.
type Cell struct {
	Date           string
	InCurrentMonth bool
	Status         Status
	Label          int
	Completed      int
	Total          int
}

// ClassifyDay maps a completed/total habit count to a status.
func ClassifyDay(completed, total int) Status {
	switch {
	case total == 0 || completed == 0:
		return StatusNone
	case completed >= total:
		return StatusFull
	default:
		return StatusPartial
	}
}

// BuildMonthGrid lays out month in a Sunday-first, seven-column grid.
// Leading cells come from the previous month and trailing cells from the
// next one until the grid holds whole weeks; those cells are StatusOut.
func BuildMonthGrid(year int, month time.Month, habits []model.Habit, loc *time.Location) []Cell {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	days := dates.DaysInMonth(year, month)

	done := make([]map[string]struct{}, len(habits))
	for i, h := range habits {
		set := make(map[string]struct{}, len(h.CompletedDates))
		for _, d := range h.CompletedDates {
			set[d] = struct{}{}
		}
		done[i] = set
	}

	lead := int(first.Weekday())
	cells := make([]Cell, 0, 42)
	for i := lead; i > 0; i-- {
		cells = append(cells, outCell(dates.AddDays(first, -i)))
	}

	for d := 1; d <= days; d++ {
		key := dates.Key(time.Date(year, month, d, 0, 0, 0, 0, loc))
		completed := 0
		for _, set := range done {
			if _, ok := set[key]; ok {
				completed++
			}
		}
		cells = append(cells, Cell{
			Date:           key,
			InCurrentMonth: true,
			Status:         ClassifyDay(completed, len(habits)),
			Label:          d,
			Completed:      completed,
			Total:          len(habits),
		})
	}

	next := dates.AddDays(first, days)
	for len(cells)%7 != 0 {
		cells = append(cells, outCell(next))
		next = dates.AddDays(next, 1)
	}
	return cells
}

func outCell(day time.Time) Cell {
	return Cell{
		Date:   dates.Key(day),
		Status: StatusOut,
		Label:  day.Day(),
	}
}

// Weeks splits a grid into rows of seven.
func Weeks(cells []Cell) [][]Cell {
	rows := make([][]Cell, 0, len(cells)/7)
	for i := 0; i+7 <= len(cells); i += 7 {
		rows = append(rows, cells[i:i+7])
	}
	return rows
}
