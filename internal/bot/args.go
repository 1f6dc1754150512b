package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"life-goals/internal/api"
	"life-goals/internal/dates"
	"life-goals/internal/focus"
	"life-goals/internal/heatmap"
	"life-goals/internal/model"
	"life-goals/internal/service"
)

var errUsage = errors.New("usage")

func normalizeWord(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}

func matchCategory(raw string) (model.Category, bool) {
	key := normalizeWord(raw)
	for _, c := range model.Categories {
		if normalizeWord(string(c)) == key {
			return c, true
		}
	}
	return "", false
}

func matchPriority(raw string) (model.Priority, bool) {
	for _, p := range []model.Priority{model.PriorityHigh, model.PriorityMedium, model.PriorityLow} {
		if strings.EqualFold(raw, string(p)) {
			return p, true
		}
	}
	return "", false
}

var sortAliases = map[string]service.SortOption{
	"progress": service.SortProgressDesc,
	"deadline": service.SortEndDateAsc,
	"priority": service.SortPriorityDesc,
}

// ParseGoalFilter reads "/goals [category] [priority] [sort]" in any order.
// Two-word categories may be written with or without the space.
func ParseGoalFilter(args []string) (service.GoalFilter, error) {
	var f service.GoalFilter
	for i := 0; i < len(args); i++ {
		tok := args[i]
		if i+1 < len(args) {
			if c, ok := matchCategory(tok + args[i+1]); ok {
				f.Category = c
				i++
				continue
			}
		}
		if c, ok := matchCategory(tok); ok {
			f.Category = c
			continue
		}
		if p, ok := matchPriority(tok); ok {
			f.Priority = p
			continue
		}
		if s, ok := sortAliases[strings.ToLower(tok)]; ok {
			f.Sort = s
			continue
		}
		if s, ok := service.ParseSortOption(tok); ok {
			f.Sort = s
			continue
		}
		return f, fmt.Errorf("unknown filter %q", tok)
	}
	return f, nil
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

// parseIDAndText splits "<id> <text...>".
func parseIDAndText(args string) (uint, string, error) {
	head, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	id, err := parseID(head)
	if err != nil {
		return 0, "", err
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return 0, "", errUsage
	}
	return id, rest, nil
}

// ParseMonth reads "YYYY-MM"; empty means today's month.
func ParseMonth(raw string, today time.Time) (int, time.Month, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return today.Year(), today.Month(), nil
	}
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return 0, 0, fmt.Errorf("parse month %q: %w", raw, err)
	}
	return t.Year(), t.Month(), nil
}

// ParseHeatmapArgs reads "[year] [mode]" in any order.
func ParseHeatmapArgs(args []string, today time.Time) (int, heatmap.Mode, error) {
	year, mode := today.Year(), heatmap.ModeGoals
	for _, a := range args {
		if n, err := strconv.Atoi(a); err == nil {
			if n < 1970 || n > 9999 {
				return 0, "", fmt.Errorf("year %d out of range", n)
			}
			year = n
			continue
		}
		m, err := heatmap.ParseMode(a)
		if err != nil {
			return 0, "", err
		}
		mode = m
	}
	return year, mode, nil
}

// ParseDay reads "YYYY-MM-DD"; empty means today.
func ParseDay(raw string, today time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return dates.StartOfDay(today), nil
	}
	return dates.ParseKey(raw, today.Location())
}

// ParseFocusArgs maps "/focus" arguments to a timer event. ok is false for
// a plain status request.
func ParseFocusArgs(args []string) (e focus.Event, ok bool, err error) {
	if len(args) == 0 {
		return focus.Event{}, false, nil
	}
	switch strings.ToLower(args[0]) {
	case "status":
		return focus.Event{}, false, nil
	case "start", "resume":
		return focus.Start(), true, nil
	case "pause", "stop":
		return focus.Pause(), true, nil
	case "reset":
		return focus.Reset(), true, nil
	case "focus", "break":
		if len(args) < 2 {
			return focus.Event{}, false, errUsage
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 || n > 240 {
			return focus.Event{}, false, fmt.Errorf("minutes must be between 1 and 240")
		}
		if strings.EqualFold(args[0], "break") {
			return focus.SetBreakMinutes(n), true, nil
		}
		return focus.SetFocusMinutes(n), true, nil
	default:
		return focus.Event{}, false, errUsage
	}
}

// ApplyGoalEdit applies "<field> <value>" to in. A value of "-" clears the
// description or a date.
func ApplyGoalEdit(in api.GoalInput, edit string, loc *time.Location) (api.GoalInput, error) {
	name, value, _ := strings.Cut(strings.TrimSpace(edit), " ")
	value = strings.TrimSpace(value)
	if value == "" {
		return in, errUsage
	}
	unset := value == "-"

	switch service.GoalField(strings.ToLower(name)) {
	case service.FieldTitle:
		if unset {
			return in, fmt.Errorf("title cannot be cleared")
		}
		in.Title = value
	case service.FieldDescription:
		if unset {
			value = ""
		}
		in.Description = value
	case service.FieldCategory:
		c, ok := matchCategory(value)
		if !ok {
			return in, fmt.Errorf("unknown category %q", value)
		}
		in.Category = c
	case service.FieldPriority:
		p, ok := matchPriority(value)
		if !ok {
			return in, fmt.Errorf("unknown priority %q", value)
		}
		in.Priority = p
	case service.FieldStartDate, service.FieldEndDate:
		if unset {
			value = ""
		} else if _, err := dates.ParseKey(value, loc); err != nil {
			return in, fmt.Errorf("dates look like 2025-12-31")
		}
		if service.GoalField(strings.ToLower(name)) == service.FieldStartDate {
			in.StartDate = value
		} else {
			in.EndDate = value
		}
	default:
		return in, fmt.Errorf("unknown field %q", name)
	}
	return in, nil
}
