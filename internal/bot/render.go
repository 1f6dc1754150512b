package bot

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"life-goals/internal/calendar"
	"life-goals/internal/dates"
	"life-goals/internal/focus"
	"life-goals/internal/heatmap"
	"life-goals/internal/model"
	"life-goals/internal/service"
	"life-goals/internal/timeline"
)

// The Render* functions return plain text. The bot wraps grids in <pre>
// and the CLI prints them as they are.

var statusMarks = map[calendar.Status]string{
	calendar.StatusFull:    "●",
	calendar.StatusPartial: "◐",
	calendar.StatusNone:    "○",
}

// RenderMonth draws a habit month grid.
func RenderMonth(year int, month time.Month, cells []calendar.Cell) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", month, year)
	b.WriteString(" Su  Mo  Tu  We  Th  Fr  Sa\n")
	for _, week := range calendar.Weeks(cells) {
		cols := make([]string, len(week))
		for i, c := range week {
			if c.Status == calendar.StatusOut {
				cols[i] = fmt.Sprintf("%2d ", c.Label)
				continue
			}
			cols[i] = fmt.Sprintf("%2d%s", c.Label, statusMarks[c.Status])
		}
		b.WriteString(strings.Join(cols, " "))
		b.WriteByte('\n')
	}
	b.WriteString("● all  ◐ some  ○ none")
	return b.String()
}

var bucketGlyphs = map[heatmap.Bucket]rune{
	heatmap.BucketOut:  ' ',
	heatmap.BucketNone: '·',
	heatmap.Bucket1:    '░',
	heatmap.Bucket2:    '▒',
	heatmap.Bucket3:    '▓',
	heatmap.Bucket4:    '█',
}

var weekdayRows = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// RenderHeatmap draws the year grid, one column per week.
func RenderHeatmap(r heatmap.Result, mode heatmap.Mode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d · %s\n", r.Year, mode)

	labels := []rune(strings.Repeat(" ", len(r.Weeks)+3))
	weeks := make([]int, 0, len(r.MonthLabels))
	for w := range r.MonthLabels {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	free := 0
	for _, w := range weeks {
		name := []rune(r.MonthLabels[w].String()[:3])
		if w < free {
			continue
		}
		copy(labels[w:], name)
		free = w + len(name) + 1
	}
	b.WriteString("    ")
	b.WriteString(strings.TrimRight(string(labels), " "))
	b.WriteByte('\n')

	for day := 0; day < 7; day++ {
		b.WriteString(weekdayRows[day])
		b.WriteByte(' ')
		for _, week := range r.Weeks {
			b.WriteRune(bucketGlyphs[r.Classify(week[day], mode)])
		}
		b.WriteByte('\n')
	}
	b.WriteString("less ·░▒▓█ more\n\n")

	fmt.Fprintf(&b, "Active days:     %d\n", r.ActiveDayCount)
	fmt.Fprintf(&b, "Tasks completed: %d\n", r.TotalTasksCompleted)
	if r.BestDay != nil {
		fmt.Fprintf(&b, "Best day:        %s (%d)\n", r.BestDay.Key, r.BestDay.Count)
	} else {
		b.WriteString("Best day:        -\n")
	}
	fmt.Fprintf(&b, "Longest streak:  %d d\n", r.LongestStreak)
	fmt.Fprintf(&b, "Current streak:  %d d", r.CurrentStreak)
	return b.String()
}

// RenderWeek lists the goals active on each day of a planner week.
func RenderWeek(plan []calendar.PlannerDay, today time.Time) string {
	var b strings.Builder
	if len(plan) > 0 {
		fmt.Fprintf(&b, "Week of %s\n", plan[0].Date.Format("02 Jan 2006"))
	}
	todayKey := dates.Key(today)
	for _, day := range plan {
		marker := " "
		if day.Key == todayKey {
			marker = "▶"
		}
		fmt.Fprintf(&b, "\n%s %s\n", marker, day.Date.Format("Mon 02 Jan"))
		if len(day.Goals) == 0 {
			b.WriteString("   -\n")
			continue
		}
		for _, g := range day.Goals {
			fmt.Fprintf(&b, "   • %s (%d%%)\n", g.Title, service.Progress(g))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

const timelineWidth = 28

// RenderTimeline draws every goal as a bar on a shared date axis. The
// filled part of a bar is the goal's task progress.
func RenderTimeline(tl timeline.Timeline) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s → %s (%d d)\n", tl.Start.Format("02 Jan 2006"), tl.End.Format("02 Jan 2006"), tl.Days)
	if len(tl.Active)+len(tl.Completed) == 0 {
		b.WriteString("\nNo goals yet.")
		return b.String()
	}
	if tl.TodayOffset >= 0 {
		col := timelineCol(tl.TodayOffset, tl.Days)
		if col >= timelineWidth {
			col = timelineWidth - 1
		}
		fmt.Fprintf(&b, "  %s▼ today\n", strings.Repeat(" ", col))
	}

	sections := []struct {
		title string
		bars  []timeline.Bar
	}{
		{"Active", tl.Active},
		{"Completed", tl.Completed},
	}
	for _, sec := range sections {
		if len(sec.bars) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s (%d)\n", sec.title, len(sec.bars))
		for _, bar := range sec.bars {
			writeTimelineBar(&b, bar, tl.Days)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeTimelineBar(b *strings.Builder, bar timeline.Bar, days int) {
	fmt.Fprintf(b, "• %s\n", shortTitle(bar.Goal.Title, 32))
	fmt.Fprintf(b, "  %s\n", timelineBarLine(bar, days))
	fmt.Fprintf(b, "  %s → %s · %d%% · %d/%d tasks",
		bar.Start.Format("02 Jan"), bar.End.Format("02 Jan"), bar.Progress, bar.DoneTasks, bar.TotalTasks)
	if bar.DependsOn != nil {
		fmt.Fprintf(b, " · after %s", shortTitle(bar.DependsOn.Title, 20))
	}
	b.WriteString("\n")
	if len(bar.Milestones) > 0 {
		marks := make([]string, 0, len(bar.Milestones))
		for i, m := range bar.Milestones {
			if i == 10 {
				marks = append(marks, "…")
				break
			}
			marks = append(marks, checkbox(m.Completed))
		}
		fmt.Fprintf(b, "  %s\n", strings.Join(marks, ""))
	}
}

func timelineCol(day, days int) int {
	col := day * timelineWidth / days
	if col < 0 {
		return 0
	}
	if col > timelineWidth {
		return timelineWidth
	}
	return col
}

func timelineBarLine(bar timeline.Bar, days int) string {
	left := timelineCol(bar.Offset, days)
	right := timelineCol(bar.Offset+bar.Length, days)
	if right <= left {
		right = left + 1
	}
	if right > timelineWidth {
		right = timelineWidth
		if left >= right {
			left = right - 1
		}
	}
	filled := ((right-left)*bar.Progress + 50) / 100

	line := make([]rune, timelineWidth)
	for i := range line {
		switch {
		case i < left || i >= right:
			line[i] = '·'
		case i < left+filled:
			line[i] = '█'
		default:
			line[i] = '░'
		}
	}
	return string(line)
}

// ProgressBar renders percent as a fixed-width bar.
func ProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := (percent*width + 50) / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// RenderFocus describes a focus timer and today's stats.
func RenderFocus(state focus.State, stats focus.Stats) string {
	icon, label := "🎯", "Focus"
	if state.Mode == focus.ModeBreak {
		icon, label = "☕", "Break"
	}
	run := "paused"
	if state.Running {
		run = "running"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s</b> %s (%s)\n", icon, label, focus.Format(state.Remaining), run)
	fmt.Fprintf(&b, "%s %d%%\n", ProgressBar(int(state.Progress()), 20), int(state.Progress()))
	fmt.Fprintf(&b, "Focus %d min · Break %d min\n\n", state.FocusMinutes, state.BreakMinutes)
	fmt.Fprintf(&b, "Today: %d sessions · %d min\n", stats.SessionsToday, stats.TotalMinutesToday)
	fmt.Fprintf(&b, "Streak: %d d 🔥", stats.StreakDays)
	return b.String()
}

// RenderTransition announces a mode switch.
func RenderTransition(tr focus.Transition) string {
	if tr.Effect.SessionCompleted {
		return fmt.Sprintf("🎉 Focus session done (%d min). Break for %d min.\nToday: %d sessions · %d min",
			tr.Effect.Minutes, tr.To.BreakMinutes, tr.Stats.SessionsToday, tr.Stats.TotalMinutesToday)
	}
	return fmt.Sprintf("⏰ Break is over. Focus for %d min.", tr.To.FocusMinutes)
}

// RenderGoalList renders active and completed goals.
func RenderGoalList(goals []model.Goal, f service.GoalFilter, today time.Time) string {
	var b strings.Builder
	b.WriteString("🎯 <b>Goals</b>")
	if desc := describeFilter(f); desc != "" {
		fmt.Fprintf(&b, " <i>%s</i>", html.EscapeString(desc))
	}
	b.WriteByte('\n')
	if len(goals) == 0 {
		b.WriteString("\nNo goals match.")
		return b.String()
	}

	active, completed := service.SplitByCompletion(goals)
	if len(active) > 0 {
		b.WriteString("\n<b>Active</b>\n")
		for _, g := range active {
			b.WriteString(goalLine(g, today))
		}
	}
	if len(completed) > 0 {
		b.WriteString("\n<b>Completed</b>\n")
		for _, g := range completed {
			fmt.Fprintf(&b, "🏆 #%d %s\n", g.ID, html.EscapeString(g.Title))
		}
	}
	b.WriteString("\nOpen one with /goal &lt;id&gt;")
	return b.String()
}

func describeFilter(f service.GoalFilter) string {
	var parts []string
	if f.Category != "" {
		parts = append(parts, string(f.Category))
	}
	if f.Priority != "" {
		parts = append(parts, string(f.Priority))
	}
	if f.Sort != "" {
		parts = append(parts, "sorted by "+string(f.Sort))
	}
	return strings.Join(parts, " · ")
}

func goalLine(g model.Goal, today time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>#%d %s</b> · %s\n", priorityIcon(g.Priority), g.ID, html.EscapeString(g.Title), html.EscapeString(string(g.Category)))
	p := service.Progress(g)
	fmt.Fprintf(&b, "   %s %d%% · %d/%d tasks", ProgressBar(p, 10), p, g.CompletedTasks(), len(g.Tasks))
	if s := deadlineText(g, today); s != "" {
		fmt.Fprintf(&b, " · %s", s)
	}
	b.WriteByte('\n')
	return b.String()
}

func priorityIcon(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "🔴"
	case model.PriorityMedium:
		return "🟡"
	case model.PriorityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

func deadlineText(g model.Goal, today time.Time) string {
	n, ok := service.DaysLeft(g, today)
	switch {
	case !ok:
		return ""
	case n < 0:
		return fmt.Sprintf("⚠️ %d d overdue", -n)
	case n == 0:
		return "📌 due today"
	default:
		return fmt.Sprintf("⏰ %d d left", n)
	}
}

// RenderGoal renders a goal with its tasks.
func RenderGoal(g model.Goal, habits []model.Habit, today time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s</b>\n", priorityIcon(g.Priority), html.EscapeString(g.Title))
	fmt.Fprintf(&b, "%s · %s priority\n", html.EscapeString(string(g.Category)), html.EscapeString(string(g.Priority)))
	if d := strings.TrimSpace(g.Description); d != "" {
		fmt.Fprintf(&b, "📝 %s\n", html.EscapeString(d))
	}
	if g.StartDate != "" || g.EndDate != "" {
		fmt.Fprintf(&b, "🗓 %s → %s", orDash(g.StartDate), orDash(g.EndDate))
		if s := deadlineText(g, today); s != "" {
			fmt.Fprintf(&b, " (%s)", s)
		}
		b.WriteByte('\n')
	}
	p := service.Progress(g)
	fmt.Fprintf(&b, "%s %d%%\n", ProgressBar(p, 20), p)

	b.WriteString("\n<b>Tasks</b>\n")
	if len(g.Tasks) == 0 {
		fmt.Fprintf(&b, "No tasks yet. Add one with /addtask %d &lt;title&gt;\n", g.ID)
	}
	for _, t := range g.Tasks {
		fmt.Fprintf(&b, "%s %s <i>#%d</i>\n", checkbox(t.Completed), html.EscapeString(t.Title), t.ID)
	}

	linked := service.FilterHabitsByGoal(habits, g.ID)
	if len(linked) > 0 {
		b.WriteString("\n<b>Habits</b>\n")
		for _, h := range linked {
			fmt.Fprintf(&b, "%s %s 🔥%d\n", service.HabitIcon(h.Title), html.EscapeString(h.Title), service.HabitStreak(h.CompletedDates))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func checkbox(done bool) string {
	if done {
		return "✅"
	}
	return "⬜"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// RenderHabits renders today's habit checklist.
func RenderHabits(habits []model.Habit, today time.Time) string {
	var b strings.Builder
	done, percent := service.TodayProgress(habits, today)
	fmt.Fprintf(&b, "🔁 <b>Habits</b> %d/%d today\n%s %d%%\n", done, len(habits), ProgressBar(percent, 20), percent)
	if len(habits) == 0 {
		b.WriteString("\nNo habits yet. Create one with /newhabit &lt;goal id&gt; &lt;title&gt;")
		return b.String()
	}

	week := service.LastSevenDays(today)
	open, closed := service.SplitByToday(habits, today)
	section := func(title string, list []model.Habit) {
		if len(list) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n<b>%s</b>\n", title)
		for _, h := range list {
			fmt.Fprintf(&b, "%s %s <i>#%d</i> 🔥%d\n   <code>%s</code>\n",
				service.HabitIcon(h.Title), html.EscapeString(h.Title), h.ID,
				service.HabitStreak(h.CompletedDates), lastWeek(h, week))
		}
	}
	section("To do", open)
	section("Done", closed)
	return strings.TrimRight(b.String(), "\n")
}

func lastWeek(h model.Habit, week []service.DayMark) string {
	var labels, marks strings.Builder
	for _, d := range week {
		labels.WriteString(d.Label)
		if h.DoneOn(d.Key) {
			marks.WriteString("■")
		} else {
			marks.WriteString("□")
		}
	}
	return labels.String() + " " + marks.String()
}

// RenderStats renders the analytics dashboard.
func RenderStats(a service.Analytics) string {
	var b strings.Builder
	b.WriteString("📊 <b>Stats</b>\n\n")
	fmt.Fprintf(&b, "Goals: %d (%d completed)\n", a.TotalGoals, a.CompletedGoals)
	fmt.Fprintf(&b, "Average progress: %s %d%%\n", ProgressBar(a.AvgProgress, 10), a.AvgProgress)
	fmt.Fprintf(&b, "Tasks: %d done · %d remaining\n", a.CompletedTasks, a.RemainingTasks())
	if len(a.ByCategory) > 0 {
		b.WriteString("\n<b>By category</b>\n")
		for _, c := range model.Categories {
			if n := a.ByCategory[c]; n > 0 {
				fmt.Fprintf(&b, "%s: %d\n", html.EscapeString(string(c)), n)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderProfile shows the backend profile with goal and habit totals.
func RenderProfile(p model.Profile, a service.Analytics, habits int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 <b>%s</b>\n", html.EscapeString(p.Username))
	if bio := strings.TrimSpace(p.Bio); bio != "" {
		fmt.Fprintf(&b, "<i>%s</i>\n", html.EscapeString(bio))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Goals: %d (%d completed)\n", a.TotalGoals, a.CompletedGoals)
	fmt.Fprintf(&b, "Tasks: %d/%d done\n", a.CompletedTasks, a.TotalTasks)
	fmt.Fprintf(&b, "Habits: %d\n", habits)
	if p.Theme != "" {
		fmt.Fprintf(&b, "Theme: %s\n", html.EscapeString(p.Theme))
	}
	b.WriteString("\nChange the bio with /bio &lt;text&gt;.")
	return b.String()
}

// RenderSuggestions lists numbered backend suggestions.
func RenderSuggestions(title string, items []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💡 <b>%s</b>\n", html.EscapeString(title))
	if len(items) == 0 {
		b.WriteString("Nothing to suggest right now.")
		return b.String()
	}
	for i, s := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, html.EscapeString(s))
	}
	return strings.TrimRight(b.String(), "\n")
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// PlainText strips Telegram HTML markup.
func PlainText(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}

func pre(s string) string {
	return "<pre>" + html.EscapeString(s) + "</pre>"
}

func shortTitle(title string, max int) string {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) <= max {
		return title
	}
	r := []rune(title)
	return string(r[:max-1]) + "…"
}
