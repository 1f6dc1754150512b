package service

import (
	"fmt"
	"html"
	"strings"
	"time"

	"life-goals/internal/model"
	"life-goals/internal/store"
)

// SoonDays is how far ahead a deadline counts as upcoming.
const SoonDays = 3

// Notifications groups goals by deadline urgency.
type Notifications struct {
	Overdue   []model.Goal
	Today     []model.Goal
	Soon      []model.Goal
	Completed []model.Goal
}

// Empty reports whether there is nothing to show.
func (n Notifications) Empty() bool {
	return len(n.Overdue)+len(n.Today)+len(n.Soon)+len(n.Completed) == 0
}

// Count is the number of goals that still need attention.
func (n Notifications) Count() int {
	return len(n.Overdue) + len(n.Today) + len(n.Soon)
}

// ClassifyDeadlines sorts goals into notification groups. Finished goals
// are always completed; goals without an end date appear only then.
func ClassifyDeadlines(goals []model.Goal, today time.Time) Notifications {
	var n Notifications
	for _, g := range goals {
		if Progress(g) >= 100 {
			n.Completed = append(n.Completed, g)
			continue
		}
		diff, ok := DaysLeft(g, today)
		if !ok {
			continue
		}
		switch {
		case diff < 0:
			n.Overdue = append(n.Overdue, g)
		case diff == 0:
			n.Today = append(n.Today, g)
		case diff <= SoonDays:
			n.Soon = append(n.Soon, g)
		}
	}
	return n
}

// ReminderService builds the texts for notifications and scheduled reports.
type ReminderService struct{}

func NewReminderService() *ReminderService {
	return &ReminderService{}
}

// NotificationsText renders the notification center.
func (s *ReminderService) NotificationsText(goals []model.Goal, today time.Time) string {
	n := ClassifyDeadlines(goals, today)
	var b strings.Builder
	b.WriteString("🔔 <b>Notifications</b>\n")
	if n.Empty() {
		b.WriteString("\nAll clear. No deadlines need attention.")
		return b.String()
	}
	writeGoalGroup(&b, "⚠️ Overdue", n.Overdue, today)
	writeGoalGroup(&b, "📌 Due today", n.Today, today)
	writeGoalGroup(&b, "⏳ Due soon", n.Soon, today)
	writeGoalGroup(&b, "🏆 Completed", n.Completed, today)
	return strings.TrimSpace(b.String())
}

// DailySummary renders the scheduled morning report.
func (s *ReminderService) DailySummary(snap store.Snapshot, today time.Time) string {
	var b strings.Builder
	b.WriteString("📋 <b>Daily report</b>\n")
	fmt.Fprintf(&b, "🗓 %s\n", today.Format("Mon, 02 Jan 2006"))

	n := ClassifyDeadlines(snap.Goals, today)
	if n.Count() == 0 {
		b.WriteString("\n✅ No deadlines in the next few days.\n")
	} else {
		writeGoalGroup(&b, "⚠️ Overdue", n.Overdue, today)
		writeGoalGroup(&b, "📌 Due today", n.Today, today)
		writeGoalGroup(&b, "⏳ Due soon", n.Soon, today)
	}

	if len(snap.Habits) > 0 {
		open, _ := SplitByToday(snap.Habits, today)
		done, percent := TodayProgress(snap.Habits, today)
		fmt.Fprintf(&b, "\n🔁 <b>Habits</b> %d/%d (%d%%)\n", done, len(snap.Habits), percent)
		for _, h := range open {
			fmt.Fprintf(&b, "▫️ %s %s\n", HabitIcon(h.Title), html.EscapeString(h.Title))
		}
	}

	a := Analyze(snap.Goals)
	fmt.Fprintf(&b, "\n📈 %d goals · %d%% average · %d/%d tasks done",
		a.TotalGoals, a.AvgProgress, a.CompletedTasks, a.TotalTasks)
	return strings.TrimSpace(b.String())
}

func writeGoalGroup(b *strings.Builder, title string, goals []model.Goal, today time.Time) {
	if len(goals) == 0 {
		return
	}
	fmt.Fprintf(b, "\n<b>%s</b>\n", title)
	for _, g := range goals {
		b.WriteString(formatDeadline(g, today))
	}
}

func formatDeadline(g model.Goal, today time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "• %s <i>(%s)</i> %d%%", html.EscapeString(strings.TrimSpace(g.Title)), html.EscapeString(string(g.Category)), Progress(g))
	if diff, ok := DaysLeft(g, today); ok {
		switch {
		case diff < 0:
			fmt.Fprintf(&sb, "\n   ⏰ %s, %d d overdue", g.EndDate, -diff)
		case diff == 0:
			fmt.Fprintf(&sb, "\n   ⏰ %s, today", g.EndDate)
		default:
			fmt.Fprintf(&sb, "\n   ⏰ %s, %d d left", g.EndDate, diff)
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}
