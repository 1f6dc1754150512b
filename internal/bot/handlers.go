package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"life-goals/internal/api"
	"life-goals/internal/calendar"
	"life-goals/internal/dates"
	"life-goals/internal/heatmap"
	"life-goals/internal/model"
	"life-goals/internal/service"
	"life-goals/internal/timeline"
)

const helpText = `<b>Goals</b>
/goals [category] [priority] [progress|deadline|priority] - list goals
/goal &lt;id&gt; - open a goal with its tasks
/newgoal - create a goal step by step
/editgoal &lt;id&gt; &lt;title|description|category|priority|start|end&gt; &lt;value&gt; - change a goal
/movegoal &lt;id&gt; &lt;position&gt; - reorder goals
/deletegoal &lt;id&gt; - delete a goal
/addtask &lt;goal id&gt; &lt;title&gt; - add a task
/done &lt;task id&gt; - toggle a task
/renametask &lt;task id&gt; &lt;title&gt; - rename a task
/deltask &lt;task id&gt; - delete a task
/suggest &lt;goal id&gt; - ideas for a goal

<b>Habits</b>
/habits - today's checklist
/habit &lt;id&gt; - check or uncheck today
/newhabit &lt;goal id&gt; &lt;title&gt; - create a habit
/renamehabit &lt;id&gt; &lt;title&gt; - rename a habit
/delhabit &lt;id&gt; - delete a habit

<b>Views</b>
/calendar [YYYY-MM] - habit month grid
/heatmap [year] [goals|completions|hybrid] - yearly activity
/week [YYYY-MM-DD] - weekly planner
/timeline - goals on a date axis
/notifications - deadlines
/stats - analytics
/report - today's summary
/focus [start|pause|reset|focus N|break N] - focus timer

<b>Account</b>
/login &lt;username&gt; &lt;password&gt; - link your account
/logout - unlink
/profile - account profile
/bio [text] - set or clear your bio
/refresh - reload data`

func (b *Bot) handleStart(chatID int64, user *model.User) error {
	name := user.FirstName
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hi, %s! I keep your life goals, tasks and habits at hand.\n\n", html.EscapeString(name))
	if user.Linked() {
		text += fmt.Sprintf("You are signed in as <b>%s</b>. Try %s or /help.", html.EscapeString(user.BackendUsername), menuGoals)
	} else {
		text += "Link your account with /login &lt;username&gt; &lt;password&gt; to begin."
	}
	return b.sendText(chatID, text)
}

func (b *Bot) handleHelp(chatID int64) error {
	return b.sendText(chatID, helpText)
}

func (b *Bot) handleLogin(ctx context.Context, msg *tgbotapi.Message, user *model.User) error {
	chatID := msg.Chat.ID
	// The message carries a password.
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, msg.MessageID)); err != nil {
		log.Printf("[warn] delete login message: %v", err)
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		return b.sendText(chatID, "Usage: /login &lt;username&gt; &lt;password&gt;")
	}
	if err := b.svc.Accounts.Login(ctx, user, args[0], args[1]); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return b.sendText(chatID, "❌ Wrong username or password.")
		}
		return b.replyError(chatID, err)
	}
	log.Printf("[info] user %d linked as %s", user.TelegramID, args[0])
	return b.sendText(chatID, fmt.Sprintf("✅ Signed in as <b>%s</b>. Your login message was removed.", html.EscapeString(args[0])))
}

func (b *Bot) handleLogout(ctx context.Context, chatID int64, user *model.User) error {
	if err := b.svc.Accounts.Logout(ctx, user); err != nil {
		return err
	}
	b.dropDraft(chatID)
	return b.sendText(chatID, "👋 Signed out.")
}

func (b *Bot) handleRefresh(ctx context.Context, chatID int64, user *model.User) error {
	snap, err := b.svc.Accounts.Refresh(ctx, user)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("🔄 Reloaded %d goals and %d habits.", len(snap.Goals), len(snap.Habits)))
}

func (b *Bot) handleGoals(ctx context.Context, chatID int64, user *model.User, args string) error {
	filter, err := ParseGoalFilter(strings.Fields(args))
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("%s\nCategories: %s\nSort: progress, deadline, priority",
			html.EscapeString(err.Error()), html.EscapeString(categoryNames())))
	}
	snap, err := b.svc.Accounts.Snapshot(ctx, user)
	if err != nil {
		return b.replyError(chatID, err)
	}
	goals := service.FilterGoals(snap.Goals, filter)
	return b.sendText(chatID, RenderGoalList(goals, filter, b.today()))
}

func categoryNames() string {
	names := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func (b *Bot) handleGoal(ctx context.Context, chatID int64, user *model.User, args string) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /goal &lt;id&gt;")
	}
	return b.sendGoal(ctx, chatID, user, id)
}

func (b *Bot) sendGoal(ctx context.Context, chatID int64, user *model.User, goalID uint) error {
	goal, err := b.svc.Goals.Goal(ctx, user, goalID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	snap, _ := b.svc.Accounts.Snapshot(ctx, user)
	return b.sendWithMarkup(chatID, RenderGoal(goal, snap.Habits, b.today()), goalKeyboard(goal))
}

func (b *Bot) handleDeleteGoal(ctx context.Context, chatID int64, user *model.User, args string) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /deletegoal &lt;id&gt;")
	}
	return b.askDeleteGoal(ctx, chatID, user, id)
}

func (b *Bot) askDeleteGoal(ctx context.Context, chatID int64, user *model.User, goalID uint) error {
	goal, err := b.svc.Goals.Goal(ctx, user, goalID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	text := fmt.Sprintf("🗑 Delete <b>%s</b> with its %d tasks?", html.EscapeString(goal.Title), len(goal.Tasks))
	return b.sendWithMarkup(chatID, text, confirmDeleteKeyboard(goal.ID))
}

func (b *Bot) handleEditGoal(ctx context.Context, chatID int64, user *model.User, args string) error {
	usage := "Usage: /editgoal &lt;id&gt; &lt;title|description|category|priority|start|end&gt; &lt;value&gt;\nUse - to clear the description or a date."
	id, rest, err := parseIDAndText(args)
	if err != nil {
		return b.sendText(chatID, usage)
	}
	current, err := b.svc.Goals.Goal(ctx, user, id)
	if err != nil {
		return b.replyError(chatID, err)
	}
	in, err := ApplyGoalEdit(service.GoalInputOf(current), rest, b.loc)
	if err != nil {
		return b.sendText(chatID, html.EscapeString(err.Error())+"\n"+usage)
	}
	goal, err := b.svc.Goals.UpdateGoal(ctx, user, id, in)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("✏️ Goal <b>%s</b> updated.", html.EscapeString(goal.Title)))
}

func (b *Bot) handleMoveGoal(ctx context.Context, chatID int64, user *model.User, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return b.sendText(chatID, "Usage: /movegoal &lt;id&gt; &lt;position&gt;")
	}
	id, err := parseID(fields[0])
	if err != nil {
		return b.sendText(chatID, "Usage: /movegoal &lt;id&gt; &lt;position&gt;")
	}
	pos, err := strconv.Atoi(fields[1])
	if err != nil || pos < 1 {
		return b.sendText(chatID, "Position starts at 1.")
	}
	if err := b.svc.Goals.ReorderGoal(ctx, user, id, pos-1); err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("↕️ Goal moved to position %d.", pos))
}

func (b *Bot) handleRenameTask(ctx context.Context, chatID int64, user *model.User, args string) error {
	id, title, err := parseIDAndText(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /renametask &lt;task id&gt; &lt;title&gt;")
	}
	task, err := b.svc.Goals.RenameTask(ctx, user, id, title)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("✏️ Task renamed to <b>%s</b>.", html.EscapeString(task.Title)))
}

func (b *Bot) handleDone(ctx context.Context, chatID int64, user *model.User, args string) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /done &lt;task id&gt;")
	}
	task, goal, err := b.svc.Goals.ToggleTask(ctx, user, id)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, toggledTaskText(task, goal))
}

func toggledTaskText(task model.Task, goal model.Goal) string {
	verb := "reopened"
	if task.Completed {
		verb = "done"
	}
	p := service.Progress(goal)
	text := fmt.Sprintf("%s <b>%s</b> %s.\n%s: %s %d%%", checkbox(task.Completed), html.EscapeString(task.Title), verb,
		html.EscapeString(goal.Title), ProgressBar(p, 10), p)
	if p == 100 && task.Completed {
		text += "\n🏆 Goal complete!"
	}
	return text
}

func (b *Bot) handleAddTask(ctx context.Context, chatID int64, user *model.User, args string) error {
	goalID, title, err := parseIDAndText(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /addtask &lt;goal id&gt; &lt;title&gt;")
	}
	task, err := b.svc.Goals.AddTask(ctx, user, goalID, title)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("➕ Task <b>%s</b> added (#%d).", html.EscapeString(task.Title), task.ID))
}

func (b *Bot) handleDeleteTask(ctx context.Context, chatID int64, user *model.User, args string) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /deltask &lt;task id&gt;")
	}
	if err := b.svc.Goals.DeleteTask(ctx, user, id); err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, "🗑 Task deleted.")
}

func (b *Bot) handleSuggest(ctx context.Context, chatID int64, user *model.User, args string) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /suggest &lt;goal id&gt;")
	}
	return b.sendSuggestions(ctx, chatID, user, id)
}

func (b *Bot) sendSuggestions(ctx context.Context, chatID int64, user *model.User, goalID uint) error {
	goal, err := b.svc.Goals.Goal(ctx, user, goalID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	list, err := b.svc.Goals.Suggestions(ctx, user, goalID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, RenderSuggestions("Ideas for "+goal.Title, list))
}

func (b *Bot) sendDrafts(ctx context.Context, chatID int64, user *model.User, goalID uint) error {
	titles, err := b.svc.Goals.GenerateTasks(ctx, user, goalID, 0)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if len(titles) == 0 {
		return b.sendText(chatID, "No drafts this time.")
	}
	b.setDraft(chatID, draft{goalID: goalID, titles: titles})
	return b.sendWithMarkup(chatID, RenderSuggestions("Drafted tasks", titles), draftsKeyboard(goalID))
}

func (b *Bot) handleHabits(ctx context.Context, chatID int64, user *model.User) error {
	snap, err := b.svc.Accounts.Snapshot(ctx, user)
	if err != nil {
		return b.replyError(chatID, err)
	}
	today := b.today()
	return b.sendWithMarkup(chatID, RenderHabits(snap.Habits, today), habitsKeyboard(snap.Habits, dates.Key(today)))
}

func (b *Bot) handleHabit(ctx context.Context, chatID int64, user *model.User, args string) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /habit &lt;id&gt;")
	}
	habit, checked, err := b.svc.Habits.Toggle(ctx, user, id)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, toggledHabitText(*habit, checked))
}

func toggledHabitText(h model.Habit, checked bool) string {
	if checked {
		return fmt.Sprintf("✅ %s <b>%s</b> done today. 🔥%d", service.HabitIcon(h.Title), html.EscapeString(h.Title), service.HabitStreak(h.CompletedDates))
	}
	return fmt.Sprintf("⬜ %s <b>%s</b> unchecked for today.", service.HabitIcon(h.Title), html.EscapeString(h.Title))
}

func (b *Bot) handleNewHabit(ctx context.Context, chatID int64, user *model.User, args string) error {
	goalID, title, err := parseIDAndText(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /newhabit &lt;goal id&gt; &lt;title&gt;")
	}
	habit, err := b.svc.Habits.Create(ctx, user, goalID, title)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("%s Habit <b>%s</b> created (#%d).", service.HabitIcon(habit.Title), html.EscapeString(habit.Title), habit.ID))
}

func (b *Bot) handleRenameHabit(ctx context.Context, chatID int64, user *model.User, args string) error {
	id, title, err := parseIDAndText(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /renamehabit &lt;id&gt; &lt;title&gt;")
	}
	habit, err := b.svc.Habits.Rename(ctx, user, id, title)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("✏️ Habit renamed to <b>%s</b>.", html.EscapeString(habit.Title)))
}

func (b *Bot) handleDeleteHabit(ctx context.Context, chatID int64, user *model.User, args string) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /delhabit &lt;id&gt;")
	}
	if err := b.svc.Habits.Delete(ctx, user, id); err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, "🗑 Habit deleted.")
}

func (b *Bot) handleCalendar(ctx context.Context, chatID int64, user *model.User, args string) error {
	year, month, err := ParseMonth(args, b.today())
	if err != nil {
		return b.sendText(chatID, "Usage: /calendar [YYYY-MM]")
	}
	snap, err := b.svc.Accounts.Snapshot(ctx, user)
	if err != nil {
		return b.replyError(chatID, err)
	}
	cells := calendar.BuildMonthGrid(year, month, snap.Habits, b.loc)
	return b.sendText(chatID, "📅 "+pre(RenderMonth(year, month, cells)))
}

func (b *Bot) handleHeatmap(ctx context.Context, chatID int64, user *model.User, args string) error {
	year, mode, err := ParseHeatmapArgs(strings.Fields(args), b.today())
	if err != nil {
		return b.sendText(chatID, "Usage: /heatmap [year] [goals|completions|hybrid]")
	}
	snap, err := b.svc.Accounts.Snapshot(ctx, user)
	if err != nil {
		return b.replyError(chatID, err)
	}
	result := heatmap.Aggregate(snap.Goals, year, b.loc)
	return b.sendText(chatID, "🟩 <b>Activity</b>\n"+pre(RenderHeatmap(result, mode)))
}

func (b *Bot) handleWeek(ctx context.Context, chatID int64, user *model.User, args string) error {
	anchor, err := ParseDay(args, b.today())
	if err != nil {
		return b.sendText(chatID, "Usage: /week [YYYY-MM-DD]")
	}
	snap, err := b.svc.Accounts.Snapshot(ctx, user)
	if err != nil {
		return b.replyError(chatID, err)
	}
	plan := calendar.PlanWeek(snap.Goals, anchor)
	return b.sendText(chatID, "🗓 <b>Week</b>\n"+pre(RenderWeek(plan, b.today())))
}

func (b *Bot) handleTimeline(ctx context.Context, chatID int64, user *model.User) error {
	snap, err := b.svc.Accounts.Snapshot(ctx, user)
	if err != nil {
		return b.replyError(chatID, err)
	}
	tl := timeline.Build(snap.Goals, b.today())
	return b.sendText(chatID, "📊 <b>Timeline</b>\n"+pre(RenderTimeline(tl)))
}

func (b *Bot) handleNotifications(ctx context.Context, chatID int64, user *model.User) error {
	snap, err := b.svc.Accounts.Snapshot(ctx, user)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, b.svc.Reminders.NotificationsText(snap.Goals, b.today()))
}

func (b *Bot) handleStats(ctx context.Context, chatID int64, user *model.User) error {
	snap, err := b.svc.Accounts.Snapshot(ctx, user)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, RenderStats(service.Analyze(snap.Goals)))
}

func (b *Bot) handleReport(ctx context.Context, chatID int64, user *model.User) error {
	snap, err := b.svc.Accounts.Snapshot(ctx, user)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, b.svc.Reminders.DailySummary(snap, b.today()))
}

func (b *Bot) handleFocus(ctx context.Context, chatID int64, user *model.User, args string) error {
	event, ok, err := ParseFocusArgs(strings.Fields(args))
	if err != nil {
		return b.sendText(chatID, "Usage: /focus [start|pause|reset|focus N|break N]")
	}
	state, stats := b.svc.Focus.Status(ctx, user)
	if ok {
		state, stats = b.svc.Focus.Dispatch(ctx, user, event)
	}
	return b.sendWithMarkup(chatID, RenderFocus(state, stats), focusKeyboard(state.Running))
}

func (b *Bot) handleProfile(ctx context.Context, chatID int64, user *model.User) error {
	profile, err := b.svc.Accounts.Profile(ctx, user)
	if err != nil {
		return b.replyError(chatID, err)
	}
	snap, err := b.svc.Accounts.Snapshot(ctx, user)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, RenderProfile(*profile, service.Analyze(snap.Goals), len(snap.Habits)))
}

func (b *Bot) handleBio(ctx context.Context, chatID int64, user *model.User, args string) error {
	profile, err := b.svc.Accounts.SetBio(ctx, user, args)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if profile.Bio == "" {
		return b.sendText(chatID, "Bio cleared.")
	}
	return b.sendText(chatID, "✏️ Bio updated: <i>"+html.EscapeString(profile.Bio)+"</i>")
}
