package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"life-goals/internal/model"
	"life-goals/internal/service"
)

const (
	cbTask       = "task:"
	cbHabit      = "habit:"
	cbSuggest    = "suggest:"
	cbGenerate   = "gen:"
	cbAddDrafts  = "drafts:"
	cbDeleteGoal = "delgoal:"
	cbFocus      = "focus:"
	cbCancel     = "cancel:"
)

const (
	btnSkip   = "⏭️ Skip"
	btnCancel = "↩️ Cancel"

	menuGoals         = "🎯 Goals"
	menuHabits        = "🔁 Habits"
	menuWeek          = "🗓 Week"
	menuNotifications = "🔔 Alerts"
	menuFocus         = "⏱ Focus"
	menuStats         = "📊 Stats"
)

var menuCommands = map[string]string{
	menuGoals:         "goals",
	menuHabits:        "habits",
	menuWeek:          "week",
	menuNotifications: "notifications",
	menuFocus:         "focus",
	menuStats:         "stats",
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuGoals),
			tgbotapi.NewKeyboardButton(menuHabits),
			tgbotapi.NewKeyboardButton(menuWeek),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuNotifications),
			tgbotapi.NewKeyboardButton(menuFocus),
			tgbotapi.NewKeyboardButton(menuStats),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)))
	kb.ResizeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnSkip),
		tgbotapi.NewKeyboardButton(btnCancel),
	))
	kb.ResizeKeyboard = true
	return kb
}

func categoryKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, c := range model.Categories {
		row = append(row, tgbotapi.NewKeyboardButton(string(c)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func priorityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(string(model.PriorityHigh)),
			tgbotapi.NewKeyboardButton(string(model.PriorityMedium)),
			tgbotapi.NewKeyboardButton(string(model.PriorityLow)),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// goalKeyboard has one toggle button per task plus goal actions.
func goalKeyboard(g model.Goal) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range g.Tasks {
		label := fmt.Sprintf("%s %s", checkbox(t.Completed), shortTitle(t.Title, 28))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callbackData(cbTask, t.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("💡 Suggestions", callbackData(cbSuggest, g.ID)),
		tgbotapi.NewInlineKeyboardButtonData("🤖 Draft tasks", callbackData(cbGenerate, g.ID)),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🗑 Delete goal", callbackData(cbDeleteGoal, g.ID)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func habitsKeyboard(habits []model.Habit, todayKey string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, h := range habits {
		label := fmt.Sprintf("%s %s %s", checkbox(h.DoneOn(todayKey)), service.HabitIcon(h.Title), shortTitle(h.Title, 24))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callbackData(cbHabit, h.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func confirmDeleteKeyboard(goalID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Delete", fmt.Sprintf("%sconfirm:%d", cbDeleteGoal, goalID)),
		tgbotapi.NewInlineKeyboardButtonData("↩️ Keep", callbackData(cbCancel, goalID)),
	))
}

func draftsKeyboard(goalID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Add all", callbackData(cbAddDrafts, goalID)),
		tgbotapi.NewInlineKeyboardButtonData("↩️ Discard", callbackData(cbCancel, goalID)),
	))
}

func focusKeyboard(running bool) tgbotapi.InlineKeyboardMarkup {
	toggle := tgbotapi.NewInlineKeyboardButtonData("▶️ Start", cbFocus+"start")
	if running {
		toggle = tgbotapi.NewInlineKeyboardButtonData("⏸ Pause", cbFocus+"pause")
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		toggle,
		tgbotapi.NewInlineKeyboardButtonData("🔄 Reset", cbFocus+"reset"),
		tgbotapi.NewInlineKeyboardButtonData("🔃 Status", cbFocus+"status"),
	))
}

func callbackData(prefix string, id uint) string {
	return prefix + strconv.FormatUint(uint64(id), 10)
}

func parseCallbackID(data, prefix string) (uint, error) {
	raw := strings.TrimPrefix(data, prefix)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id in callback %q", data)
	}
	return uint(id), nil
}
