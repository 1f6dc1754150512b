package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"life-goals/internal/dates"
	"life-goals/internal/focus"
	"life-goals/internal/model"
)

func (b *Bot) answer(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		log.Printf("[warn] callback ack: %v", err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	user, err := b.ensureUser(ctx, cb.From)
	if err != nil {
		b.answer(cb, "")
		return err
	}

	data := cb.Data
	chatID := cb.Message.Chat.ID
	log.Printf("[info] callback %q user=%d", data, cb.From.ID)

	switch {
	case strings.HasPrefix(data, cbTask):
		id, err := parseCallbackID(data, cbTask)
		if err != nil {
			b.answer(cb, "")
			return nil
		}
		return b.toggleTaskFromCallback(ctx, cb, user, id)
	case strings.HasPrefix(data, cbHabit):
		id, err := parseCallbackID(data, cbHabit)
		if err != nil {
			b.answer(cb, "")
			return nil
		}
		return b.toggleHabitFromCallback(ctx, cb, user, id)
	case strings.HasPrefix(data, cbSuggest):
		b.answer(cb, "")
		id, err := parseCallbackID(data, cbSuggest)
		if err != nil {
			return nil
		}
		return b.sendSuggestions(ctx, chatID, user, id)
	case strings.HasPrefix(data, cbGenerate):
		b.answer(cb, "Drafting…")
		id, err := parseCallbackID(data, cbGenerate)
		if err != nil {
			return nil
		}
		return b.sendDrafts(ctx, chatID, user, id)
	case strings.HasPrefix(data, cbAddDrafts):
		b.answer(cb, "")
		id, err := parseCallbackID(data, cbAddDrafts)
		if err != nil {
			return nil
		}
		return b.addDrafts(ctx, chatID, user, id)
	case strings.HasPrefix(data, cbDeleteGoal+"confirm:"):
		b.answer(cb, "")
		id, err := parseCallbackID(data, cbDeleteGoal+"confirm:")
		if err != nil {
			return nil
		}
		if err := b.svc.Goals.DeleteGoal(ctx, user, id); err != nil {
			return b.replyError(chatID, err)
		}
		return b.sendText(chatID, "🗑 Goal deleted.")
	case strings.HasPrefix(data, cbDeleteGoal):
		b.answer(cb, "")
		id, err := parseCallbackID(data, cbDeleteGoal)
		if err != nil {
			return nil
		}
		return b.askDeleteGoal(ctx, chatID, user, id)
	case strings.HasPrefix(data, cbFocus):
		return b.focusFromCallback(ctx, cb, user, strings.TrimPrefix(data, cbFocus))
	case strings.HasPrefix(data, cbCancel):
		b.answer(cb, "Cancelled")
		b.dropDraft(chatID)
		return nil
	default:
		b.answer(cb, "")
		return nil
	}
}

func (b *Bot) toggleTaskFromCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, user *model.User, taskID uint) error {
	chatID := cb.Message.Chat.ID
	task, goal, err := b.svc.Goals.ToggleTask(ctx, user, taskID)
	if err != nil {
		b.answer(cb, "")
		return b.replyError(chatID, err)
	}
	b.answer(cb, fmt.Sprintf("%s %s", checkbox(task.Completed), shortTitle(task.Title, 40)))

	snap, _ := b.svc.Accounts.Snapshot(ctx, user)
	if err := b.editWithMarkup(chatID, cb.Message.MessageID, RenderGoal(goal, snap.Habits, b.today()), goalKeyboard(goal)); err != nil {
		log.Printf("[warn] edit goal message: %v", err)
	}
	return nil
}

func (b *Bot) toggleHabitFromCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, user *model.User, habitID uint) error {
	chatID := cb.Message.Chat.ID
	habit, checked, err := b.svc.Habits.Toggle(ctx, user, habitID)
	if err != nil {
		b.answer(cb, "")
		return b.replyError(chatID, err)
	}
	b.answer(cb, PlainText(toggledHabitText(*habit, checked)))

	snap, err := b.svc.Accounts.Snapshot(ctx, user)
	if err != nil {
		return nil
	}
	today := b.today()
	if err := b.editWithMarkup(chatID, cb.Message.MessageID, RenderHabits(snap.Habits, today), habitsKeyboard(snap.Habits, dates.Key(today))); err != nil {
		log.Printf("[warn] edit habits message: %v", err)
	}
	return nil
}

func (b *Bot) addDrafts(ctx context.Context, chatID int64, user *model.User, goalID uint) error {
	d, ok := b.takeDraft(chatID, goalID)
	if !ok {
		return b.sendText(chatID, "Those drafts have expired. Ask for new ones from /goal.")
	}
	if err := b.svc.Goals.AddGeneratedTasks(ctx, user, goalID, d.titles); err != nil {
		return b.replyError(chatID, err)
	}
	if err := b.sendText(chatID, fmt.Sprintf("➕ Added %d tasks.", len(d.titles))); err != nil {
		return err
	}
	return b.sendGoal(ctx, chatID, user, goalID)
}

func (b *Bot) focusFromCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, user *model.User, action string) error {
	var (
		state focus.State
		stats focus.Stats
	)
	switch action {
	case "start":
		state, stats = b.svc.Focus.Dispatch(ctx, user, focus.Start())
	case "pause":
		state, stats = b.svc.Focus.Dispatch(ctx, user, focus.Pause())
	case "reset":
		state, stats = b.svc.Focus.Dispatch(ctx, user, focus.Reset())
	default:
		state, stats = b.svc.Focus.Status(ctx, user)
	}
	b.answer(cb, focus.Format(state.Remaining))
	if err := b.editWithMarkup(cb.Message.Chat.ID, cb.Message.MessageID, RenderFocus(state, stats), focusKeyboard(state.Running)); err != nil {
		// Telegram rejects edits that change nothing.
		log.Printf("[warn] edit focus message: %v", err)
	}
	return nil
}
