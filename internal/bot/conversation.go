package bot

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"life-goals/internal/api"
	"life-goals/internal/dates"
	"life-goals/internal/model"
	"life-goals/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageDescription
	stageCategory
	stagePriority
	stageStartDate
	stageEndDate
)

type goalConversation struct {
	stage conversationStage
	input api.GoalInput
}

func (b *Bot) startGoalConversation(chatID int64, user *model.User) error {
	if !user.Linked() {
		return b.replyError(chatID, service.ErrNotLinked)
	}
	log.Printf("[info] start new goal conversation user=%d", user.TelegramID)
	b.setConversation(user.TelegramID, &goalConversation{stage: stageTitle})
	return b.sendWithMarkup(chatID, "🎯 What is the goal? Send a short title.", cancelKeyboard())
}

func isSkip(text string) bool {
	return text == btnSkip || text == "-" || strings.EqualFold(text, "skip")
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message, user *model.User, conv *goalConversation) error {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	switch conv.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithMarkup(chatID, "The title cannot be empty.", cancelKeyboard())
		}
		conv.input.Title = text
		conv.stage = stageDescription
		return b.sendWithMarkup(chatID, "✏️ Add a short description (or press Skip).", skipKeyboard())
	case stageDescription:
		if !isSkip(text) {
			conv.input.Description = text
		}
		conv.stage = stageCategory
		return b.sendWithMarkup(chatID, "🏷 Pick a category.", categoryKeyboard())
	case stageCategory:
		c, ok := matchCategory(text)
		if !ok {
			return b.sendWithMarkup(chatID, "Pick one of the categories below.", categoryKeyboard())
		}
		conv.input.Category = c
		conv.stage = stagePriority
		return b.sendWithMarkup(chatID, "⚡ How important is it?", priorityKeyboard())
	case stagePriority:
		p, ok := matchPriority(text)
		if !ok {
			return b.sendWithMarkup(chatID, "Pick High, Medium or Low.", priorityKeyboard())
		}
		conv.input.Priority = p
		conv.stage = stageStartDate
		return b.sendWithMarkup(chatID, "🗓 Start date as <code>2025-01-31</code> (Skip means today).", skipKeyboard())
	case stageStartDate:
		if isSkip(text) {
			conv.input.StartDate = dates.Key(b.today())
		} else {
			if _, err := dates.ParseKey(text, b.loc); err != nil {
				return b.sendWithMarkup(chatID, "I cannot read that date. Use <code>2025-01-31</code> or Skip.", skipKeyboard())
			}
			conv.input.StartDate = text
		}
		conv.stage = stageEndDate
		return b.sendWithMarkup(chatID, "🏁 Deadline as <code>2025-12-31</code> (or Skip).", skipKeyboard())
	case stageEndDate:
		if !isSkip(text) {
			end, err := dates.ParseKey(text, b.loc)
			if err != nil {
				return b.sendWithMarkup(chatID, "I cannot read that date. Use <code>2025-12-31</code> or Skip.", skipKeyboard())
			}
			start, _ := dates.ParseKey(conv.input.StartDate, b.loc)
			if end.Before(start) {
				return b.sendWithMarkup(chatID, "The deadline cannot be before the start date.", skipKeyboard())
			}
			conv.input.EndDate = text
		}
		b.clearConversation(user.TelegramID)
		return b.finishGoalCreation(ctx, chatID, user, conv.input)
	default:
		b.clearConversation(user.TelegramID)
		return b.sendText(chatID, "Conversation reset. Try /newgoal again.")
	}
}

func (b *Bot) finishGoalCreation(ctx context.Context, chatID int64, user *model.User, in api.GoalInput) error {
	goal, err := b.svc.Goals.CreateGoal(ctx, user, in)
	if err != nil {
		return b.replyError(chatID, err)
	}
	log.Printf("[info] goal created user=%d goal=%d", user.TelegramID, goal.ID)
	text := fmt.Sprintf("✅ Goal <b>%s</b> created (#%d).\nAdd tasks with /addtask %d &lt;title&gt; or let me draft some.",
		html.EscapeString(goal.Title), goal.ID, goal.ID)
	if err := b.sendText(chatID, text); err != nil {
		return err
	}
	return b.sendWithMarkup(chatID, "What next?", tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🤖 Draft tasks", callbackData(cbGenerate, goal.ID)),
		tgbotapi.NewInlineKeyboardButtonData("💡 Suggestions", callbackData(cbSuggest, goal.ID)),
	)))
}

func (b *Bot) setConversation(userID int64, conv *goalConversation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = conv
}

func (b *Bot) getConversation(userID int64) *goalConversation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}
