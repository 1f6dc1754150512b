// Package bot is the Telegram front end of the goal tracker.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"life-goals/internal/api"
	"life-goals/internal/config"
	"life-goals/internal/dates"
	"life-goals/internal/focus"
	"life-goals/internal/model"
	"life-goals/internal/repository"
	"life-goals/internal/service"
)

// Services groups what the bot needs from the service layer.
type Services struct {
	Users     *repository.UserRepository
	Accounts  *service.AccountService
	Goals     *service.GoalService
	Habits    *service.HabitService
	Reminders *service.ReminderService
	Focus     *service.FocusService
}

// draft holds task titles drafted for a goal until the user adds them.
type draft struct {
	goalID uint
	titles []string
}

// Bot aggregates the Telegram API with services.
type Bot struct {
	api *tgbotapi.BotAPI
	svc Services
	loc *time.Location
	now func() time.Time

	mu            sync.Mutex
	conversations map[int64]*goalConversation
	drafts        map[int64]draft
}

func New(cfg config.Config, svc Services) (*Bot, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	tg, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Printf("[info] bot authorized on account %s", tg.Self.UserName)

	b := &Bot{
		api:           tg,
		svc:           svc,
		loc:           loc,
		now:           time.Now,
		conversations: make(map[int64]*goalConversation),
		drafts:        make(map[int64]draft),
	}
	svc.Focus.OnTransition(b.notifyFocus)
	return b, nil
}

// Start polls updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("[warn] handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("[warn] handle message: %v", err)
			}
		}
	}
	return nil
}

func (b *Bot) today() time.Time {
	return dates.StartOfDay(b.now().In(b.loc))
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s", msg.From.ID, msg.Command())
		b.clearConversation(msg.From.ID)
		return b.handleCommand(ctx, msg, user)
	}

	text := strings.TrimSpace(msg.Text)
	if text == btnCancel {
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "↩️ Cancelled.")
	}
	if conv := b.getConversation(msg.From.ID); conv != nil {
		return b.handleConversation(ctx, msg, user, conv)
	}
	if cmd, ok := menuCommands[text]; ok {
		return b.runCommand(ctx, msg.Chat.ID, user, cmd, "")
	}
	return b.sendText(msg.Chat.ID, "I did not get that. Try /help for the list of commands.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *model.User) error {
	switch msg.Command() {
	case "login":
		return b.handleLogin(ctx, msg, user)
	default:
		return b.runCommand(ctx, msg.Chat.ID, user, msg.Command(), msg.CommandArguments())
	}
}

func (b *Bot) runCommand(ctx context.Context, chatID int64, user *model.User, cmd, args string) error {
	switch cmd {
	case "start":
		return b.handleStart(chatID, user)
	case "help":
		return b.handleHelp(chatID)
	case "logout":
		return b.handleLogout(ctx, chatID, user)
	case "refresh":
		return b.handleRefresh(ctx, chatID, user)
	case "goals":
		return b.handleGoals(ctx, chatID, user, args)
	case "goal":
		return b.handleGoal(ctx, chatID, user, args)
	case "newgoal":
		return b.startGoalConversation(chatID, user)
	case "deletegoal":
		return b.handleDeleteGoal(ctx, chatID, user, args)
	case "editgoal":
		return b.handleEditGoal(ctx, chatID, user, args)
	case "movegoal":
		return b.handleMoveGoal(ctx, chatID, user, args)
	case "renametask":
		return b.handleRenameTask(ctx, chatID, user, args)
	case "done":
		return b.handleDone(ctx, chatID, user, args)
	case "addtask":
		return b.handleAddTask(ctx, chatID, user, args)
	case "deltask":
		return b.handleDeleteTask(ctx, chatID, user, args)
	case "suggest":
		return b.handleSuggest(ctx, chatID, user, args)
	case "habits":
		return b.handleHabits(ctx, chatID, user)
	case "habit":
		return b.handleHabit(ctx, chatID, user, args)
	case "newhabit":
		return b.handleNewHabit(ctx, chatID, user, args)
	case "renamehabit":
		return b.handleRenameHabit(ctx, chatID, user, args)
	case "delhabit":
		return b.handleDeleteHabit(ctx, chatID, user, args)
	case "calendar":
		return b.handleCalendar(ctx, chatID, user, args)
	case "heatmap":
		return b.handleHeatmap(ctx, chatID, user, args)
	case "week":
		return b.handleWeek(ctx, chatID, user, args)
	case "timeline":
		return b.handleTimeline(ctx, chatID, user)
	case "profile":
		return b.handleProfile(ctx, chatID, user)
	case "bio":
		return b.handleBio(ctx, chatID, user, args)
	case "notifications":
		return b.handleNotifications(ctx, chatID, user)
	case "stats":
		return b.handleStats(ctx, chatID, user)
	case "report":
		return b.handleReport(ctx, chatID, user)
	case "focus":
		return b.handleFocus(ctx, chatID, user, args)
	case "cancel":
		return b.sendText(chatID, "↩️ Cancelled.")
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

// SendDailyReports sends the morning summary to every linked user.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	users, err := b.svc.Accounts.Linked(ctx)
	if err != nil {
		return err
	}
	today := b.today()
	for i := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		user := &users[i]
		snap, err := b.svc.Accounts.Refresh(ctx, user)
		if err != nil {
			cached, cerr := b.svc.Accounts.Snapshot(ctx, user)
			if cerr != nil {
				log.Printf("[warn] build summary for user %d: %v", user.TelegramID, err)
				continue
			}
			snap = cached
		}
		if err := b.sendText(user.TelegramID, b.svc.Reminders.DailySummary(snap, today)); err != nil {
			log.Printf("[warn] send summary to %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

func (b *Bot) notifyFocus(chatID int64, tr focus.Transition) {
	if err := b.sendText(chatID, RenderTransition(tr)); err != nil {
		log.Printf("[warn] focus notice to %d: %v", chatID, err)
	}
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.svc.Users.Touch(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

// replyError turns a service error into a chat message.
func (b *Bot) replyError(chatID int64, err error) error {
	text := userMessage(err)
	if text == "" {
		log.Printf("[warn] request for chat %d: %v", chatID, err)
		text = "⚠️ The backend did not answer. Showing what I had is the best I can do; try /refresh later."
	}
	return b.sendText(chatID, text)
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrNotLinked):
		return "🔑 Link your account first: /login &lt;username&gt; &lt;password&gt;"
	case errors.Is(err, api.ErrUnauthorized):
		return "🔑 Your session has expired. Please /login again."
	case errors.Is(err, service.ErrGoalNotFound):
		return "Goal not found. See /goals for ids."
	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found. Open the goal with /goal &lt;id&gt; to see task ids."
	case errors.Is(err, service.ErrHabitNotFound):
		return "Habit not found. See /habits for ids."
	case errors.Is(err, errUsage):
		return "Wrong arguments. See /help."
	default:
		return ""
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithMarkup(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) editWithMarkup(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	edit.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(edit)
	return err
}

func (b *Bot) setDraft(chatID int64, d draft) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drafts[chatID] = d
}

func (b *Bot) takeDraft(chatID int64, goalID uint) (draft, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.drafts[chatID]
	if !ok || d.goalID != goalID {
		return draft{}, false
	}
	delete(b.drafts, chatID)
	return d, true
}

func (b *Bot) dropDraft(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.drafts, chatID)
}
