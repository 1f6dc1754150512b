package service

import (
	"context"
	"sync"

	"life-goals/internal/focus"
	"life-goals/internal/model"
	"life-goals/internal/repository"
)

// TransitionFunc receives mode switches for a Telegram chat.
type TransitionFunc func(chatID int64, tr focus.Transition)

type focusSession struct {
	timer *focus.Timer
}

// FocusService keeps one running focus timer per user. Stats persist in
// the record repository under focus.StatsKey.
type FocusService struct {
	records      *repository.RecordRepository
	focusMinutes int
	breakMinutes int

	mu       sync.Mutex
	sessions map[uint]*focusSession
	notify   TransitionFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewFocusService(records *repository.RecordRepository, focusMinutes, breakMinutes int) *FocusService {
	ctx, cancel := context.WithCancel(context.Background())
	return &FocusService{
		records:      records,
		focusMinutes: focusMinutes,
		breakMinutes: breakMinutes,
		sessions:     make(map[uint]*focusSession),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// OnTransition sets the callback for mode switches.
func (s *FocusService) OnTransition(fn TransitionFunc) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

func (s *FocusService) session(ctx context.Context, user *model.User) *focusSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[user.ID]; ok {
		return sess
	}

	chatID := user.TelegramID
	timer := focus.NewTimer(ctx, s.records.Bind(user.ID, focus.StatsKey), s.focusMinutes, s.breakMinutes,
		focus.WithTransitionHook(func(tr focus.Transition) {
			s.mu.Lock()
			notify := s.notify
			s.mu.Unlock()
			if notify != nil {
				notify(chatID, tr)
			}
		}),
	)
	sess := &focusSession{timer: timer}
	s.sessions[user.ID] = sess

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer.Run(s.ctx)
	}()
	return sess
}

// Dispatch applies an event to the user's timer.
func (s *FocusService) Dispatch(ctx context.Context, user *model.User, e focus.Event) (focus.State, focus.Stats) {
	timer := s.session(ctx, user).timer
	timer.Dispatch(ctx, e)
	return timer.Snapshot()
}

// Status returns the user's timer without changing it.
func (s *FocusService) Status(ctx context.Context, user *model.User) (focus.State, focus.Stats) {
	return s.session(ctx, user).timer.Snapshot()
}

// Stop halts every timer and waits for their goroutines.
func (s *FocusService) Stop() {
	s.cancel()
	s.wg.Wait()
}
