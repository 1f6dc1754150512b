package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"life-goals/internal/api"
	"life-goals/internal/bot"
	"life-goals/internal/config"
	"life-goals/internal/repository"
	"life-goals/internal/service"
	"life-goals/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot with scheduled reports",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := repository.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer repository.Close(db)

	userRepo := repository.NewUserRepository(db)
	recordRepo := repository.NewRecordRepository(db)

	snapshots := store.New()
	cancelSub := snapshots.Subscribe(func(userID uint, snap store.Snapshot) {
		log.Printf("[info] snapshot user=%d goals=%d habits=%d", userID, len(snap.Goals), len(snap.Habits))
	})
	defer cancelSub()

	client := api.New(cfg.APIBaseURL, cfg.APITimeout())
	accounts := service.NewAccountService(userRepo, client, snapshots)
	focusSvc := service.NewFocusService(recordRepo, cfg.FocusMinutes, cfg.BreakMinutes)
	defer focusSvc.Stop()

	telegramBot, err := bot.New(cfg, bot.Services{
		Users:     userRepo,
		Accounts:  accounts,
		Goals:     service.NewGoalService(accounts),
		Habits:    service.NewHabitService(accounts),
		Reminders: service.NewReminderService(),
		Focus:     focusSvc,
	})
	if err != nil {
		return err
	}

	scheduler := service.NewSchedulerService(loc)
	jobs := &scheduledJobs{
		scheduler: scheduler,
		report: func() {
			jobCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			defer cancel()
			if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("[warn] daily reports: %v", err)
			}
		},
		refresh: func() {
			jobCtx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()
			if err := accounts.RefreshAll(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("[warn] refresh snapshots: %v", err)
			}
		},
	}
	if err := jobs.apply(cfg); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()
	jobs.logNext()

	if path := os.Getenv(config.FileEnv); path != "" {
		err := config.Watch(ctx, path, func(next config.Config) {
			if err := jobs.apply(next); err != nil {
				log.Printf("[warn] keep previous schedule: %v", err)
				return
			}
			jobs.logNext()
		})
		if err != nil {
			log.Printf("[warn] config changes will need a restart: %v", err)
		}
	}

	log.Println("[info] life goals bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Println("[info] shutdown complete")
	return nil
}

// scheduledJobs keeps the cron entries in line with the current config.
// Other settings need a restart.
type scheduledJobs struct {
	scheduler *service.SchedulerService
	report    func()
	refresh   func()

	mu          sync.Mutex
	reportTime  string
	interval    time.Duration
	reportID    cron.EntryID
	refreshID   cron.EntryID
	initialized bool
}

func (j *scheduledJobs) apply(cfg config.Config) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.initialized || cfg.ReportTime != j.reportTime {
		id, err := j.scheduler.Daily(cfg.ReportTime, j.report)
		if err != nil {
			return err
		}
		if j.initialized {
			j.scheduler.Remove(j.reportID)
		}
		j.reportID, j.reportTime = id, cfg.ReportTime
	}
	if interval := cfg.RefreshInterval(); !j.initialized || interval != j.interval {
		id, err := j.scheduler.Every(interval, j.refresh)
		if err != nil {
			return err
		}
		if j.initialized {
			j.scheduler.Remove(j.refreshID)
		}
		j.refreshID, j.interval = id, interval
	}
	j.initialized = true
	return nil
}

func (j *scheduledJobs) logNext() {
	j.mu.Lock()
	id := j.reportID
	j.mu.Unlock()
	log.Printf("[info] next daily report at %s", j.scheduler.Next(id).Format(time.RFC1123))
}
