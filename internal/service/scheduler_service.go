package service

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"life-goals/internal/config"
)

// SchedulerService runs the periodic jobs: the daily report and the
// snapshot refresh.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	if loc == nil {
		loc = time.Local
	}
	return &SchedulerService{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// Daily registers job at the wall-clock time "HH:MM".
func (s *SchedulerService) Daily(clock string, job func()) (cron.EntryID, error) {
	spec, err := dailySpec(clock)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// Every registers job to run at a fixed interval of at least one second.
func (s *SchedulerService) Every(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval < time.Second {
		return 0, fmt.Errorf("interval %v is shorter than a second", interval)
	}
	return s.cron.AddFunc(fmt.Sprintf("@every %s", interval.Truncate(time.Second)), job)
}

// Next reports when an entry fires next.
func (s *SchedulerService) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

// Remove drops an entry. Unknown ids are ignored.
func (s *SchedulerService) Remove(id cron.EntryID) {
	s.cron.Remove(id)
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
}

func dailySpec(clock string) (string, error) {
	hour, minute, err := config.ParseClock(clock)
	if err != nil {
		return "", err
	}
	// seconds minutes hours dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
