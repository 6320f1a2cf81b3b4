// Package scheduler runs the periodic reminder job that tells learners
// when reviews have come due.
package scheduler

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/lingoleap/internal/database"
	"github.com/example/lingoleap/internal/spaced_repetition"
)

// Default notification window (hours of the day, inclusive)
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier delivers a due-review reminder
type Notifier interface {
	SendDueReminder(dueCount int) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	vocab     *database.VocabularyRepository
}

// New creates a new scheduler instance
func New(notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		vocab:     database.NewVocabularyRepository(),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders sends a reminder when words are due and the current
// hour falls inside the notification window
func (s *Scheduler) checkAndSendReminders() {
	currentHour := time.Now().Hour()

	startHour := hourFromEnv("NOTIFICATION_START_HOUR", DefaultNotificationStartHour)
	endHour := hourFromEnv("NOTIFICATION_END_HOUR", DefaultNotificationEndHour)

	if currentHour < startHour || currentHour > endHour {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			currentHour, startHour, endHour)
		return
	}

	words, err := s.vocab.GetAll()
	if err != nil {
		log.Printf("Error loading words for reminder check: %v", err)
		return
	}

	due := spaced_repetition.DueWords(words, time.Now())
	if len(due) == 0 {
		return
	}

	if err := s.notifier.SendDueReminder(len(due)); err != nil {
		log.Printf("Error sending due-review reminder: %v", err)
	}
}

// RunManualCheck forces a due check outside the hourly schedule
func (s *Scheduler) RunManualCheck() error {
	words, err := s.vocab.GetAll()
	if err != nil {
		return err
	}
	due := spaced_repetition.DueWords(words, time.Now())
	if len(due) == 0 {
		return nil
	}
	return s.notifier.SendDueReminder(len(due))
}

// hourFromEnv reads an hour-of-day override from the environment
func hourFromEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			return h
		}
	}
	return fallback
}
