package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/dailymath/dailymath/internal/localstore"
)

const (
	ChannelID   = "daily_reminder"
	channelName = "Daily Reminders"
)

// NotificationIDKey holds the id of the currently scheduled reminder.
var NotificationIDKey = localstore.Key("daily_notification_id")

type Scheduler struct {
	platform Platform
	kv       localstore.Store
	trigger  DailyTrigger
}

func NewScheduler(platform Platform, kv localstore.Store, hour, minute int) *Scheduler {
	return &Scheduler{
		platform: platform,
		kv:       kv,
		trigger:  DailyTrigger{Hour: hour, Minute: minute},
	}
}

func reminder() Notification {
	return Notification{
		ChannelID: ChannelID,
		Title:     "Time to Practice! 📚",
		Body:      "Ready for today's challenge? Practice now and get closer to your exam goal.",
		Badge:     1,
		Data: map[string]string{
			"screen": "home",
			"type":   "daily-reminder",
		},
	}
}

// Initialize ensures the channel, settles permission and schedules the
// reminder. It reports false when permission is not granted.
func (s *Scheduler) Initialize(ctx context.Context) (bool, error) {
	if err := s.ensureChannel(ctx); err != nil {
		return false, err
	}

	status, err := s.platform.PermissionStatus(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read notification permission: %w", err)
	}
	switch status {
	case PermissionDenied:
		log.Println("Notification permissions denied by user")
		return false, nil
	case PermissionGranted:
	default:
		status, err = s.platform.RequestPermission(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to request notification permission: %w", err)
		}
		if status != PermissionGranted {
			log.Println("User did not grant notification permissions")
			return false, nil
		}
	}

	if _, err := s.ScheduleDaily(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ScheduleDaily replaces any tracked reminder with a new one.
func (s *Scheduler) ScheduleDaily(ctx context.Context) (string, error) {
	if err := s.CancelDaily(ctx); err != nil {
		log.Printf("Error cancelling daily notification: %v", err)
	}
	if err := s.ensureChannel(ctx); err != nil {
		return "", err
	}

	id, err := s.platform.ScheduleDaily(ctx, reminder(), s.trigger)
	if err != nil {
		return "", fmt.Errorf("failed to schedule daily notification: %w", err)
	}
	if err := s.kv.Set(ctx, NotificationIDKey, id); err != nil {
		return "", fmt.Errorf("failed to store notification id: %w", err)
	}
	log.Printf("Daily notification %s scheduled for %02d:%02d", id, s.trigger.Hour, s.trigger.Minute)
	return id, nil
}

// CancelDaily cancels the tracked reminder, if any.
func (s *Scheduler) CancelDaily(ctx context.Context) error {
	id, ok, err := s.kv.Get(ctx, NotificationIDKey)
	if err != nil {
		return fmt.Errorf("failed to read notification id: %w", err)
	}
	if !ok || id == "" {
		return nil
	}
	if err := s.platform.Cancel(ctx, id); err != nil {
		return fmt.Errorf("failed to cancel notification %s: %w", id, err)
	}
	if err := s.kv.Delete(ctx, NotificationIDKey); err != nil {
		return fmt.Errorf("failed to clear notification id: %w", err)
	}
	log.Println("Daily notification cancelled")
	return nil
}

func (s *Scheduler) ensureChannel(ctx context.Context) error {
	if err := s.platform.EnsureChannel(ctx, Channel{ID: ChannelID, Name: channelName}); err != nil {
		return fmt.Errorf("failed to create notification channel: %w", err)
	}
	return nil
}
