// Package notify schedules the daily practice reminder.
package notify

import (
	"context"
	"time"

	"github.com/dailymath/dailymath/internal/utils"
)

//go:generate mockgen -source=notify.go -destination=../mocks/notify/mock_platform.go -package=mock_notify

type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

type Channel struct {
	ID   string
	Name string
}

type Notification struct {
	ChannelID string
	Title     string
	Body      string
	Badge     int
	Data      map[string]string
}

// DailyTrigger fires every day at Hour:Minute local time.
type DailyTrigger struct {
	Hour   int
	Minute int
}

// Platform is the local notification service.
type Platform interface {
	EnsureChannel(ctx context.Context, ch Channel) error
	PermissionStatus(ctx context.Context) (PermissionStatus, error)
	RequestPermission(ctx context.Context) (PermissionStatus, error)
	ScheduleDaily(ctx context.Context, n Notification, trigger DailyTrigger) (string, error)
	Cancel(ctx context.Context, id string) error
}

// NextOccurrence is the first Hour:Minute strictly after now, in now's location.
func NextOccurrence(now time.Time, hour, minute int) time.Time {
	return utils.NextClockTime(now, hour, minute)
}

// RouteFor maps a tapped reminder's payload to the screen to open.
func RouteFor(data map[string]string) (string, bool) {
	switch data["screen"] {
	case "home":
		return "/", true
	default:
		return "", false
	}
}
