package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Responder receives a delivered notification, as if the user tapped it.
type Responder func(n Notification)

type scheduled struct {
	n       Notification
	trigger DailyTrigger
	timer   *time.Timer
}

// LocalPlatform delivers notifications in-process with timers.
type LocalPlatform struct {
	mu         sync.Mutex
	enabled    bool
	permission PermissionStatus
	channels   map[string]Channel
	pending    map[string]*scheduled
	respond    Responder
	now        func() time.Time
}

// NewLocalPlatform starts undetermined; a permission request is granted only
// when enabled is true.
func NewLocalPlatform(enabled bool, respond Responder) *LocalPlatform {
	return &LocalPlatform{
		enabled:    enabled,
		permission: PermissionUndetermined,
		channels:   make(map[string]Channel),
		pending:    make(map[string]*scheduled),
		respond:    respond,
		now:        time.Now,
	}
}

func (p *LocalPlatform) EnsureChannel(ctx context.Context, ch Channel) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.channels[ch.ID]; !ok {
		p.channels[ch.ID] = ch
		log.Printf("Notification channel created: %s", ch.ID)
	}
	return nil
}

func (p *LocalPlatform) PermissionStatus(ctx context.Context) (PermissionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permission, nil
}

func (p *LocalPlatform) RequestPermission(ctx context.Context) (PermissionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		p.permission = PermissionGranted
	} else {
		p.permission = PermissionDenied
	}
	return p.permission, nil
}

func (p *LocalPlatform) ScheduleDaily(ctx context.Context, n Notification, trigger DailyTrigger) (string, error) {
	if trigger.Hour < 0 || trigger.Hour > 23 || trigger.Minute < 0 || trigger.Minute > 59 {
		return "", fmt.Errorf("invalid daily trigger %02d:%02d", trigger.Hour, trigger.Minute)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.permission != PermissionGranted {
		return "", fmt.Errorf("notification permission is %s", p.permission)
	}
	if n.ChannelID != "" {
		if _, ok := p.channels[n.ChannelID]; !ok {
			return "", fmt.Errorf("unknown notification channel %s", n.ChannelID)
		}
	}

	id := uuid.NewString()
	s := &scheduled{n: n, trigger: trigger}
	s.timer = time.AfterFunc(p.untilNext(trigger), func() { p.fire(id) })
	p.pending[id] = s
	return id, nil
}

func (p *LocalPlatform) Cancel(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.pending[id]; ok {
		s.timer.Stop()
		delete(p.pending, id)
	}
	return nil
}

// Scheduled returns the ids of pending reminders.
func (p *LocalPlatform) Scheduled() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.pending))
	for id := range p.pending {
		ids = append(ids, id)
	}
	return ids
}

// Close stops every timer.
func (p *LocalPlatform) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, s := range p.pending {
		s.timer.Stop()
		delete(p.pending, id)
	}
}

// fire delivers one occurrence and re-arms for the next day.
func (p *LocalPlatform) fire(id string) {
	p.mu.Lock()
	s, ok := p.pending[id]
	if !ok {
		p.mu.Unlock()
		return
	}
	s.timer.Reset(p.untilNext(s.trigger))
	n := s.n
	respond := p.respond
	p.mu.Unlock()

	log.Printf("Delivering notification %s: %s", id, n.Title)
	if respond != nil {
		respond(n)
	}
}

func (p *LocalPlatform) untilNext(trigger DailyTrigger) time.Duration {
	now := p.now()
	return NextOccurrence(now, trigger.Hour, trigger.Minute).Sub(now)
}
