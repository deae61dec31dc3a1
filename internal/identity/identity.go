// Package identity keeps the anonymous AppUser record in on-device storage.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/dailymath/dailymath/internal/apperr"
	"github.com/dailymath/dailymath/internal/localstore"
	"github.com/dailymath/dailymath/internal/utils"
)

// UserKey is the single key holding the serialized AppUser.
var UserKey = localstore.Key("appUser")

type AppUser struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	Streak    int       `json:"streak"`
	// LastStreakDate is the local calendar day (YYYY-MM-DD) of the last
	// graded submission; empty when there has been none.
	LastStreakDate string `json:"lastStreakDate,omitempty"`
}

type Store struct {
	kv  localstore.Store
	now func() time.Time
}

func NewStore(kv localstore.Store, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{kv: kv, now: now}
}

// GetOrCreateUser returns the stored user, creating one on first launch.
// A record that cannot be decoded is deleted and replaced.
func (s *Store) GetOrCreateUser(ctx context.Context) (*AppUser, error) {
	user, err := s.load(ctx)
	switch {
	case err == nil && user != nil:
		return user, nil
	case errors.Is(err, apperr.ErrDataCorruption):
		log.Printf("Discarding unreadable user record: %v", err)
		if err := s.kv.Delete(ctx, UserKey); err != nil {
			return nil, fmt.Errorf("failed to delete corrupt user record: %w", err)
		}
	case err != nil:
		return nil, err
	}

	newUser := &AppUser{
		UserID:    uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Streak:    0,
	}
	if err := s.save(ctx, newUser); err != nil {
		return nil, err
	}
	log.Printf("Created local user %s", newUser.UserID)
	return newUser, nil
}

// UpdateUserStreak overwrites the streak count. It does nothing when no
// user record exists.
func (s *Store) UpdateUserStreak(ctx context.Context, streak int) error {
	return s.update(ctx, func(u *AppUser) bool {
		u.Streak = streak
		return true
	})
}

// RecordPractice advances the streak for a graded submission made at now.
// It returns the user after the update, or nil when no record exists.
func (s *Store) RecordPractice(ctx context.Context, now time.Time) (*AppUser, error) {
	var updated *AppUser
	err := s.update(ctx, func(u *AppUser) bool {
		next, changed := NextStreak(u.Streak, u.LastStreakDate, now)
		updated = u
		if !changed {
			return false
		}
		u.Streak = next
		u.LastStreakDate = utils.DayKey(now)
		return true
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// NextStreak applies the consecutive-day rule. It reports false when today
// was already counted.
func NextStreak(previous int, lastDay string, today time.Time) (int, bool) {
	todayKey := utils.DayKey(today)
	if lastDay == todayKey {
		return previous, false
	}
	if lastDay != "" && lastDay == utils.PreviousDayKey(today) {
		return previous + 1, true
	}
	return 1, true
}

func (s *Store) update(ctx context.Context, mutate func(*AppUser) bool) error {
	user, err := s.load(ctx)
	if errors.Is(err, apperr.ErrDataCorruption) {
		log.Printf("Skipping update of unreadable user record: %v", err)
		return nil
	}
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	if !mutate(user) {
		return nil
	}
	return s.save(ctx, user)
}

// load returns (nil, nil) when the key is absent.
func (s *Store) load(ctx context.Context) (*AppUser, error) {
	raw, ok, err := s.kv.Get(ctx, UserKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read user record: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var stored storedUser
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrDataCorruption, err)
	}
	user := &AppUser{}
	if err := json.Unmarshal(stored.UserID, &user.UserID); err != nil || user.UserID == "" {
		return nil, fmt.Errorf("%w: user record has no userId", apperr.ErrDataCorruption)
	}

	// Only the id is load-bearing; results are keyed by it.
	if err := json.Unmarshal(stored.CreatedAt, &user.CreatedAt); err != nil || user.CreatedAt.IsZero() {
		user.CreatedAt = s.now().UTC()
	}
	if err := json.Unmarshal(stored.Streak, &user.Streak); err != nil || user.Streak < 0 {
		user.Streak = 0
	}
	var day string
	if err := json.Unmarshal(stored.LastStreakDate, &day); err == nil {
		if _, err := time.Parse(utils.DayLayout, day); err == nil {
			user.LastStreakDate = day
		}
	}
	return user, nil
}

// storedUser defers field decoding so one bad field does not discard the id.
type storedUser struct {
	UserID         json.RawMessage `json:"userId"`
	CreatedAt      json.RawMessage `json:"createdAt"`
	Streak         json.RawMessage `json:"streak"`
	LastStreakDate json.RawMessage `json:"lastStreakDate"`
}

func (s *Store) save(ctx context.Context, user *AppUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user record: %w", err)
	}
	if err := s.kv.Set(ctx, UserKey, string(data)); err != nil {
		return fmt.Errorf("failed to write user record: %w", err)
	}
	return nil
}
