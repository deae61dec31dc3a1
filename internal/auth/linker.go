package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dailymath/dailymath/internal/apperr"
	"github.com/dailymath/dailymath/internal/localstore"
)

//go:generate mockgen -source=linker.go -destination=../mocks/auth/mock_authenticator.go -package=mock_auth

// Authenticator is the backend identity service.
type Authenticator interface {
	SignInAnonymously(ctx context.Context) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
}

// SessionKey persists the session on the device between launches.
var SessionKey = localstore.Key("authSession")

// Linker tracks the auth state of this device and links it to an anonymous
// backend account.
type Linker struct {
	auth Authenticator
	kv   localstore.Store
	now  func() time.Time

	mu        sync.Mutex
	session   *Session
	listeners map[int]func(*Session)
	nextID    int
}

func NewLinker(a Authenticator, kv localstore.Store, now func() time.Time) *Linker {
	if now == nil {
		now = time.Now
	}
	return &Linker{
		auth:      a,
		kv:        kv,
		now:       now,
		listeners: make(map[int]func(*Session)),
	}
}

// Restore loads a previously persisted session. A missing or unreadable
// record leaves the linker signed out.
func (l *Linker) Restore(ctx context.Context) error {
	raw, ok, err := l.kv.Get(ctx, SessionKey)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil || s.UID == "" {
		log.Printf("Discarding unreadable auth session record: %v", err)
		return l.kv.Delete(ctx, SessionKey)
	}
	l.mu.Lock()
	l.session = &s
	l.mu.Unlock()
	return nil
}

// CurrentSession returns the signed-in session or nil.
func (l *Linker) CurrentSession() *Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session
}

// OnAuthStateChanged registers fn for auth state changes. fn receives the
// current state once, asynchronously, and then every change. The returned
// function removes the registration.
func (l *Linker) OnAuthStateChanged(fn func(*Session)) (unsubscribe func()) {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	current := l.session
	l.mu.Unlock()

	go fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.listeners, id)
			l.mu.Unlock()
		})
	}
}

// EnsureAnonymousSignIn resolves with the existing session, or signs in
// anonymously when there is none. It reacts to the first auth state event
// only and resolves exactly once.
func (l *Linker) EnsureAnonymousSignIn(ctx context.Context) (*Session, error) {
	first := make(chan *Session, 1)
	var once sync.Once
	unsubscribe := l.OnAuthStateChanged(func(s *Session) {
		once.Do(func() { first <- s })
	})

	var current *Session
	select {
	case <-ctx.Done():
		unsubscribe()
		return nil, ctx.Err()
	case current = <-first:
		unsubscribe()
	}

	if current != nil && !current.Expired(l.now()) {
		return current, nil
	}

	if current != nil && current.RefreshToken != "" {
		refreshed, err := l.auth.Refresh(ctx, current.RefreshToken)
		if err == nil {
			if err := l.setSession(ctx, refreshed); err != nil {
				return nil, err
			}
			return refreshed, nil
		}
		log.Printf("Failed to refresh session for %s, signing in again: %v", current.UID, err)
	}

	session, err := l.auth.SignInAnonymously(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: anonymous sign-in rejected: %v", apperr.ErrNetwork, err)
	}
	if err := l.setSession(ctx, session); err != nil {
		return nil, err
	}
	log.Printf("Signed in anonymously as %s", session.UID)
	return session, nil
}

// SignOut forgets the session on this device.
func (l *Linker) SignOut(ctx context.Context) error {
	return l.setSession(ctx, nil)
}

func (l *Linker) setSession(ctx context.Context, s *Session) error {
	if s == nil {
		if err := l.kv.Delete(ctx, SessionKey); err != nil {
			return err
		}
	} else {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to encode auth session: %w", err)
		}
		if err := l.kv.Set(ctx, SessionKey, string(data)); err != nil {
			return err
		}
	}

	l.mu.Lock()
	l.session = s
	listeners := make([]func(*Session), 0, len(l.listeners))
	for _, fn := range l.listeners {
		listeners = append(listeners, fn)
	}
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
	return nil
}
