// Package app composes the services behind the UI API and owns their
// lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dailymath/dailymath/internal/auth"
	"github.com/dailymath/dailymath/internal/blob"
	"github.com/dailymath/dailymath/internal/config"
	"github.com/dailymath/dailymath/internal/core"
	"github.com/dailymath/dailymath/internal/grading"
	"github.com/dailymath/dailymath/internal/identity"
	"github.com/dailymath/dailymath/internal/localstore"
	"github.com/dailymath/dailymath/internal/notify"
	"github.com/dailymath/dailymath/internal/querycache"
	"github.com/dailymath/dailymath/internal/store"
)

const queryRetryDelay = 200 * time.Millisecond

type App struct {
	Config *config.Config

	KV    *localstore.SQLiteStore
	Users *identity.Store
	DB    *store.SQLiteStore
	Blobs blob.Store
	// LocalBlobs is set when uploads are served by this process.
	LocalBlobs *blob.LocalStore

	Linker *auth.Linker
	Cache  *querycache.Cache

	Questions   *core.QuestionService
	History     *core.HistoryService
	Submissions *core.SubmissionService

	Platform  *notify.LocalPlatform
	Scheduler *notify.Scheduler

	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

type options struct {
	model         grading.Model
	authenticator auth.Authenticator
}

type Option func(*options)

// WithModel replaces the Gemini client.
func WithModel(m grading.Model) Option {
	return func(o *options) { o.model = m }
}

// WithAuthenticator replaces the identity REST client.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(o *options) { o.authenticator = a }
}

// New constructs every component. On failure, anything already opened is
// closed before returning.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (_ *App, err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.KV, err = localstore.NewSQLiteStore(cfg.LocalStorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	a.onClose("local store", a.KV.Close)
	a.Users = identity.NewStore(a.KV, time.Now)

	a.DB, err = store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.onClose("database", a.DB.Close)

	if err = a.openBlobs(ctx, cfg); err != nil {
		return nil, err
	}

	model := o.model
	if model == nil {
		gemini, err := grading.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		a.onClose("gemini", func() error { gemini.Close(); return nil })
		model = gemini
	}
	grader, err := grading.NewGrader(model)
	if err != nil {
		return nil, err
	}
	grader.WithDebug(cfg.LogLevel == "DEBUG")

	authenticator := o.authenticator
	if authenticator == nil {
		client := auth.NewClient(cfg.AuthBaseURL, cfg.TokenBaseURL, cfg.FirebaseAPIKey)
		a.onClose("auth client", client.Close)
		authenticator = client
	}
	a.Linker = auth.NewLinker(authenticator, a.KV, time.Now)

	attempts := uint(1)
	if cfg.QueryRetryAttempts > 1 {
		attempts = uint(cfg.QueryRetryAttempts)
	}
	a.Cache = querycache.New(time.Duration(cfg.QueryCacheTTLSeconds)*time.Second, attempts, queryRetryDelay)

	a.Questions = core.NewQuestionService(a.DB, a.Cache)
	a.History = core.NewHistoryService(a.DB, a.Cache)
	a.Submissions = core.NewSubmissionService(a.DB, a.Blobs, grader, a.Users, a.Cache, cfg.ImagePolicy)

	a.Platform = notify.NewLocalPlatform(cfg.NotificationsEnabled, openRoute)
	a.onClose("notifications", func() error { a.Platform.Close(); return nil })
	a.Scheduler = notify.NewScheduler(a.Platform, a.KV, cfg.ReminderHour, cfg.ReminderMinute)

	return a, nil
}

func (a *App) openBlobs(ctx context.Context, cfg *config.Config) error {
	switch cfg.StorageBackend {
	case config.StorageBackendGCS:
		gcs, err := blob.NewGCSStore(ctx, cfg.StorageBucket)
		if err != nil {
			return err
		}
		a.onClose("object storage", gcs.Close)
		a.Blobs = gcs
	default:
		local, err := blob.NewLocalStore(cfg.StorageLocalDir, cfg.StoragePublicBaseURL)
		if err != nil {
			return err
		}
		a.LocalBlobs = local
		a.Blobs = local
	}
	return nil
}

// Start runs the launch sequence: local identity, backend session, daily
// reminder. Only the local identity is required; the rest is logged and
// retried on the next launch.
func (a *App) Start(ctx context.Context) error {
	user, err := a.Users.GetOrCreateUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize user: %w", err)
	}
	log.Printf("Local user %s, streak %d", user.UserID, user.Streak)

	if err := a.Linker.Restore(ctx); err != nil {
		log.Printf("Failed to restore auth session: %v", err)
	}
	if session, err := a.Linker.EnsureAnonymousSignIn(ctx); err != nil {
		log.Printf("Anonymous sign-in failed: %v", err)
	} else {
		log.Printf("Backend session ready for %s", session.UID)
	}

	if ok, err := a.Scheduler.Initialize(ctx); err != nil {
		log.Printf("Error initializing daily notifications: %v", err)
	} else if !ok {
		log.Println("Daily notifications not scheduled")
	}
	return nil
}

// Close releases resources in reverse construction order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			log.Printf("Error closing %s: %v", c.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(name string, fn func() error) {
	a.closers = append(a.closers, namedCloser{name: name, close: fn})
}

// openRoute handles a delivered reminder the way a tap would.
func openRoute(n notify.Notification) {
	if route, ok := notify.RouteFor(n.Data); ok {
		log.Printf("Reminder %q opens %s", n.Title, route)
		return
	}
	log.Printf("Reminder %q has no route", n.Title)
}
