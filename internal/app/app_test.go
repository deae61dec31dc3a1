package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dailymath/dailymath/internal/auth"
	"github.com/dailymath/dailymath/internal/config"
	mock_auth "github.com/dailymath/dailymath/internal/mocks/auth"
	mock_grading "github.com/dailymath/dailymath/internal/mocks/grading"
	"github.com/dailymath/dailymath/internal/notify"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		GeminiAPIKey:         "test",
		GeminiModel:          "test-model",
		DatabaseURL:          filepath.Join(dir, "dailymath.db"),
		LocalStorePath:       filepath.Join(dir, "device.db"),
		HTTPPort:             "0",
		LogLevel:             "INFO",
		FirebaseAPIKey:       "test",
		AuthBaseURL:          "http://127.0.0.1:1",
		TokenBaseURL:         "http://127.0.0.1:1",
		StorageBackend:       config.StorageBackendLocal,
		StorageLocalDir:      filepath.Join(dir, "uploads"),
		StoragePublicBaseURL: "http://localhost/uploads",
		ImagePolicy:          config.ImagePolicyUpload,
		ReminderHour:         7,
		NotificationsEnabled: true,
		QueryCacheTTLSeconds: 30,
		QueryRetryAttempts:   1,
	}
}

func TestApp_StartAndClose(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	authenticator := mock_auth.NewMockAuthenticator(ctrl)
	authenticator.EXPECT().SignInAnonymously(gomock.Any()).
		Return(&auth.Session{UID: "remote-1", IDToken: "id", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour), Anonymous: true}, nil)

	cfg := testConfig(t)
	a, err := New(ctx, cfg, WithModel(mock_grading.NewMockModel(ctrl)), WithAuthenticator(authenticator))
	require.NoError(t, err)
	require.NotNil(t, a.LocalBlobs)

	require.NoError(t, a.Start(ctx))

	user, err := a.Users.GetOrCreateUser(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, user.UserID)

	session := a.Linker.CurrentSession()
	require.NotNil(t, session)
	assert.Equal(t, "remote-1", session.UID)

	assert.Len(t, a.Platform.Scheduled(), 1)
	id, ok, err := a.KV.Get(ctx, notify.NotificationIDKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, a.Platform.Scheduled()[0], id)

	require.NoError(t, a.Close())
	assert.Empty(t, a.Platform.Scheduled())
}

func TestApp_StartSurvivesSignInFailure(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	authenticator := mock_auth.NewMockAuthenticator(ctrl)
	authenticator.EXPECT().SignInAnonymously(gomock.Any()).Return(nil, errors.New("offline"))

	cfg := testConfig(t)
	cfg.NotificationsEnabled = false
	a, err := New(ctx, cfg, WithModel(mock_grading.NewMockModel(ctrl)), WithAuthenticator(authenticator))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	require.NoError(t, a.Start(ctx))
	assert.Nil(t, a.Linker.CurrentSession())
	assert.Empty(t, a.Platform.Scheduled())
}

func TestNew_FailsOnBadDatabasePath(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "missing", "dir", "db.sqlite")

	_, err := New(context.Background(), cfg, WithModel(mock_grading.NewMockModel(gomock.NewController(t))))
	assert.Error(t, err)
}
