package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dailymath/dailymath/internal/apperr"
	"github.com/dailymath/dailymath/internal/auth"
	"github.com/dailymath/dailymath/internal/localstore"
	mock_auth "github.com/dailymath/dailymath/internal/mocks/auth"
)

var testNow = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func newTestLinker(t *testing.T) (*auth.Linker, *mock_auth.MockAuthenticator, *localstore.SQLiteStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockAuth := mock_auth.NewMockAuthenticator(ctrl)
	kv, err := localstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return auth.NewLinker(mockAuth, kv, func() time.Time { return testNow }), mockAuth, kv
}

func TestLinker_EnsureAnonymousSignIn(t *testing.T) {
	validSession := &auth.Session{UID: "anon-1", IDToken: "tok", RefreshToken: "ref", ExpiresAt: testNow.Add(time.Hour)}

	tests := []struct {
		name      string
		existing  *auth.Session
		setupMock func(m *mock_auth.MockAuthenticator)
		wantUID   string
		wantErr   error
	}{
		{
			name:      "signs in anonymously when signed out",
			setupMock: func(m *mock_auth.MockAuthenticator) { m.EXPECT().SignInAnonymously(gomock.Any()).Return(validSession, nil) },
			wantUID:   "anon-1",
		},
		{
			name:     "resolves with the existing session",
			existing: &auth.Session{UID: "anon-existing", IDToken: "t", ExpiresAt: testNow.Add(time.Hour)},
			wantUID:  "anon-existing",
		},
		{
			name:     "refreshes an expired session",
			existing: &auth.Session{UID: "anon-existing", IDToken: "old", RefreshToken: "ref-old", ExpiresAt: testNow.Add(-time.Hour)},
			setupMock: func(m *mock_auth.MockAuthenticator) {
				m.EXPECT().Refresh(gomock.Any(), "ref-old").
					Return(&auth.Session{UID: "anon-existing", IDToken: "new", ExpiresAt: testNow.Add(time.Hour)}, nil)
			},
			wantUID: "anon-existing",
		},
		{
			name:     "signs in again when refresh fails",
			existing: &auth.Session{UID: "anon-existing", IDToken: "old", RefreshToken: "ref-old", ExpiresAt: testNow.Add(-time.Hour)},
			setupMock: func(m *mock_auth.MockAuthenticator) {
				m.EXPECT().Refresh(gomock.Any(), "ref-old").Return(nil, errors.New("TOKEN_EXPIRED"))
				m.EXPECT().SignInAnonymously(gomock.Any()).Return(validSession, nil)
			},
			wantUID: "anon-1",
		},
		{
			name: "rejected sign-in is a network failure",
			setupMock: func(m *mock_auth.MockAuthenticator) {
				m.EXPECT().SignInAnonymously(gomock.Any()).Return(nil, errors.New("ADMIN_ONLY_OPERATION"))
			},
			wantErr: apperr.ErrNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			linker, mockAuth, kv := newTestLinker(t)
			if tt.setupMock != nil {
				tt.setupMock(mockAuth)
			}
			if tt.existing != nil {
				require.NoError(t, kv.Set(ctx, auth.SessionKey, mustJSON(t, tt.existing)))
				require.NoError(t, linker.Restore(ctx))
			}

			got, err := linker.EnsureAnonymousSignIn(ctx)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, linker.CurrentSession())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUID, got.UID)
			assert.Equal(t, tt.wantUID, linker.CurrentSession().UID)
		})
	}
}

func TestLinker_ReleasesSubscriptionAfterFirstEvent(t *testing.T) {
	ctx := context.Background()
	linker, mockAuth, _ := newTestLinker(t)
	mockAuth.EXPECT().SignInAnonymously(gomock.Any()).
		Return(&auth.Session{UID: "anon-1", IDToken: "t", ExpiresAt: testNow.Add(time.Hour)}, nil).
		Times(1)

	_, err := linker.EnsureAnonymousSignIn(ctx)
	require.NoError(t, err)

	// A later, unrelated change must not trigger another sign-in.
	require.NoError(t, linker.SignOut(ctx))
	assert.Nil(t, linker.CurrentSession())
}

func TestLinker_OnAuthStateChanged(t *testing.T) {
	ctx := context.Background()
	linker, mockAuth, _ := newTestLinker(t)
	mockAuth.EXPECT().SignInAnonymously(gomock.Any()).
		Return(&auth.Session{UID: "anon-1", IDToken: "t", ExpiresAt: testNow.Add(time.Hour)}, nil)

	events := make(chan *auth.Session, 4)
	unsubscribe := linker.OnAuthStateChanged(func(s *auth.Session) { events <- s })
	defer unsubscribe()

	assert.Nil(t, <-events)

	_, err := linker.EnsureAnonymousSignIn(ctx)
	require.NoError(t, err)
	got := <-events
	require.NotNil(t, got)
	assert.Equal(t, "anon-1", got.UID)
}

func TestLinker_RestoreDiscardsCorruptRecord(t *testing.T) {
	ctx := context.Background()
	linker, _, kv := newTestLinker(t)
	require.NoError(t, kv.Set(ctx, auth.SessionKey, "not json"))

	require.NoError(t, linker.Restore(ctx))
	assert.Nil(t, linker.CurrentSession())
	_, ok, err := kv.Get(ctx, auth.SessionKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
