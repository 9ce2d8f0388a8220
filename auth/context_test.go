package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/medsure/claims-client/auth"
	"github.com/medsure/claims-client/users"
)

func setupContext(t *testing.T) (*fixture, *auth.Context) {
	t.Helper()
	f := setupFixture(t)
	authCtx, err := auth.NewContext(f.service)
	require.NoError(t, err)
	return f, authCtx
}

func TestContextStartsLoading(t *testing.T) {
	_, authCtx := setupContext(t)
	state := authCtx.State()
	require.True(t, state.Loading)
	require.False(t, state.Authenticated)
}

func TestBootstrapWithoutSessionEndsLoadingUnauthenticated(t *testing.T) {
	_, authCtx := setupContext(t)

	authCtx.Bootstrap(context.Background())
	state := authCtx.State()
	require.False(t, state.Loading)
	require.False(t, state.Authenticated)
	require.Nil(t, state.User)
}

func TestBootstrapWithPersistedSessionAuthenticates(t *testing.T) {
	f, authCtx := setupContext(t)
	f.seedSession(t)

	authCtx.Bootstrap(context.Background())
	state := authCtx.State()
	require.False(t, state.Loading)
	require.True(t, state.Authenticated)
	require.Equal(t, testEmail, state.User.Email)
}

func TestBootstrapWithFailingStoreStillEndsLoading(t *testing.T) {
	f, authCtx := setupContext(t)
	f.store.FailGets = true

	authCtx.Bootstrap(context.Background())
	state := authCtx.State()
	require.False(t, state.Loading)
	require.False(t, state.Authenticated)
}

func TestLoginUpdatesStateAndNotifiesSubscribers(t *testing.T) {
	f, authCtx := setupContext(t)
	f.mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, authData(map[string]any{"id": 7, "email": testEmail, "roles": []string{"doctor"}}))
	})

	var observed []auth.State
	unsubscribe := authCtx.Subscribe(func(s auth.State) {
		observed = append(observed, s)
	})
	defer unsubscribe()

	// The subscriber sees the current state immediately.
	require.Len(t, observed, 1)
	require.True(t, observed[0].Loading)

	_, err := authCtx.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	require.Len(t, observed, 2)
	require.True(t, observed[1].Authenticated)
	require.Equal(t, users.RoleDoctor, observed[1].User.Role)
}

func TestLoginErrorRethrownAndStateUntouched(t *testing.T) {
	f, authCtx := setupContext(t)
	f.mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusUnauthorized, "Invalid email or password")
	})
	authCtx.Bootstrap(context.Background())

	_, err := authCtx.Login(context.Background(), testEmail, "wrong")
	var authErr *auth.AuthError
	require.ErrorAs(t, err, &authErr)

	state := authCtx.State()
	require.False(t, state.Authenticated)
	require.Nil(t, state.User)
}

func TestLogoutNeverFails(t *testing.T) {
	f, authCtx := setupContext(t)
	f.seedSession(t)
	authCtx.Bootstrap(context.Background())
	require.True(t, authCtx.State().Authenticated)

	// Server unreachable and the store refuses removals; local state must
	// flip to logged out regardless.
	f.server.Close()
	f.store.FailRemoves = true

	authCtx.Logout(context.Background())
	state := authCtx.State()
	require.False(t, state.Authenticated)
	require.Nil(t, state.User)
}

func TestUpdateUserIsLocalOnly(t *testing.T) {
	f, authCtx := setupContext(t)
	f.seedSession(t)
	authCtx.Bootstrap(context.Background())

	updated := &users.Profile{ID: 7, Email: testEmail, FirstName: "Renamed", Role: users.RolePatient}
	authCtx.UpdateUser(updated)
	require.Equal(t, "Renamed", authCtx.State().User.FirstName)

	// The persisted profile is untouched.
	stored, err := f.mgr.User(context.Background())
	require.NoError(t, err)
	require.Equal(t, "", stored.FirstName)
}

func TestRefreshSessionRerunsBootstrap(t *testing.T) {
	f, authCtx := setupContext(t)
	authCtx.Bootstrap(context.Background())
	require.False(t, authCtx.State().Authenticated)

	f.seedSession(t)
	authCtx.RefreshSession(context.Background())
	state := authCtx.State()
	require.False(t, state.Loading)
	require.True(t, state.Authenticated)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	_, authCtx := setupContext(t)

	var calls int
	unsubscribe := authCtx.Subscribe(func(auth.State) { calls++ })
	require.Equal(t, 1, calls)

	unsubscribe()
	authCtx.Bootstrap(context.Background())
	require.Equal(t, 1, calls)
}

func TestStoredUserRoundTripsThroughBootstrap(t *testing.T) {
	f, authCtx := setupContext(t)

	profile := &users.Profile{ID: 7, Email: testEmail, Roles: []string{"insurance_provider"}, Role: users.RoleInsuranceProvider}
	raw, err := json.Marshal(profile)
	require.NoError(t, err)
	f.store.Seed("userToken", testAccessToken)
	f.store.Seed("refreshToken", testRefreshToken)
	f.store.Seed("userData", string(raw))

	authCtx.Bootstrap(context.Background())
	state := authCtx.State()
	require.True(t, state.Authenticated)
	require.Equal(t, users.RoleInsuranceProvider, state.User.Role)
}
