package sdk_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/snipbox/snipbox/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNavigator struct {
	mock.Mock
}

func (m *mockNavigator) Navigate(target string) {
	m.Called(target)
}

func newAuthorizedClient(t *testing.T, api *fakeAPI, nav sdk.Navigator) (*http.Client, *sdk.AuthState, *sdk.MemoryStore) {
	t.Helper()
	store := sdk.NewMemoryStore()
	state := sdk.NewAuthState(sdk.NewAuthService(api.URL, store))
	return &http.Client{Transport: sdk.NewAuthorizer(nil, state, nav)}, state, store
}

func get(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestIsPublicAuthPath(t *testing.T) {
	public := []string{
		"/auth/login", "/auth/register", "/auth/refresh", "/auth/verify-email",
		"/auth/resend-otp", "/auth/forgot-password", "/auth/reset-password",
		"/auth/login/",
	}
	for _, p := range public {
		assert.True(t, sdk.IsPublicAuthPath(p), p)
	}

	private := []string{
		"/posts", "/auth/me", "/auth/logout", "/users/me", "/auth/login-history", "/auth",
		"/posts/auth/login", "/api/auth/login",
	}
	for _, p := range private {
		assert.False(t, sdk.IsPublicAuthPath(p), p)
	}
}

func TestAuthorizer_AttachesBearer(t *testing.T) {
	api := newFakeAPI(t)
	api.on("/posts", http.StatusOK, []string{})
	api.on(sdk.PathLogin, http.StatusOK, map[string]string{})
	client, _, store := newAuthorizedClient(t, api, &sdk.RecordingNavigator{})

	get(t, client, api.URL+"/posts")
	assert.Empty(t, api.last().Authorization, "no token, no header")

	require.NoError(t, sdk.SetTokens(store, sdk.TokenPair{AccessToken: "A.B.C", RefreshToken: "R"}))

	get(t, client, api.URL+"/posts")
	assert.Equal(t, "Bearer A.B.C", api.last().Authorization)

	get(t, client, api.URL+"/auth/login")
	assert.Empty(t, api.last().Authorization, "public auth endpoints never carry the token")
}

func TestAuthorizer_DoesNotMutateCallerRequest(t *testing.T) {
	api := newFakeAPI(t)
	api.on("/posts", http.StatusOK, nil)
	client, _, store := newAuthorizedClient(t, api, &sdk.RecordingNavigator{})
	require.NoError(t, sdk.SetTokens(store, sdk.TokenPair{AccessToken: "A", RefreshToken: "R"}))

	req, err := http.NewRequest(http.MethodGet, api.URL+"/posts", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestAuthorizer_UnauthorizedEndsSession(t *testing.T) {
	api := newFakeAPI(t)
	api.on("/posts", http.StatusUnauthorized, map[string]string{"message": "token expired"})

	nav := &mockNavigator{}
	nav.On("Navigate", sdk.RouteLoginExpired).Return().Once()

	client, state, store := newAuthorizedClient(t, api, nav)
	require.NoError(t, sdk.SetTokens(store, sdk.TokenPair{AccessToken: validToken(t, 1, "ada"), RefreshToken: "R"}))
	state.Init()
	require.True(t, state.LoggedIn().Get())

	resp := get(t, client, api.URL+"/posts")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "caller still sees the failure")

	assert.Empty(t, store.Get(sdk.KeyAccessToken))
	assert.Empty(t, store.Get(sdk.KeyRefreshToken))
	assert.False(t, state.LoggedIn().Get())

	// A second 401 after the session ended has no token to expire.
	get(t, client, api.URL+"/posts")
	nav.AssertExpectations(t)
	nav.AssertNumberOfCalls(t, "Navigate", 1)
}

func TestAuthorizer_ConcurrentUnauthorizedNavigatesOnce(t *testing.T) {
	api := newFakeAPI(t)
	api.on("/posts", http.StatusUnauthorized, nil)
	nav := &sdk.RecordingNavigator{}
	client, state, store := newAuthorizedClient(t, api, nav)
	require.NoError(t, sdk.SetTokens(store, sdk.TokenPair{AccessToken: "A", RefreshToken: "R"}))
	state.Init()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Get(api.URL + "/posts")
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{sdk.RouteLoginExpired}, nav.Targets())
}

func TestAuthorizer_OtherStatusesPassThrough(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusInternalServerError, http.StatusNotFound} {
		api := newFakeAPI(t)
		api.on("/posts", status, nil)
		nav := &sdk.RecordingNavigator{}
		client, _, store := newAuthorizedClient(t, api, nav)
		require.NoError(t, sdk.SetTokens(store, sdk.TokenPair{AccessToken: "A", RefreshToken: "R"}))

		resp := get(t, client, api.URL+"/posts")
		assert.Equal(t, status, resp.StatusCode)
		assert.Equal(t, "A", store.Get(sdk.KeyAccessToken), "status %d must not end the session", status)
		assert.Empty(t, nav.Targets())
	}
}

func TestAuthorizer_PublicEndpoint401KeepsSession(t *testing.T) {
	api := newFakeAPI(t)
	api.on(sdk.PathLogin, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
	nav := &sdk.RecordingNavigator{}
	client, _, store := newAuthorizedClient(t, api, nav)
	require.NoError(t, sdk.SetTokens(store, sdk.TokenPair{AccessToken: "A", RefreshToken: "R"}))

	get(t, client, api.URL+sdk.PathLogin)
	assert.Equal(t, "A", store.Get(sdk.KeyAccessToken))
	assert.Empty(t, nav.Targets())
}

func TestAuthorizer_NoRetryOn401(t *testing.T) {
	api := newFakeAPI(t)
	api.on("/posts", http.StatusUnauthorized, nil)
	api.on(sdk.PathRefresh, http.StatusOK, map[string]string{"accessToken": "A2", "refreshToken": "R2"})
	client, _, store := newAuthorizedClient(t, api, &sdk.RecordingNavigator{})
	require.NoError(t, sdk.SetTokens(store, sdk.TokenPair{AccessToken: "A", RefreshToken: "R"}))

	get(t, client, api.URL+"/posts")
	require.Len(t, api.calls(), 1, "no refresh and no retry")
}

func TestAuthorizer_PublicPathsRelativeToBasePath(t *testing.T) {
	api := newFakeAPI(t)
	store := sdk.NewMemoryStore()
	require.NoError(t, sdk.SetTokens(store, sdk.TokenPair{AccessToken: "A", RefreshToken: "R"}))
	state := sdk.NewAuthState(sdk.NewAuthService(api.URL+"/api/", store))
	client := &http.Client{Transport: sdk.NewAuthorizer(nil, state, &sdk.RecordingNavigator{})}

	tests := []struct {
		path       string
		wantBearer bool
	}{
		{"/api/auth/login", false},
		{"/api/auth/refresh", false},
		{"/api/posts/auth/login", true},
		{"/auth/login", true},
		{"/api/users/me", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			get(t, client, api.URL+tt.path)
			if tt.wantBearer {
				assert.Equal(t, "Bearer A", api.last().Authorization)
			} else {
				assert.Empty(t, api.last().Authorization)
			}
		})
	}
}

func TestAuthorizer_UnauthorizedKeepsRedirectURL(t *testing.T) {
	api := newFakeAPI(t)
	api.on("/posts", http.StatusUnauthorized, nil)
	client, state, store := newAuthorizedClient(t, api, &sdk.RecordingNavigator{})
	require.NoError(t, sdk.SetTokens(store, sdk.TokenPair{AccessToken: "A", RefreshToken: "R"}))
	require.NoError(t, store.Set(sdk.KeyRedirectURL, "/collections/3"))
	state.Init()

	get(t, client, api.URL+"/posts")

	assert.Empty(t, store.Get(sdk.KeyAccessToken))
	assert.Empty(t, store.Get(sdk.KeyRefreshToken))
	assert.Equal(t, "/collections/3", store.Get(sdk.KeyRedirectURL))
	assert.False(t, state.LoggedIn().Get())
}
