package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/semmy-space/wdc/internal/output"
	"github.com/semmy-space/wdc/internal/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testAPI = "https://mail.example.com/api"

func newTestCache(t *testing.T) (*TokenCache, *secrets.MemoryStore, string) {
	t.Helper()
	dir := t.TempDir()
	store := secrets.NewMemoryStore()
	tc, err := NewTokenCacheAt(dir, testAPI, store)
	require.NoError(t, err)
	return tc, store, dir
}

func TestTokenCacheImplementsTokenSource(t *testing.T) {
	var _ oauth2.TokenSource = (*TokenCache)(nil)
}

func TestTokenNotLoggedIn(t *testing.T) {
	tc, _, _ := newTestCache(t)

	_, err := tc.Token()

	var cliErr *output.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, output.ExitAuth, cliErr.ExitCode)
	assert.Contains(t, cliErr.Hint, "wdc auth login")
}

func TestTokenFallsBackToStoredAccessToken(t *testing.T) {
	tc, store, _ := newTestCache(t)
	require.NoError(t, tc.SaveAccessToken("long-lived"))

	got, err := store.Get(secrets.AccessTokenKey(testAPI))
	require.NoError(t, err)
	assert.Equal(t, "long-lived", got)

	token, err := tc.Token()
	require.NoError(t, err)
	assert.Equal(t, "long-lived", token.AccessToken)
}

func TestTokenPrefersLiveSession(t *testing.T) {
	tc, _, _ := newTestCache(t)
	require.NoError(t, tc.SaveAccessToken("long-lived"))
	require.NoError(t, tc.SaveSession(Session{
		AccessToken: "session",
		Username:    "alice",
		Expiry:      time.Now().Add(time.Hour),
	}))

	token, err := tc.Token()
	require.NoError(t, err)
	assert.Equal(t, "session", token.AccessToken)
	assert.Equal(t, "session", token.TokenType)

	session, err := tc.Session()
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, testAPI, session.APIURL)
}

func TestTokenIgnoresExpiredSession(t *testing.T) {
	tc, _, _ := newTestCache(t)
	require.NoError(t, tc.SaveAccessToken("long-lived"))
	require.NoError(t, tc.SaveSession(Session{
		AccessToken: "stale",
		Expiry:      time.Now().Add(30 * time.Second),
	}))

	token, err := tc.Token()
	require.NoError(t, err)
	assert.Equal(t, "long-lived", token.AccessToken)
}

func TestTokenIgnoresSessionForOtherAPI(t *testing.T) {
	tc, store, dir := newTestCache(t)
	require.NoError(t, tc.SaveSession(Session{AccessToken: "session"}))

	other, err := NewTokenCacheAt(dir, "https://other.example.com", store)
	require.NoError(t, err)

	_, err = other.Token()
	var cliErr *output.CLIError
	require.ErrorAs(t, err, &cliErr)

	_, err = other.Session()
	assert.Error(t, err)
}

func TestSessionWithoutExpiryStaysValid(t *testing.T) {
	tc, _, _ := newTestCache(t)
	require.NoError(t, tc.SaveSession(Session{AccessToken: "session"}))

	token, err := tc.Token()
	require.NoError(t, err)
	assert.Equal(t, "session", token.AccessToken)
}

func TestClearTokens(t *testing.T) {
	tc, store, dir := newTestCache(t)
	require.NoError(t, tc.SaveAccessToken("long-lived"))
	require.NoError(t, tc.SaveSession(Session{AccessToken: "session"}))

	require.NoError(t, tc.ClearTokens())

	_, err := store.Get(secrets.AccessTokenKey(testAPI))
	assert.ErrorIs(t, err, secrets.ErrNotFound)
	_, err = os.Stat(filepath.Join(dir, "token.json"))
	assert.True(t, os.IsNotExist(err))

	// clearing twice is fine
	require.NoError(t, tc.ClearTokens())
}

func TestSessionFilePermissions(t *testing.T) {
	tc, _, dir := newTestCache(t)
	require.NoError(t, tc.SaveSession(Session{AccessToken: "session"}))

	info, err := os.Stat(filepath.Join(dir, "token.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
