package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T, password string) (*FileStore, string) {
	t.Helper()
	t.Setenv(quietEnv, "1")
	path := filepath.Join(t.TempDir(), "wdc", "credentials.enc")
	store, err := NewFileStoreAt(path, password)
	require.NoError(t, err)
	return store, path
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, path := newTestFileStore(t, "hunter2")

	_, err := store.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set("access_token:mail.example.com", "tok-1"))
	require.NoError(t, store.Set("access_token:other.example.com", "tok-2"))

	got, err := store.Get("access_token:mail.example.com")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got)

	keys, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"access_token:mail.example.com", "access_token:other.example.com"}, keys)

	require.NoError(t, store.Delete("access_token:mail.example.com"))
	assert.ErrorIs(t, store.Delete("access_token:mail.example.com"), ErrNotFound)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStoreIsEncrypted(t *testing.T) {
	store, path := newTestFileStore(t, "hunter2")
	require.NoError(t, store.Set("k", "super-secret-token"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "super-secret-token")
}

func TestFileStoreWrongPassword(t *testing.T) {
	store, path := newTestFileStore(t, "right")
	require.NoError(t, store.Set("k", "v"))

	other, err := NewFileStoreAt(path, "wrong")
	require.NoError(t, err)

	_, err = other.Get("k")
	assert.ErrorContains(t, err, "failed to decrypt credentials")
}

func TestFileStorePasswordFromEnv(t *testing.T) {
	store, path := newTestFileStore(t, "from-env")
	require.NoError(t, store.Set("k", "v"))

	t.Setenv(storePasswordEnv, "from-env")
	reopened, err := NewFileStoreAt(path, "")
	require.NoError(t, err)

	got, err := reopened.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set("b", "2"))
	require.NoError(t, store.Set("a", "1"))

	got, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	keys, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, store.Delete("a"))
	_, err = store.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccessTokenKey(t *testing.T) {
	tests := []struct {
		apiURL   string
		expected string
	}{
		{"https://Mail.Example.com", "access_token:mail.example.com"},
		{"http://127.0.0.1:8080/", "access_token:127.0.0.1:8080"},
		{"https://h/api", "access_token:h/api"},
		{"not a url", "access_token"},
	}

	for _, tt := range tests {
		t.Run(tt.apiURL, func(t *testing.T) {
			assert.Equal(t, tt.expected, AccessTokenKey(tt.apiURL))
		})
	}
}

func TestNewStoreRejectsUnknownBackend(t *testing.T) {
	t.Setenv(backendEnv, "vault")
	_, err := NewStore()
	assert.ErrorContains(t, err, "unknown WDC_SECRETS_BACKEND")
}
