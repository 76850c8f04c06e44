package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/semmy-space/wdc/internal/config"
	"github.com/semmy-space/wdc/internal/output"
	"github.com/semmy-space/wdc/internal/secrets"
	"golang.org/x/oauth2"
)

// expiryMargin treats session tokens this close to expiry as expired
const expiryMargin = time.Minute

// TokenCache implements oauth2.TokenSource over a file-cached session token
// and the long-lived access token kept in the secrets store.
type TokenCache struct {
	cachePath string
	lockPath  string
	store     secrets.Store
	apiURL    string
}

// Session is a token issued by POST /authenticate together with its owner.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type,omitempty"`
	User        string    `json:"user,omitempty"`
	Username    string    `json:"username,omitempty"`
	Scope       string    `json:"scope,omitempty"`
	APIURL      string    `json:"api_url"`
	Expiry      time.Time `json:"expiry,omitempty"`
}

// valid reports whether the session can still be used against apiURL.
func (s *Session) valid(apiURL string) bool {
	if s.AccessToken == "" || s.APIURL != apiURL {
		return false
	}
	return s.Expiry.IsZero() || time.Until(s.Expiry) > expiryMargin
}

// NewTokenCache creates a token cache for apiURL under the XDG cache directory.
func NewTokenCache(apiURL string, store secrets.Store) (*TokenCache, error) {
	return NewTokenCacheAt(config.CacheDir(), apiURL, store)
}

// NewTokenCacheAt creates a token cache keeping its files in dir.
func NewTokenCacheAt(dir, apiURL string, store secrets.Store) (*TokenCache, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cachePath := filepath.Join(dir, "token.json")
	return &TokenCache{
		cachePath: cachePath,
		lockPath:  cachePath + ".lock",
		store:     store,
		apiURL:    apiURL,
	}, nil
}

// withLock runs fn while holding the cache file lock.
func (tc *TokenCache) withLock(fn func() error) error {
	lock := flock.New(tc.lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock: timeout")
	}
	defer lock.Unlock()

	return fn()
}

// Token implements oauth2.TokenSource.
// A live session token wins over the stored access token.
func (tc *TokenCache) Token() (*oauth2.Token, error) {
	var token *oauth2.Token
	err := tc.withLock(func() error {
		if session, err := tc.readSession(); err == nil && session.valid(tc.apiURL) {
			token = &oauth2.Token{
				AccessToken: session.AccessToken,
				TokenType:   session.TokenType,
				Expiry:      session.Expiry,
			}
			return nil
		}

		stored, err := tc.store.Get(secrets.AccessTokenKey(tc.apiURL))
		if err != nil {
			if errors.Is(err, secrets.ErrNotFound) {
				return output.NewCLIError(output.ExitAuth, "Not logged in to "+tc.apiURL).
					WithHint("Run: wdc auth login, or set WDC_ACCESS_TOKEN")
			}
			return fmt.Errorf("failed to read access token: %w", err)
		}

		token = &oauth2.Token{AccessToken: stored, TokenType: "access"}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

// Session returns the cached session for this API, if any.
func (tc *TokenCache) Session() (*Session, error) {
	var session *Session
	err := tc.withLock(func() error {
		s, err := tc.readSession()
		if err != nil {
			return err
		}
		if s.APIURL != tc.apiURL {
			return os.ErrNotExist
		}
		session = s
		return nil
	})
	return session, err
}

// SaveSession caches a session token issued at login.
func (tc *TokenCache) SaveSession(session Session) error {
	session.APIURL = tc.apiURL
	if session.TokenType == "" {
		session.TokenType = "session"
	}

	return tc.withLock(func() error {
		data, err := json.MarshalIndent(session, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(tc.cachePath, data, 0600); err != nil {
			return fmt.Errorf("failed to cache session token: %w", err)
		}
		return nil
	})
}

// SaveAccessToken stores a long-lived access token in the secrets store.
func (tc *TokenCache) SaveAccessToken(token string) error {
	return tc.withLock(func() error {
		if err := tc.store.Set(secrets.AccessTokenKey(tc.apiURL), token); err != nil {
			return fmt.Errorf("failed to store access token: %w", err)
		}
		return nil
	})
}

// ClearTokens removes the stored access token and the cached session (used by logout).
func (tc *TokenCache) ClearTokens() error {
	err := tc.withLock(func() error {
		if err := tc.store.Delete(secrets.AccessTokenKey(tc.apiURL)); err != nil && !errors.Is(err, secrets.ErrNotFound) {
			return fmt.Errorf("failed to delete access token: %w", err)
		}
		if err := os.Remove(tc.cachePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete cache file: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := os.Remove(tc.lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete lock file: %w", err)
	}
	return nil
}

func (tc *TokenCache) readSession() (*Session, error) {
	data, err := os.ReadFile(tc.cachePath)
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
