package auth

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/semmy-space/wdc/internal/output"
	"github.com/semmy-space/wdc/internal/wildduck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	got    wildduck.AuthenticateRequest
	result *wildduck.AuthenticateResult
	err    error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, req wildduck.AuthenticateRequest) (*wildduck.AuthenticateResult, error) {
	f.got = req
	return f.result, f.err
}

func TestPasswordLoginReadsPasswordFromInput(t *testing.T) {
	api := &fakeAuthenticator{result: &wildduck.AuthenticateResult{
		Success:  true,
		ID:       "u1",
		Username: "alice",
		Scope:    "master",
		Token:    "tok",
	}}

	session, result, err := PasswordLogin(context.Background(), api, LoginOptions{
		Username: "alice",
		TTL:      time.Hour,
		In:       strings.NewReader("s3cret\n"),
		Out:      &bytes.Buffer{},
	})
	require.NoError(t, err)

	assert.Equal(t, "s3cret", api.got.Password)
	assert.Equal(t, "master", api.got.Scope)
	assert.True(t, api.got.Token)
	assert.Equal(t, "tok", session.AccessToken)
	assert.Equal(t, "u1", session.User)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.Expiry, time.Minute)
	assert.True(t, result.Success)
}

func TestPasswordLoginValidation(t *testing.T) {
	tests := []struct {
		name string
		opts LoginOptions
		want string
	}{
		{name: "missing username", opts: LoginOptions{Password: "x"}, want: "username is required"},
		{name: "bad scope", opts: LoginOptions{Username: "a", Password: "x", Scope: "root"}, want: "unknown scope"},
		{name: "empty password", opts: LoginOptions{Username: "a", In: strings.NewReader("\n")}, want: "password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAuthenticator{}
			tt.opts.Out = &bytes.Buffer{}

			_, _, err := PasswordLogin(context.Background(), api, tt.opts)

			var cliErr *output.CLIError
			require.ErrorAs(t, err, &cliErr)
			assert.Equal(t, output.ExitUsage, cliErr.ExitCode)
			assert.Contains(t, cliErr.Message, tt.want)
		})
	}
}

func TestPasswordLoginPropagatesAPIError(t *testing.T) {
	api := &fakeAuthenticator{err: &wildduck.APIError{StatusCode: 403, Message: "Authentication failed"}}

	_, _, err := PasswordLogin(context.Background(), api, LoginOptions{Username: "a", Password: "x"})
	assert.ErrorIs(t, err, wildduck.ErrForbidden)
}

func TestPasswordLoginWithoutIssuedToken(t *testing.T) {
	api := &fakeAuthenticator{result: &wildduck.AuthenticateResult{Success: true, ID: "u1"}}

	_, _, err := PasswordLogin(context.Background(), api, LoginOptions{Username: "a", Password: "x"})

	var cliErr *output.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, output.ExitAuth, cliErr.ExitCode)
}

func TestRequires2FA(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected bool
	}{
		{name: "absent", value: nil, expected: false},
		{name: "false", value: false, expected: false},
		{name: "empty list", value: []any{}, expected: false},
		{name: "totp", value: []any{"totp"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Requires2FA(&wildduck.AuthenticateResult{Require2FA: tt.value}))
		})
	}
}

func TestReadSecretTrims(t *testing.T) {
	secret, err := ReadSecret(strings.NewReader("  tok-123 \n"), &bytes.Buffer{}, "Token: ")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", secret)
}
