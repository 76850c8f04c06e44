package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/semmy-space/wdc/internal/output"
	"github.com/semmy-space/wdc/internal/wildduck"
	"golang.org/x/term"
)

// Authenticator is the part of the API client used to log in.
type Authenticator interface {
	Authenticate(ctx context.Context, req wildduck.AuthenticateRequest) (*wildduck.AuthenticateResult, error)
}

// LoginOptions configures PasswordLogin.
type LoginOptions struct {
	Username string
	Password string // prompted for when empty
	Scope    string
	AppID    string
	Sess     string
	IP       string
	// TTL is how long the server keeps the issued token; zero means no local expiry
	TTL time.Duration

	In  io.Reader // defaults to os.Stdin
	Out io.Writer // defaults to os.Stderr
}

// PasswordLogin checks username and password and asks the server for a session token.
func PasswordLogin(ctx context.Context, api Authenticator, opts LoginOptions) (*Session, *wildduck.AuthenticateResult, error) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stderr
	}
	if opts.Username == "" {
		return nil, nil, output.NewCLIError(output.ExitUsage, "username is required")
	}

	scope, err := ValidateScope(opts.Scope)
	if err != nil {
		return nil, nil, output.NewCLIError(output.ExitUsage, err.Error())
	}

	password := opts.Password
	if password == "" {
		password, err = readPassword(opts.In, opts.Out, fmt.Sprintf("Password for %s: ", opts.Username))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read password: %w", err)
		}
	}
	if password == "" {
		return nil, nil, output.NewCLIError(output.ExitUsage, "password is required")
	}

	result, err := api.Authenticate(ctx, wildduck.AuthenticateRequest{
		Username: opts.Username,
		Password: password,
		Protocol: "API",
		Scope:    scope,
		AppID:    opts.AppID,
		Token:    true,
		Sess:     opts.Sess,
		IP:       opts.IP,
	})
	if err != nil {
		return nil, nil, err
	}
	if result.Token == "" {
		return nil, result, output.NewCLIError(output.ExitAuth, "server did not issue an access token").
			WithHint("Check that the API has access control enabled")
	}

	session := &Session{
		AccessToken: result.Token,
		User:        result.ID,
		Username:    result.Username,
		Scope:       result.Scope,
	}
	if opts.TTL > 0 {
		session.Expiry = time.Now().Add(opts.TTL)
	}

	return session, result, nil
}

// Requires2FA reports whether the server wants a second factor before the
// session token becomes fully usable.
func Requires2FA(result *wildduck.AuthenticateResult) bool {
	switch v := result.Require2FA.(type) {
	case nil:
		return false
	case bool:
		return v
	case []any:
		return len(v) > 0
	default:
		return true
	}
}

// readPassword reads without echo from a terminal, or one line otherwise.
func readPassword(in io.Reader, out io.Writer, prompt string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, prompt)
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadSecret prompts on out and reads a secret from in without echo when in is a terminal.
func ReadSecret(in io.Reader, out io.Writer, prompt string) (string, error) {
	secret, err := readPassword(in, out, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(secret), nil
}
