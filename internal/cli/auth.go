package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/semmy-space/wdc/internal/auth"
	"github.com/semmy-space/wdc/internal/output"
	"github.com/semmy-space/wdc/internal/secrets"
	"github.com/semmy-space/wdc/internal/wildduck"
)

// AuthLoginCmd implements the auth login command
type AuthLoginCmd struct {
	Username string        `arg:"" optional:"" help:"Username to log in as"`
	Token    bool          `help:"Store a long-lived access token instead of logging in with a password"`
	Scope    string        `help:"Scope of the issued token" default:"master" enum:"master,imap,smtp,pop3"`
	AppID    string        `help:"Application id recorded in the authentication log" name:"app-id"`
	TTL      time.Duration `help:"Treat the session token as expired after this long (0 = never)" name:"ttl"`
}

// Run executes the login command
func (cmd *AuthLoginCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	if cmd.Token {
		return cmd.storeToken(sp, fp, globals)
	}

	if cmd.Username == "" {
		return output.NewCLIError(output.ExitUsage, "username is required").
			WithHint("Run: wdc auth login <username>, or wdc auth login --token")
	}
	if globals.NoInput && term.IsTerminal(int(os.Stdin.Fd())) {
		return output.NewCLIError(output.ExitUsage, "password prompt disabled by --no-input").
			WithHint("Pipe the password on stdin")
	}

	apiURL, err := sp.APIURL()
	if err != nil {
		return err
	}

	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would authenticate %s against %s (scope %s)\n", cmd.Username, apiURL, cmd.Scope)
		return nil
	}

	tokenCache, err := sp.TokenCache()
	if err != nil {
		return err
	}

	services, err := sp.Services()
	if err != nil {
		var cliErr *output.CLIError
		if errors.As(err, &cliErr) && cliErr.ExitCode == output.ExitAuth {
			cliErr.Hint = "Password login needs an API access token first. Run: wdc auth login --token"
		}
		return err
	}

	session, result, err := auth.PasswordLogin(ctx, services.Auth, auth.LoginOptions{
		Username: cmd.Username,
		Scope:    cmd.Scope,
		AppID:    cmd.AppID,
		Sess:     uuid.NewString(),
		TTL:      cmd.TTL,
		In:       os.Stdin,
		Out:      fp.Err,
	})
	if err != nil {
		return output.FromAPIError(err, "login")
	}

	if err := tokenCache.SaveSession(*session); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to save session: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	fmt.Fprintf(fp.Err, "✓ Logged in as %s (%s)\n", session.Username, session.User)
	fmt.Fprintf(fp.Err, "API: %s\n", apiURL)
	fmt.Fprintf(fp.Err, "Scope: %s\n", session.Scope)
	if !session.Expiry.IsZero() {
		fmt.Fprintf(fp.Err, "Session expires: %s\n", session.Expiry.Format(time.RFC3339))
	}
	if auth.Requires2FA(result) {
		fmt.Fprintf(fp.Err, "Warning: the account requires a second factor before the token is fully usable\n")
	}
	if result.RequirePasswordChange {
		fmt.Fprintf(fp.Err, "Warning: the account must change its password\n")
	}

	return nil
}

func (cmd *AuthLoginCmd) storeToken(sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	apiURL, err := sp.APIURL()
	if err != nil {
		return err
	}

	token := globals.AccessToken
	if token == "" {
		if globals.NoInput && term.IsTerminal(int(os.Stdin.Fd())) {
			return output.NewCLIError(output.ExitUsage, "token prompt disabled by --no-input").
				WithHint("Set WDC_ACCESS_TOKEN or pipe the token on stdin")
		}
		token, err = auth.ReadSecret(os.Stdin, fp.Err, "Access token: ")
		if err != nil {
			return fmt.Errorf("failed to read access token: %w", err)
		}
	}
	if token == "" {
		return output.NewCLIError(output.ExitUsage, "access token is required")
	}

	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would store access token %s for %s\n", maskSecret(token), apiURL)
		return nil
	}

	tokenCache, err := sp.TokenCache()
	if err != nil {
		return err
	}
	if err := tokenCache.SaveAccessToken(token); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to save access token: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	fmt.Fprintf(fp.Err, "✓ Access token stored for %s\n", apiURL)
	fmt.Fprintf(fp.Err, "Credentials stored in %s\n", storageType())
	return nil
}

// storageType names the secrets backend NewStore picks on this machine
func storageType() string {
	switch os.Getenv("WDC_SECRETS_BACKEND") {
	case "file":
		return "encrypted file"
	case "keyring":
		return "keyring"
	}
	if secrets.IsWSL() || secrets.IsHeadless() {
		return "encrypted file"
	}
	return "keyring"
}

// AuthLogoutCmd implements the auth logout command
type AuthLogoutCmd struct {
	Local bool `help:"Only remove local credentials, keep the session valid on the server"`
}

// Run executes the logout command
func (cmd *AuthLogoutCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	apiURL, err := sp.APIURL()
	if err != nil {
		return err
	}

	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would log out from %s\n", apiURL)
		return nil
	}

	tokenCache, err := sp.TokenCache()
	if err != nil {
		return err
	}

	if !cmd.Local {
		if session, err := tokenCache.Session(); err == nil && session.AccessToken != "" {
			client, err := sp.NewClient(session.AccessToken)
			if err != nil {
				return err
			}
			if err := client.Auth().Invalidate(ctx); err != nil && !errors.Is(err, wildduck.ErrUnauthorized) {
				fmt.Fprintf(fp.Err, "Warning: failed to invalidate session on server: %v\n", err)
			}
		}
	}

	if err := tokenCache.ClearTokens(); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to clear tokens: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	fmt.Fprintf(fp.Err, "Logged out from %s\n", apiURL)
	fmt.Fprintf(fp.Err, "Credentials removed\n")
	return nil
}

// WhoamiInfo is the display struct for auth whoami
type WhoamiInfo struct {
	ID         string
	Username   string
	Name       string
	Address    string
	Quota      string
	API        string
	Credential string
}

// AuthWhoamiCmd implements the auth whoami command
type AuthWhoamiCmd struct{}

// Run executes the whoami command
func (cmd *AuthWhoamiCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	services, err := sp.Services()
	if err != nil {
		return err
	}

	user, err := services.Users.Get(ctx, sp.User())
	if err != nil {
		return output.FromAPIError(err, "get user")
	}

	apiURL, _ := sp.APIURL()
	info := WhoamiInfo{
		ID:         user.ID,
		Username:   user.Username,
		Name:       user.Name,
		Address:    user.Address,
		Quota:      formatQuota(user.Limits.Quota),
		API:        apiURL,
		Credential: credentialSource(sp, globals),
	}

	return fp.Formatter.Print(info)
}

func credentialSource(sp *ServiceProvider, globals *Globals) string {
	if globals.AccessToken != "" {
		return "access token from environment (" + maskSecret(globals.AccessToken) + ")"
	}
	tokenCache, err := sp.TokenCache()
	if err != nil {
		return "unknown"
	}
	if session, err := tokenCache.Session(); err == nil {
		if session.Expiry.IsZero() {
			return "session token"
		}
		return "session token, expires " + session.Expiry.Format(time.RFC3339)
	}
	return "stored access token"
}

// AuthEventRow is a display struct for authentication log entries
type AuthEventRow struct {
	ID       string
	Action   string
	Result   string
	Protocol string
	IP       string
	Created  string
}

// AuthLogCmd lists authentication events, or shows one
type AuthLogCmd struct {
	Event    string `arg:"" optional:"" help:"Event id to show"`
	Action   string `help:"Only events of this action, e.g. authentication"`
	Limit    int    `help:"Page size" short:"l" default:"20"`
	Next     string `help:"Cursor for the next page"`
	Previous string `help:"Cursor for the previous page"`
	Page     int    `help:"Page number"`
}

// Run executes the auth log command
func (cmd *AuthLogCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	services, err := sp.Services()
	if err != nil {
		return err
	}

	if cmd.Event != "" {
		event, err := services.Auth.GetEvent(ctx, sp.User(), cmd.Event)
		if err != nil {
			return output.FromAPIError(err, "get auth event")
		}
		return fp.Formatter.Print(event)
	}

	resp, err := services.Auth.ListEvents(ctx, sp.User(), wildduck.AuthLogParams{
		Action:     optString(cmd.Action),
		PageParams: pageParams(cmd.Limit, cmd.Next, cmd.Previous, cmd.Page),
	})
	if err != nil {
		return output.FromAPIError(err, "list auth events")
	}

	rows := make([]AuthEventRow, len(resp.Results))
	for i, ev := range resp.Results {
		rows[i] = AuthEventRow{
			ID:       ev.ID,
			Action:   ev.Action,
			Result:   ev.Result,
			Protocol: ev.Protocol,
			IP:       ev.IP,
			Created:  formatTime(ev.Created),
		}
	}

	columns := []output.Column{
		{Name: "ID", Key: "ID"},
		{Name: "Action", Key: "Action"},
		{Name: "Result", Key: "Result"},
		{Name: "Protocol", Key: "Protocol"},
		{Name: "IP", Key: "IP"},
		{Name: "Created", Key: "Created"},
	}

	if err := fp.Formatter.PrintList(rows, columns); err != nil {
		return err
	}
	printCursorHint(fp.Err, resp.NextCursor, resp.PreviousCursor)
	return nil
}
