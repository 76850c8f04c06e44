package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/semmy-space/wdc/internal/auth"
	"github.com/semmy-space/wdc/internal/output"
	"github.com/semmy-space/wdc/internal/wildduck"
)

// UserListRow is a display struct for user list output
type UserListRow struct {
	ID       string
	Username string
	Name     string
	Address  string
	Quota    string
	Status   string
}

func userStatus(disabled, suspended, activated bool) string {
	switch {
	case disabled:
		return "disabled"
	case suspended:
		return "suspended"
	case !activated:
		return "inactive"
	}
	return "active"
}

// UsersListCmd lists users
type UsersListCmd struct {
	Query    string   `arg:"" optional:"" help:"Partial match on username or address"`
	Tag      []string `help:"Only users with any of these tags"`
	Limit    int      `help:"Page size" short:"l" default:"20"`
	Next     string   `help:"Cursor for the next page"`
	Previous string   `help:"Cursor for the previous page"`
	Page     int      `help:"Page number"`
}

// Run executes the list users command
func (cmd *UsersListCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	services, err := sp.Services()
	if err != nil {
		return err
	}

	resp, err := services.Users.List(ctx, wildduck.UserListParams{
		Query:      optString(cmd.Query),
		Tags:       cmd.Tag,
		PageParams: pageParams(cmd.Limit, cmd.Next, cmd.Previous, cmd.Page),
	})
	if err != nil {
		return output.FromAPIError(err, "list users")
	}

	rows := make([]UserListRow, len(resp.Results))
	for i, u := range resp.Results {
		rows[i] = UserListRow{
			ID:       u.ID,
			Username: u.Username,
			Name:     u.Name,
			Address:  u.Address,
			Quota:    formatQuota(u.Quota),
			Status:   userStatus(u.Disabled, u.Suspended, u.Activated),
		}
	}

	columns := []output.Column{
		{Name: "ID", Key: "ID"},
		{Name: "Username", Key: "Username"},
		{Name: "Name", Key: "Name", Width: 30},
		{Name: "Address", Key: "Address"},
		{Name: "Quota", Key: "Quota"},
		{Name: "Status", Key: "Status"},
	}

	if err := fp.Formatter.PrintList(rows, columns); err != nil {
		return err
	}
	printCursorHint(fp.Err, resp.NextCursor, resp.PreviousCursor)
	return nil
}

// UserDetail is a display struct for a single user
type UserDetail struct {
	ID         string
	Username   string
	Name       string
	Address    string
	Quota      string
	Retention  string
	Tags       string
	Targets    string
	TwoFactor  string
	Encrypt    string
	Status     string
	PasswordOK string
}

// UsersGetCmd gets details for one user
type UsersGetCmd struct {
	User string `arg:"" optional:"" help:"User id or username (default: --user or me)"`
}

// Run executes the get user command
func (cmd *UsersGetCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	services, err := sp.Services()
	if err != nil {
		return err
	}

	id, err := resolveUserID(ctx, services.Users, cmd.User, sp.User())
	if err != nil {
		return err
	}

	user, err := services.Users.Get(ctx, id)
	if err != nil {
		return output.FromAPIError(err, "get user")
	}

	if globals.ResolvedOutput(sp.cfg) == "json" {
		return fp.Formatter.Print(user)
	}

	retention := "none"
	if user.Retention > 0 {
		retention = (time.Duration(user.Retention) * time.Millisecond).String()
	}

	return fp.Formatter.Print(UserDetail{
		ID:         user.ID,
		Username:   user.Username,
		Name:       user.Name,
		Address:    user.Address,
		Quota:      formatQuota(user.Limits.Quota),
		Retention:  retention,
		Tags:       strings.Join(user.Tags, ", "),
		Targets:    strings.Join(user.Targets, ", "),
		TwoFactor:  strings.Join(user.Enabled2FA, ", "),
		Encrypt:    formatBool(user.EncryptMessages),
		Status:     userStatus(user.Disabled, user.Suspended, user.Activated),
		PasswordOK: formatBool(user.HasPasswordSet),
	})
}

// userResolver is the part of the users API used to turn usernames into ids
type userResolver interface {
	Resolve(ctx context.Context, username string) (string, error)
}

// resolveUserID accepts a user id, "me" or a username; empty falls back to def
func resolveUserID(ctx context.Context, api userResolver, ref, def string) (string, error) {
	if ref == "" {
		ref = def
	}
	if ref == "" || ref == wildduck.Me || isObjectID(ref) {
		return ref, nil
	}
	id, err := api.Resolve(ctx, ref)
	if err != nil {
		return "", output.FromAPIError(err, fmt.Sprintf("resolve user %q", ref))
	}
	return id, nil
}

// UsersCreateCmd creates a user
type UsersCreateCmd struct {
	Username              string   `arg:"" help:"Username (letters, digits and dots)"`
	Password              string   `help:"Password; prompted for when omitted" env:"WDC_NEW_PASSWORD"`
	NoPassword            bool     `help:"Create the user without a password" name:"no-password"`
	Address               string   `help:"Main address; defaults to username@ the server domain"`
	Name                  string   `help:"Display name"`
	Tag                   []string `help:"Tags (repeatable)"`
	Quota                 int64    `help:"Storage quota in bytes"`
	Recipients            int      `help:"Daily recipient limit"`
	Forwards              int      `help:"Daily forward limit"`
	Targets               []string `help:"Forward copies of every message to these targets"`
	RequirePasswordChange bool     `help:"Require a password change at first login" name:"require-password-change"`
}

// Run executes the create user command
func (cmd *UsersCreateCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	req := wildduck.CreateUserRequest{
		Username:              cmd.Username,
		Password:              cmd.Password,
		Address:               cmd.Address,
		Name:                  cmd.Name,
		Tags:                  cmd.Tag,
		Targets:               cmd.Targets,
		RequirePasswordChange: cmd.RequirePasswordChange,
		Sess:                  uuid.NewString(),
	}
	if cmd.Quota > 0 {
		req.Quota = &cmd.Quota
	}
	req.Recipients = optInt(cmd.Recipients)
	req.Forwards = optInt(cmd.Forwards)

	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would create user: %s\n", cmd.Username)
		if cmd.Address != "" {
			fmt.Fprintf(fp.Err, "  Address: %s\n", cmd.Address)
		}
		if cmd.Quota > 0 {
			fmt.Fprintf(fp.Err, "  Quota: %s\n", formatBytes(cmd.Quota))
		}
		return nil
	}

	if req.Password == "" && !cmd.NoPassword {
		if globals.NoInput {
			return output.NewCLIError(output.ExitUsage, "password is required").
				WithHint("Use --password, WDC_NEW_PASSWORD or --no-password")
		}
		password, err := auth.ReadSecret(os.Stdin, fp.Err, fmt.Sprintf("Password for %s: ", cmd.Username))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		req.Password = password
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	resp, err := services.Users.Create(ctx, req)
	if err != nil {
		return output.FromAPIError(err, "create user")
	}

	fmt.Fprintf(fp.Err, "User created: %s\n", cmd.Username)
	return fp.Formatter.Print(resp)
}

// UsersUpdateCmd updates a user
type UsersUpdateCmd struct {
	User      string   `arg:"" help:"User id or username"`
	Name      string   `help:"New display name"`
	Password  string   `help:"New password" env:"WDC_NEW_PASSWORD"`
	Quota     int64    `help:"Storage quota in bytes"`
	Tag       []string `help:"Replace tags (repeatable)"`
	Disable   bool     `help:"Disable the account"`
	Enable    bool     `help:"Enable the account"`
	Suspend   bool     `help:"Suspend the account"`
	Unsuspend bool     `help:"Lift a suspension"`
	Reset2FA  bool     `help:"Disable all second factors" name:"reset-2fa"`
}

// Run executes the update user command
func (cmd *UsersUpdateCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	disabled, err := triState(cmd.Disable, cmd.Enable)
	if err != nil {
		return output.NewCLIError(output.ExitUsage, "--disable and --enable are mutually exclusive")
	}
	suspended, err := triState(cmd.Suspend, cmd.Unsuspend)
	if err != nil {
		return output.NewCLIError(output.ExitUsage, "--suspend and --unsuspend are mutually exclusive")
	}

	req := wildduck.UpdateUserRequest{
		Name:      optString(cmd.Name),
		Password:  cmd.Password,
		Tags:      cmd.Tag,
		Disabled:  disabled,
		Suspended: suspended,
		Sess:      uuid.NewString(),
	}
	if cmd.Quota > 0 {
		req.Quota = &cmd.Quota
	}
	if cmd.Reset2FA {
		req.Disable2FA = wildduck.Bool(true)
	}

	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would update user: %s\n", cmd.User)
		return nil
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	id, err := resolveUserID(ctx, services.Users, cmd.User, "")
	if err != nil {
		return err
	}

	if err := services.Users.Update(ctx, id, req); err != nil {
		return output.FromAPIError(err, "update user")
	}

	fmt.Fprintf(fp.Err, "User updated: %s\n", cmd.User)
	return nil
}

// UsersDeleteCmd deletes a user
type UsersDeleteCmd struct {
	User        string        `arg:"" help:"User id or username"`
	Confirm     bool          `help:"Confirm deletion"`
	DeleteAfter time.Duration `help:"Keep the account recoverable for this long" name:"delete-after"`
}

// Run executes the delete user command
func (cmd *UsersDeleteCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	if err := requireConfirmation(globals, cmd.Confirm, "Deletion"); err != nil {
		return err
	}

	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would delete user: %s\n", cmd.User)
		return nil
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	id, err := resolveUserID(ctx, services.Users, cmd.User, "")
	if err != nil {
		return err
	}

	params := wildduck.DeleteUserParams{Sess: wildduck.String(uuid.NewString())}
	if cmd.DeleteAfter > 0 {
		params.DeleteAfter = wildduck.Time(time.Now().Add(cmd.DeleteAfter))
	}

	result, err := services.Users.Delete(ctx, id, params)
	if err != nil {
		return output.FromAPIError(err, "delete user")
	}

	if result.DeleteAfter != nil {
		fmt.Fprintf(fp.Err, "User scheduled for deletion: %s (after %s)\n", cmd.User, result.DeleteAfter.Format(time.RFC3339))
		return nil
	}
	fmt.Fprintf(fp.Err, "User deleted: %s\n", cmd.User)
	return nil
}

// UsersResolveCmd prints the id of a username
type UsersResolveCmd struct {
	Username string `arg:"" help:"Username or main address"`
}

// Run executes the resolve user command
func (cmd *UsersResolveCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	services, err := sp.Services()
	if err != nil {
		return err
	}

	id, err := services.Users.Resolve(ctx, cmd.Username)
	if err != nil {
		return output.FromAPIError(err, "resolve user")
	}

	fmt.Fprintln(fp.Out, id)
	return nil
}

// UsersLogoutCmd closes all IMAP sessions of a user
type UsersLogoutCmd struct {
	User   string `arg:"" optional:"" help:"User id or username (default: --user or me)"`
	Reason string `help:"Message shown to connected clients" default:"Logout requested from API"`
}

// Run executes the logout user command
func (cmd *UsersLogoutCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	if globals.DryRun {
		target := cmd.User
		if target == "" {
			target = sp.User()
		}
		fmt.Fprintf(fp.Err, "[DRY RUN] Would log out all sessions of %s\n", target)
		return nil
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	id, err := resolveUserID(ctx, services.Users, cmd.User, sp.User())
	if err != nil {
		return err
	}

	if err := services.Users.Logout(ctx, id, cmd.Reason); err != nil {
		return output.FromAPIError(err, "log out user")
	}

	fmt.Fprintf(fp.Err, "Sessions closed for %s\n", id)
	return nil
}

// UpdateRow is one change notification
type UpdateRow struct {
	ID      string
	Type    string
	Command string
	Mailbox string
	Message int
}

// UsersUpdatesCmd streams change notifications
type UsersUpdatesCmd struct {
	User   string        `arg:"" optional:"" help:"User id or username (default: --user or me)"`
	Follow bool          `help:"Reconnect with backoff when the stream ends" short:"f"`
	MaxGap time.Duration `help:"Longest wait between reconnect attempts" name:"max-gap" default:"1m"`
}

var errStreamEnded = errors.New("update stream ended")

// Run executes the updates command
func (cmd *UsersUpdatesCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	services, err := sp.Services()
	if err != nil {
		return err
	}

	id, err := resolveUserID(ctx, services.Users, cmd.User, sp.User())
	if err != nil {
		return err
	}

	if !cmd.Follow {
		err := streamUpdates(ctx, services.Users, id, fp, nil)
		if errors.Is(err, errStreamEnded) || ctx.Err() != nil {
			return nil
		}
		return output.FromAPIError(err, "stream updates")
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0
	b.MaxInterval = cmd.MaxGap

	notify := func(err error, wait time.Duration) {
		fmt.Fprintf(fp.Err, "stream interrupted (%v), reconnecting in %s\n", err, wait.Round(time.Second))
	}

	err = followUpdates(ctx, services.Users, id, fp, b, notify)
	if ctx.Err() != nil {
		return nil
	}
	return output.FromAPIError(err, "stream updates")
}

// followUpdates reconnects the stream until a permanent error or cancellation.
// The backoff starts over after every successful connect.
func followUpdates(ctx context.Context, api updatesAPI, user string, fp *FormatterProvider, b *backoff.ExponentialBackOff, notify backoff.Notify) error {
	op := func() error {
		err := streamUpdates(ctx, api, user, fp, b.Reset)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify)
}

// isPermanent reports errors that reconnecting cannot fix
func isPermanent(err error) bool {
	return errors.Is(err, wildduck.ErrUnauthorized) ||
		errors.Is(err, wildduck.ErrForbidden) ||
		errors.Is(err, wildduck.ErrNotFound)
}

// updatesAPI is the part of the users API used to stream notifications
type updatesAPI interface {
	Updates(ctx context.Context, user string) (*wildduck.Subscription, error)
}

// streamUpdates prints events until the stream closes. A clean close returns errStreamEnded.
func streamUpdates(ctx context.Context, api updatesAPI, user string, fp *FormatterProvider, connected func()) error {
	sub, err := api.Updates(ctx, user)
	if err != nil {
		return err
	}
	defer sub.Close()
	if connected != nil {
		connected()
	}

	for ev := range sub.Events() {
		row := UpdateRow{ID: ev.ID, Type: ev.Type}
		var payload struct {
			Command string `json:"command"`
			Mailbox string `json:"mailbox"`
			Message int    `json:"message"`
		}
		if err := ev.Decode(&payload); err == nil {
			row.Command = payload.Command
			row.Mailbox = payload.Mailbox
			row.Message = payload.Message
		}
		if err := fp.Formatter.Print(row); err != nil {
			return err
		}
	}

	if err := sub.Err(); err != nil {
		return err
	}
	return errStreamEnded
}
