package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"

	"github.com/semmy-space/wdc/internal/config"
	"github.com/semmy-space/wdc/internal/output"
)

// FormatterProvider wraps the formatter interface for Kong binding
type FormatterProvider struct {
	Formatter output.Formatter
	Out       io.Writer // raw payloads (message sources, attachments)
	Err       io.Writer
}

// CLI is the root command structure
type CLI struct {
	Globals

	Auth      AuthCmd      `cmd:"" help:"Authentication commands"`
	Users     UsersCmd     `cmd:"" help:"Manage users"`
	Mailboxes MailboxesCmd `cmd:"" help:"Manage mailboxes"`
	Addresses AddressesCmd `cmd:"" help:"Manage addresses"`
	Messages  MessagesCmd  `cmd:"" help:"Read and manage messages"`
	Submit    SubmitCmd    `cmd:"" help:"Compose and send a message"`
	Ls        LsCmd        `cmd:"" help:"Shortcuts for common listings"`
	Config    ConfigCmd    `cmd:"" help:"Configuration commands"`
	Setup     SetupCmd     `cmd:"" help:"Interactive first-time setup"`
	Schema    SchemaCmd    `cmd:"" help:"Print the command tree as JSON"`
	Version   VersionCmd   `cmd:"" help:"Show version information"`

	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`

	stdout    io.Writer        `kong:"-"`
	stderr    io.Writer        `kong:"-"`
	formatter output.Formatter `kong:"-"`
}

// AfterApply runs once flags are applied and before the command executes.
// It loads config, creates the formatter and binds dependencies.
func (c *CLI) AfterApply(ctx *kong.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return output.NewCLIError(output.ExitConfigError, err.Error()).
			WithHint("Check " + config.ConfigPath())
	}

	c.formatter = output.NewWithWriters(c.ResolvedOutput(cfg), c.ResultsOnly, c.stdout, c.stderr)

	ctx.Bind(cfg)
	ctx.Bind(&FormatterProvider{Formatter: c.formatter, Out: c.stdout, Err: c.stderr})
	ctx.Bind(&c.Globals)
	ctx.Bind(NewServiceProvider(&c.Globals, cfg, c.stderr, ctx.Model.Vars()["version"]))

	return nil
}

// AuthCmd holds authentication subcommands
type AuthCmd struct {
	Login  AuthLoginCmd  `cmd:"" help:"Log in with a password or store an access token"`
	Logout AuthLogoutCmd `cmd:"" help:"Invalidate the session and remove stored credentials"`
	Whoami AuthWhoamiCmd `cmd:"" help:"Show the authenticated user"`
	Log    AuthLogCmd    `cmd:"" help:"Show authentication events"`
}

// UsersCmd holds user subcommands
type UsersCmd struct {
	List    UsersListCmd    `cmd:"" help:"List users"`
	Get     UsersGetCmd     `cmd:"" help:"Get user details"`
	Create  UsersCreateCmd  `cmd:"" help:"Create a user"`
	Update  UsersUpdateCmd  `cmd:"" help:"Update a user"`
	Delete  UsersDeleteCmd  `cmd:"" help:"Delete a user"`
	Resolve UsersResolveCmd `cmd:"" help:"Resolve a username to a user id"`
	Logout  UsersLogoutCmd  `cmd:"" help:"Close all sessions of a user"`
	Updates UsersUpdatesCmd `cmd:"" help:"Stream change notifications for a user"`
}

// MailboxesCmd holds mailbox subcommands
type MailboxesCmd struct {
	List   MailboxesListCmd   `cmd:"" help:"List mailboxes"`
	Get    MailboxesGetCmd    `cmd:"" help:"Get mailbox details"`
	Create MailboxesCreateCmd `cmd:"" help:"Create a mailbox"`
	Update MailboxesUpdateCmd `cmd:"" help:"Rename or change a mailbox"`
	Delete MailboxesDeleteCmd `cmd:"" help:"Delete a mailbox"`
}

// AddressesCmd holds address subcommands
type AddressesCmd struct {
	List    AddressesListCmd    `cmd:"" help:"List addresses"`
	Get     AddressesGetCmd     `cmd:"" help:"Get address details"`
	Create  AddressesCreateCmd  `cmd:"" help:"Add an address to a user"`
	Update  AddressesUpdateCmd  `cmd:"" help:"Update an address"`
	Delete  AddressesDeleteCmd  `cmd:"" help:"Delete an address"`
	Resolve AddressesResolveCmd `cmd:"" help:"Resolve an address to its owner"`
}

// MessagesCmd holds message subcommands
type MessagesCmd struct {
	List       MessagesListCmd       `cmd:"" help:"List messages in a mailbox"`
	Search     MessagesSearchCmd     `cmd:"" help:"Search messages"`
	Get        MessagesGetCmd        `cmd:"" help:"Get a parsed message"`
	Source     MessagesSourceCmd     `cmd:"" help:"Download the RFC822 source of a message"`
	Attachment MessagesAttachmentCmd `cmd:"" help:"Download an attachment"`
	Update     MessagesUpdateCmd     `cmd:"" help:"Change flags of, or move, messages"`
	Delete     MessagesDeleteCmd     `cmd:"" help:"Delete a message"`
	Upload     MessagesUploadCmd     `cmd:"" help:"Store an RFC822 message in a mailbox"`
}

// ConfigCmd holds configuration subcommands
type ConfigCmd struct {
	Get   ConfigGetCmd        `cmd:"" help:"Get a configuration value"`
	Set   ConfigSetCmd        `cmd:"" help:"Set a configuration value"`
	Unset ConfigUnsetCmd      `cmd:"" help:"Remove a configuration value"`
	List  ConfigListConfigCmd `cmd:"" name:"list" help:"List all configuration values"`
	Path  ConfigPathCmd       `cmd:"" help:"Show config file path"`
}

// VersionCmd shows version information
type VersionCmd struct{}

func (cmd *VersionCmd) Run(kctx *kong.Context, fp *FormatterProvider) error {
	fmt.Fprintf(fp.Out, "wdc version %s\n", kctx.Model.Vars()["version"])
	return nil
}

// Execute parses args, runs the selected command and returns the process exit code.
func Execute(ctx context.Context, args []string, version string, stdout, stderr io.Writer, opts ...kong.Option) int {
	root := &CLI{stdout: stdout, stderr: stderr}

	options := []kong.Option{
		kong.Name("wdc"),
		kong.Description("Command line client for the WildDuck mail API"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Writers(stdout, stderr),
		kong.BindTo(ctx, (*context.Context)(nil)),
	}
	options = append(options, opts...)

	parser, err := kong.New(root, options...)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return output.ExitGeneral
	}

	kongplete.Complete(parser,
		kongplete.WithPredictor("file", complete.PredictFiles("*")),
		kongplete.WithPredictor("config-key", complete.PredictSet(config.Keys()...)),
	)

	kctx, err := parser.Parse(args)
	if err != nil {
		var cliErr *output.CLIError
		if errors.As(err, &cliErr) {
			output.ExitWithError(output.NewWithWriters("plain", false, stdout, stderr), cliErr)
			return cliErr.ExitCode
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return output.ExitUsage
	}

	if err := kctx.Run(); err != nil {
		formatter := root.formatter
		if formatter == nil {
			formatter = output.NewWithWriters("plain", false, stdout, stderr)
		}
		output.ExitWithError(formatter, err)
		return output.ExitCode(err)
	}

	return output.ExitOK
}

// Main is the entry point used by the wdc binary.
func Main(ctx context.Context, version string) int {
	return Execute(ctx, os.Args[1:], version, os.Stdout, os.Stderr)
}
