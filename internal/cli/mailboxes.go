package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/semmy-space/wdc/internal/output"
	"github.com/semmy-space/wdc/internal/wildduck"
)

// MailboxRow is a display struct for mailbox list output
type MailboxRow struct {
	ID         string
	Path       string
	SpecialUse string
	Total      int
	Unseen     int
	Size       string
	Hidden     string
}

// MailboxesListCmd lists the mailboxes of a user
type MailboxesListCmd struct {
	Counters   bool `help:"Include message and unseen counts"`
	Sizes      bool `help:"Include mailbox sizes"`
	Hidden     bool `help:"Include hidden mailboxes" name:"show-hidden"`
	SpecialUse bool `help:"Only special use mailboxes (Sent, Trash, ...)" name:"special-use"`
}

// Run executes the list mailboxes command
func (cmd *MailboxesListCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	services, err := sp.Services()
	if err != nil {
		return err
	}

	params := wildduck.MailboxListParams{}
	if cmd.SpecialUse {
		params.SpecialUse = wildduck.Bool(true)
	}
	if cmd.Hidden {
		params.ShowHidden = wildduck.Bool(true)
	}
	if cmd.Counters {
		params.Counters = wildduck.Bool(true)
	}
	if cmd.Sizes {
		params.Sizes = wildduck.Bool(true)
	}

	resp, err := services.Mailboxes.List(ctx, sp.User(), params)
	if err != nil {
		return output.FromAPIError(err, "list mailboxes")
	}

	rows := make([]MailboxRow, len(resp.Results))
	for i, mb := range resp.Results {
		rows[i] = MailboxRow{
			ID:         mb.ID,
			Path:       mb.Path,
			SpecialUse: mb.SpecialUse,
			Total:      mb.Total,
			Unseen:     mb.Unseen,
			Hidden:     formatBool(mb.Hidden),
		}
		if cmd.Sizes {
			rows[i].Size = formatBytes(mb.Size)
		}
	}

	columns := []output.Column{
		{Name: "ID", Key: "ID"},
		{Name: "Path", Key: "Path"},
		{Name: "Special", Key: "SpecialUse"},
	}
	if cmd.Counters {
		columns = append(columns,
			output.Column{Name: "Total", Key: "Total"},
			output.Column{Name: "Unseen", Key: "Unseen"},
		)
	}
	if cmd.Sizes {
		columns = append(columns, output.Column{Name: "Size", Key: "Size"})
	}
	if cmd.Hidden {
		columns = append(columns, output.Column{Name: "Hidden", Key: "Hidden"})
	}

	return fp.Formatter.PrintList(rows, columns)
}

// MailboxesGetCmd shows one mailbox
type MailboxesGetCmd struct {
	Mailbox string `arg:"" help:"Mailbox id or path"`
}

// Run executes the get mailbox command
func (cmd *MailboxesGetCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	services, err := sp.Services()
	if err != nil {
		return err
	}

	user := sp.User()
	id, err := resolveMailbox(ctx, services.Mailboxes, user, cmd.Mailbox)
	if err != nil {
		return err
	}

	mailbox, err := services.Mailboxes.Get(ctx, user, id)
	if err != nil {
		return output.FromAPIError(err, "get mailbox")
	}

	return fp.Formatter.Print(mailbox)
}

// MailboxesCreateCmd creates a mailbox
type MailboxesCreateCmd struct {
	Path      string        `arg:"" help:"Mailbox path, folders separated by /"`
	Hidden    bool          `help:"Hide the mailbox from IMAP listings"`
	Retention time.Duration `help:"Delete messages older than this"`
}

// Run executes the create mailbox command
func (cmd *MailboxesCreateCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would create mailbox: %s\n", cmd.Path)
		return nil
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	resp, err := services.Mailboxes.Create(ctx, sp.User(), wildduck.CreateMailboxRequest{
		Path:      cmd.Path,
		Hidden:    cmd.Hidden,
		Retention: cmd.Retention.Milliseconds(),
	})
	if err != nil {
		return output.FromAPIError(err, "create mailbox")
	}

	fmt.Fprintf(fp.Err, "Mailbox created: %s\n", cmd.Path)
	return fp.Formatter.Print(resp)
}

// MailboxesUpdateCmd renames or reconfigures a mailbox
type MailboxesUpdateCmd struct {
	Mailbox     string        `arg:"" help:"Mailbox id or path"`
	Rename      string        `help:"New path"`
	Retention   time.Duration `help:"Delete messages older than this"`
	Subscribe   bool          `help:"Subscribe to the mailbox"`
	Unsubscribe bool          `help:"Unsubscribe from the mailbox"`
	Hide        bool          `help:"Hide the mailbox from IMAP listings"`
	Unhide      bool          `help:"Show the mailbox in IMAP listings"`
}

// Run executes the update mailbox command
func (cmd *MailboxesUpdateCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	subscribed, err := triState(cmd.Subscribe, cmd.Unsubscribe)
	if err != nil {
		return output.NewCLIError(output.ExitUsage, "--subscribe and --unsubscribe are mutually exclusive")
	}
	hidden, err := triState(cmd.Hide, cmd.Unhide)
	if err != nil {
		return output.NewCLIError(output.ExitUsage, "--hide and --unhide are mutually exclusive")
	}

	req := wildduck.UpdateMailboxRequest{
		Path:       optString(cmd.Rename),
		Subscribed: subscribed,
		Hidden:     hidden,
	}
	if cmd.Retention > 0 {
		ms := cmd.Retention.Milliseconds()
		req.Retention = &ms
	}

	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would update mailbox: %s\n", cmd.Mailbox)
		return nil
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	user := sp.User()
	id, err := resolveMailbox(ctx, services.Mailboxes, user, cmd.Mailbox)
	if err != nil {
		return err
	}

	if err := services.Mailboxes.Update(ctx, user, id, req); err != nil {
		return output.FromAPIError(err, "update mailbox")
	}

	fmt.Fprintf(fp.Err, "Mailbox updated: %s\n", cmd.Mailbox)
	return nil
}

// MailboxesDeleteCmd deletes a mailbox and every message in it
type MailboxesDeleteCmd struct {
	Mailbox string `arg:"" help:"Mailbox id or path"`
	Confirm bool   `help:"Confirm deletion"`
}

// Run executes the delete mailbox command
func (cmd *MailboxesDeleteCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	if err := requireConfirmation(globals, cmd.Confirm, "Deletion"); err != nil {
		return err
	}

	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would delete mailbox and its messages: %s\n", cmd.Mailbox)
		return nil
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	user := sp.User()
	id, err := resolveMailbox(ctx, services.Mailboxes, user, cmd.Mailbox)
	if err != nil {
		return err
	}

	if err := services.Mailboxes.Delete(ctx, user, id); err != nil {
		return output.FromAPIError(err, "delete mailbox")
	}

	fmt.Fprintf(fp.Err, "Mailbox deleted: %s\n", cmd.Mailbox)
	return nil
}
