package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	_ "github.com/emersion/go-message/charset"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"

	"github.com/semmy-space/wdc/internal/output"
	"github.com/semmy-space/wdc/internal/wildduck"
)

// MessageRow is a display struct for message list output
type MessageRow struct {
	ID      int
	Flags   string
	From    string
	Subject string
	Date    string
	Size    string
	Attach  string
}

var messageColumns = []output.Column{
	{Name: "ID", Key: "ID"},
	{Name: "Flags", Key: "Flags"},
	{Name: "From", Key: "From", Width: 30},
	{Name: "Subject", Key: "Subject", Width: 50},
	{Name: "Date", Key: "Date"},
	{Name: "Size", Key: "Size"},
	{Name: "Att", Key: "Attach"},
}

func messageRows(items []wildduck.MessageSummary) []MessageRow {
	rows := make([]MessageRow, len(items))
	for i, m := range items {
		rows[i] = MessageRow{
			ID:      m.ID,
			Flags:   formatFlags(m.Seen, m.Flagged, m.Draft, m.Answered),
			From:    formatAddress(m.From),
			Subject: m.Subject,
			Date:    formatTime(m.Date),
			Size:    formatBytes(m.Size),
		}
		if m.Attachments {
			rows[i].Attach = "Yes"
		}
	}
	return rows
}

// parseMessageID converts a message id argument
func parseMessageID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, output.NewCLIError(output.ExitUsage, fmt.Sprintf("Invalid message id %q", s))
	}
	return id, nil
}

// isMessageRange reports whether s selects more than one message, e.g. "1:*" or "3,5,9"
func isMessageRange(s string) bool {
	return strings.ContainsAny(s, ":,*")
}

// MessagesListCmd lists messages of one mailbox
type MessagesListCmd struct {
	Mailbox  string `help:"Mailbox id or path" short:"m" default:"INBOX"`
	Unseen   bool   `help:"Only unread messages"`
	Order    string `help:"Sort order by id" enum:"asc,desc" default:"desc"`
	Limit    int    `help:"Page size" short:"l" default:"20"`
	Next     string `help:"Cursor for the next page"`
	Previous string `help:"Cursor for the previous page"`
	Page     int    `help:"Page number"`
}

// Run executes the list messages command
func (cmd *MessagesListCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	services, err := sp.Services()
	if err != nil {
		return err
	}

	user := sp.User()
	mailbox, err := resolveMailbox(ctx, services.Mailboxes, user, cmd.Mailbox)
	if err != nil {
		return err
	}

	params := wildduck.MessageListParams{
		Order:      optString(cmd.Order),
		PageParams: pageParams(cmd.Limit, cmd.Next, cmd.Previous, cmd.Page),
	}
	if cmd.Unseen {
		params.Unseen = wildduck.Bool(true)
	}

	resp, err := services.Messages.List(ctx, user, mailbox, params)
	if err != nil {
		return output.FromAPIError(err, "list messages")
	}

	if err := fp.Formatter.PrintList(messageRows(resp.Results), messageColumns); err != nil {
		return err
	}
	printCursorHint(fp.Err, resp.NextCursor, resp.PreviousCursor)
	return nil
}

// MessagesSearchCmd searches messages across mailboxes
type MessagesSearchCmd struct {
	Query         string `arg:"" optional:"" help:"Free text matched against the whole message"`
	Mailbox       string `help:"Restrict to a mailbox id or path" short:"m"`
	From          string `help:"Sender contains"`
	To            string `help:"Recipient contains"`
	Subject       string `help:"Subject contains"`
	After         string `help:"Received on or after date (YYYY-MM-DD)"`
	Before        string `help:"Received before date (YYYY-MM-DD)"`
	Unseen        bool   `help:"Only unread messages"`
	Flagged       bool   `help:"Only flagged messages"`
	HasAttachment bool   `help:"Only messages with attachments" name:"has-attachment"`
	Limit         int    `help:"Page size" short:"l" default:"20"`
	Next          string `help:"Cursor for the next page"`
	Previous      string `help:"Cursor for the previous page"`
	Page          int    `help:"Page number"`
}

// buildQuery assembles the search expression from the filter flags
func (cmd *MessagesSearchCmd) buildQuery() (*wildduck.SearchQuery, error) {
	sq := wildduck.NewSearchQuery()
	if cmd.From != "" {
		sq.From(cmd.From)
	}
	if cmd.To != "" {
		sq.To(cmd.To)
	}
	if cmd.Subject != "" {
		sq.Subject(cmd.Subject)
	}
	if cmd.After != "" {
		t, err := parseDate("after", cmd.After)
		if err != nil {
			return nil, err
		}
		sq.After(t)
	}
	if cmd.Before != "" {
		t, err := parseDate("before", cmd.Before)
		if err != nil {
			return nil, err
		}
		sq.Before(t)
	}
	if cmd.HasAttachment {
		sq.HasAttachment()
	}
	if cmd.Unseen {
		sq.IsUnseen()
	}
	if cmd.Flagged {
		sq.IsFlagged()
	}
	sq.Text(cmd.Query)
	return sq, nil
}

// Run executes the search command
func (cmd *MessagesSearchCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	sq, err := cmd.buildQuery()
	if err != nil {
		return err
	}
	if sq.IsEmpty() {
		return output.NewCLIError(output.ExitUsage, "at least one search criterion is required").
			WithHint("Pass a text query or one of --from, --to, --subject, --after, --before, --unseen, --flagged, --has-attachment")
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	user := sp.User()
	params := sq.Params()
	params.PageParams = pageParams(cmd.Limit, cmd.Next, cmd.Previous, cmd.Page)
	if cmd.Mailbox != "" {
		mailbox, err := resolveMailbox(ctx, services.Mailboxes, user, cmd.Mailbox)
		if err != nil {
			return err
		}
		params.Mailbox = &mailbox
	}

	resp, err := services.Messages.Search(ctx, user, params)
	if err != nil {
		return output.FromAPIError(err, "search messages")
	}

	if err := fp.Formatter.PrintList(messageRows(resp.Results), messageColumns); err != nil {
		return err
	}
	printCursorHint(fp.Err, resp.NextCursor, resp.PreviousCursor)
	return nil
}

// MessageDetail is the display struct for messages get
type MessageDetail struct {
	ID          int
	Mailbox     string
	From        string
	To          string
	Cc          string
	Subject     string
	Date        string
	Flags       string
	Attachments string
	Text        string
}

// MessagesGetCmd shows one message
type MessagesGetCmd struct {
	ID       string `arg:"" help:"Message id"`
	Mailbox  string `help:"Mailbox id or path" short:"m" default:"INBOX"`
	MarkSeen bool   `help:"Mark the message as seen" name:"mark-seen"`
}

// Run executes the get message command
func (cmd *MessagesGetCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	id, err := parseMessageID(cmd.ID)
	if err != nil {
		return err
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	user := sp.User()
	mailbox, err := resolveMailbox(ctx, services.Mailboxes, user, cmd.Mailbox)
	if err != nil {
		return err
	}

	params := wildduck.GetMessageParams{}
	if cmd.MarkSeen {
		params.MarkAsSeen = wildduck.Bool(true)
	}

	msg, err := services.Messages.Get(ctx, user, mailbox, id, params)
	if err != nil {
		return output.FromAPIError(err, "get message")
	}

	if globals.ResolvedOutput(sp.cfg) == "json" {
		return fp.Formatter.Print(msg)
	}

	names := make([]string, len(msg.Attachments))
	for i, a := range msg.Attachments {
		names[i] = fmt.Sprintf("%s %s (%d KB)", a.ID, a.Filename, a.SizeKB)
	}

	return fp.Formatter.Print(MessageDetail{
		ID:          msg.ID,
		Mailbox:     msg.Mailbox,
		From:        formatAddress(msg.From),
		To:          formatAddresses(msg.To),
		Cc:          formatAddresses(msg.Cc),
		Subject:     msg.Subject,
		Date:        formatTime(msg.Date),
		Flags:       formatFlags(msg.Seen, msg.Flagged, msg.Draft, msg.Answered),
		Attachments: strings.Join(names, "; "),
		Text:        strings.TrimSpace(msg.Text),
	})
}

// SourceSummary is the parsed header view of a raw message
type SourceSummary struct {
	MessageID string
	Date      string
	From      string
	To        string
	Subject   string
	Parts     []string
}

// summarizeSource parses the top level headers and MIME parts of a raw message
func summarizeSource(raw []byte) (*SourceSummary, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	defer mr.Close()

	summary := &SourceSummary{}
	summary.MessageID, _ = mr.Header.MessageID()
	summary.Subject, _ = mr.Header.Subject()
	if date, err := mr.Header.Date(); err == nil {
		summary.Date = date.Format(time.RFC1123Z)
	}
	summary.From = joinMailAddresses(mr.Header, "From")
	summary.To = joinMailAddresses(mr.Header, "To")

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) {
				continue
			}
			return nil, fmt.Errorf("read part: %w", err)
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			ct, _, _ := h.ContentType()
			summary.Parts = append(summary.Parts, "inline "+ct)
		case *mail.AttachmentHeader:
			ct, _, _ := h.ContentType()
			name, _ := h.Filename()
			summary.Parts = append(summary.Parts, fmt.Sprintf("attachment %s %s", ct, name))
		}
	}

	return summary, nil
}

func joinMailAddresses(h mail.Header, key string) string {
	list, err := h.AddressList(key)
	if err != nil {
		return h.Get(key)
	}
	parts := make([]string, len(list))
	for i, a := range list {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// MessagesSourceCmd downloads the raw RFC822 source of a message
type MessagesSourceCmd struct {
	ID         string `arg:"" help:"Message id"`
	Mailbox    string `help:"Mailbox id or path" short:"m" default:"INBOX"`
	Headers    bool   `help:"Show parsed headers and MIME structure instead of the raw source"`
	OutputPath string `help:"Write the source to a file" name:"output-path" type:"path" predictor:"file"`
}

// Run executes the source command
func (cmd *MessagesSourceCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	id, err := parseMessageID(cmd.ID)
	if err != nil {
		return err
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	user := sp.User()
	mailbox, err := resolveMailbox(ctx, services.Mailboxes, user, cmd.Mailbox)
	if err != nil {
		return err
	}

	raw, err := services.Messages.Source(ctx, user, mailbox, id)
	if err != nil {
		return output.FromAPIError(err, "get message source")
	}

	if cmd.Headers {
		summary, err := summarizeSource(raw)
		if err != nil {
			return &output.CLIError{Message: err.Error(), ExitCode: output.ExitGeneral}
		}
		return fp.Formatter.Print(summary)
	}

	if err := writeOutput(fp.Out, cmd.OutputPath, raw); err != nil {
		return fmt.Errorf("write source: %w", err)
	}
	if cmd.OutputPath != "" && cmd.OutputPath != "-" {
		fmt.Fprintf(fp.Err, "Saved %s to %s\n", formatBytes(int64(len(raw))), cmd.OutputPath)
	}
	return nil
}

// MessagesAttachmentCmd downloads one attachment
type MessagesAttachmentCmd struct {
	ID         string `arg:"" help:"Message id"`
	Attachment string `arg:"" help:"Attachment id, e.g. ATT00001"`
	Mailbox    string `help:"Mailbox id or path" short:"m" default:"INBOX"`
	OutputPath string `help:"Write the attachment to a file (default stdout)" name:"output-path" type:"path" predictor:"file"`
}

// Run executes the attachment command
func (cmd *MessagesAttachmentCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider) error {
	id, err := parseMessageID(cmd.ID)
	if err != nil {
		return err
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	user := sp.User()
	mailbox, err := resolveMailbox(ctx, services.Mailboxes, user, cmd.Mailbox)
	if err != nil {
		return err
	}

	data, err := services.Messages.Attachment(ctx, user, mailbox, id, cmd.Attachment)
	if err != nil {
		return output.FromAPIError(err, "download attachment")
	}

	if err := writeOutput(fp.Out, cmd.OutputPath, data); err != nil {
		return fmt.Errorf("write attachment: %w", err)
	}
	if cmd.OutputPath != "" && cmd.OutputPath != "-" {
		fmt.Fprintf(fp.Err, "Saved %s to %s\n", formatBytes(int64(len(data))), cmd.OutputPath)
	}
	return nil
}

// MessagesUpdateCmd changes flags of messages or moves them
type MessagesUpdateCmd struct {
	ID        string        `arg:"" help:"Message id, or a range like 1:* or 3,5,9"`
	Mailbox   string        `help:"Mailbox id or path" short:"m" default:"INBOX"`
	Seen      bool          `help:"Mark as read"`
	Unseen    bool          `help:"Mark as unread"`
	Flag      bool          `help:"Add the flagged mark"`
	Unflag    bool          `help:"Remove the flagged mark"`
	MoveTo    string        `help:"Move to this mailbox id or path" name:"move-to"`
	ExpiresIn time.Duration `help:"Delete the message automatically after this long" name:"expires-in"`
}

// Run executes the update message command
func (cmd *MessagesUpdateCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	seen, err := triState(cmd.Seen, cmd.Unseen)
	if err != nil {
		return output.NewCLIError(output.ExitUsage, "--seen and --unseen are mutually exclusive")
	}
	flagged, err := triState(cmd.Flag, cmd.Unflag)
	if err != nil {
		return output.NewCLIError(output.ExitUsage, "--flag and --unflag are mutually exclusive")
	}
	if seen == nil && flagged == nil && cmd.MoveTo == "" && cmd.ExpiresIn == 0 {
		return output.NewCLIError(output.ExitUsage, "nothing to update").
			WithHint("Pass --seen, --unseen, --flag, --unflag, --move-to or --expires-in")
	}

	many := isMessageRange(cmd.ID)
	var id int
	if !many {
		if id, err = parseMessageID(cmd.ID); err != nil {
			return err
		}
	}

	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would update message(s) %s in %s\n", cmd.ID, cmd.Mailbox)
		return nil
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	user := sp.User()
	mailbox, err := resolveMailbox(ctx, services.Mailboxes, user, cmd.Mailbox)
	if err != nil {
		return err
	}

	req := wildduck.UpdateMessageRequest{Seen: seen, Flagged: flagged}
	if cmd.MoveTo != "" {
		target, err := resolveMailbox(ctx, services.Mailboxes, user, cmd.MoveTo)
		if err != nil {
			return err
		}
		req.MoveTo = target
	}
	if cmd.ExpiresIn > 0 {
		req.Expires = wildduck.Time(time.Now().Add(cmd.ExpiresIn))
	}

	var result *wildduck.UpdateMessageResult
	if many {
		req.Message = cmd.ID
		result, err = services.Messages.UpdateMany(ctx, user, mailbox, req)
	} else {
		result, err = services.Messages.Update(ctx, user, mailbox, id, req)
	}
	if err != nil {
		return output.FromAPIError(err, "update message")
	}

	switch {
	case len(result.ID) > 0:
		fmt.Fprintf(fp.Err, "Moved %d message(s)\n", len(result.ID))
	case result.Updated > 0:
		fmt.Fprintf(fp.Err, "Updated %d message(s)\n", result.Updated)
	default:
		fmt.Fprintf(fp.Err, "Message updated: %s\n", cmd.ID)
	}
	return nil
}

// MessagesDeleteCmd deletes a message, or every message of a mailbox with --all
type MessagesDeleteCmd struct {
	ID      string `arg:"" optional:"" help:"Message id"`
	Mailbox string `help:"Mailbox id or path" short:"m" default:"INBOX"`
	All     bool   `help:"Delete every message in the mailbox"`
	Confirm bool   `help:"Confirm deletion"`
}

// Run executes the delete message command
func (cmd *MessagesDeleteCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	if cmd.ID == "" && !cmd.All {
		return output.NewCLIError(output.ExitUsage, "message id is required").
			WithHint("Pass a message id, or --all to empty the mailbox")
	}
	if cmd.ID != "" && cmd.All {
		return output.NewCLIError(output.ExitUsage, "pass either a message id or --all, not both")
	}

	var id int
	if cmd.ID != "" {
		var err error
		if id, err = parseMessageID(cmd.ID); err != nil {
			return err
		}
	}

	if err := requireConfirmation(globals, cmd.Confirm, "Deletion"); err != nil {
		return err
	}

	if globals.DryRun {
		if cmd.All {
			fmt.Fprintf(fp.Err, "[DRY RUN] Would delete all messages in %s\n", cmd.Mailbox)
		} else {
			fmt.Fprintf(fp.Err, "[DRY RUN] Would delete message %d from %s\n", id, cmd.Mailbox)
		}
		return nil
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	user := sp.User()
	mailbox, err := resolveMailbox(ctx, services.Mailboxes, user, cmd.Mailbox)
	if err != nil {
		return err
	}

	if cmd.All {
		result, err := services.Messages.DeleteAll(ctx, user, mailbox)
		if err != nil {
			return output.FromAPIError(err, "delete messages")
		}
		fmt.Fprintf(fp.Err, "Deleted %d message(s)\n", result.Deleted)
		if result.Errors > 0 {
			fmt.Fprintf(fp.Err, "Warning: %d message(s) could not be deleted\n", result.Errors)
		}
		return nil
	}

	if err := services.Messages.Delete(ctx, user, mailbox, id); err != nil {
		return output.FromAPIError(err, "delete message")
	}

	fmt.Fprintf(fp.Err, "Message deleted: %d\n", id)
	return nil
}

// MessagesUploadCmd stores a raw RFC822 message in a mailbox
type MessagesUploadCmd struct {
	File    string `arg:"" help:"RFC822 file to upload, - for stdin" predictor:"file"`
	Mailbox string `help:"Mailbox id or path" short:"m" default:"INBOX"`
	Unseen  bool   `help:"Store as unread"`
	Flagged bool   `help:"Store as flagged"`
	Draft   bool   `help:"Store as draft"`
	Date    string `help:"Received date (YYYY-MM-DD), default now"`
}

// Run executes the upload command
func (cmd *MessagesUploadCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	params := wildduck.UploadRawParams{}
	if cmd.Unseen {
		params.Unseen = wildduck.Bool(true)
	}
	if cmd.Flagged {
		params.Flagged = wildduck.Bool(true)
	}
	if cmd.Draft {
		params.Draft = wildduck.Bool(true)
	}
	if cmd.Date != "" {
		t, err := parseDate("date", cmd.Date)
		if err != nil {
			return err
		}
		params.Date = &t
	}

	raw, err := readInput(cmd.File)
	if err != nil {
		return output.NewCLIError(output.ExitUsage, fmt.Sprintf("Failed to read %s: %v", cmd.File, err))
	}
	if len(raw) == 0 {
		return output.NewCLIError(output.ExitUsage, "message is empty")
	}

	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would upload %s to %s\n", formatBytes(int64(len(raw))), cmd.Mailbox)
		return nil
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	user := sp.User()
	mailbox, err := resolveMailbox(ctx, services.Mailboxes, user, cmd.Mailbox)
	if err != nil {
		return err
	}

	result, err := services.Messages.UploadRaw(ctx, user, mailbox, raw, params)
	if err != nil {
		return output.FromAPIError(err, "upload message")
	}

	fmt.Fprintf(fp.Err, "Message uploaded: %d\n", result.Message.ID)
	return fp.Formatter.Print(result.Message)
}
