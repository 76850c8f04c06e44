package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/semmy-space/wdc/internal/output"
	"github.com/semmy-space/wdc/internal/wildduck"
)

// SubmitCmd composes a message and queues it for delivery
type SubmitCmd struct {
	To         []string `help:"Recipient (repeatable, accepts \"Name <addr>\")" required:"" sep:"none"`
	Cc         []string `help:"Cc recipient (repeatable)" sep:"none"`
	Bcc        []string `help:"Bcc recipient (repeatable)" sep:"none"`
	From       string   `help:"From address (default: the user's main address)"`
	ReplyTo    string   `help:"Reply-To address" name:"reply-to"`
	Subject    string   `help:"Subject line" short:"s"`
	Text       string   `help:"Plain text body" short:"t"`
	TextFile   string   `help:"Read the plain text body from a file, - for stdin" name:"text-file" predictor:"file"`
	HTMLFile   string   `help:"Read the HTML body from a file" name:"html-file" predictor:"file"`
	Attach     []string `help:"Attach a file (repeatable)" short:"a" predictor:"file" sep:"none"`
	Header     []string `help:"Extra header as Key: Value (repeatable)" sep:"none"`
	Mailbox    string   `help:"Store the sent copy in this mailbox id or path instead of Sent"`
	Draft      bool     `help:"Store as a draft instead of sending"`
	UploadOnly bool     `help:"Store the message without queueing it for delivery" name:"upload-only"`
	SendAt     string   `help:"Delay delivery until this time (RFC3339)" name:"send-at"`
}

// buildRequest turns the flags into a submission request
func (cmd *SubmitCmd) buildRequest() (*wildduck.SubmitRequest, error) {
	to, err := parseAddresses(cmd.To)
	if err != nil {
		return nil, err
	}
	if len(to) == 0 {
		return nil, output.NewCLIError(output.ExitUsage, "at least one --to recipient is required")
	}
	cc, err := parseAddresses(cmd.Cc)
	if err != nil {
		return nil, err
	}
	bcc, err := parseAddresses(cmd.Bcc)
	if err != nil {
		return nil, err
	}

	req := &wildduck.SubmitRequest{
		To:         to,
		Cc:         cc,
		Bcc:        bcc,
		Subject:    cmd.Subject,
		Text:       cmd.Text,
		IsDraft:    cmd.Draft,
		UploadOnly: cmd.UploadOnly,
		Sess:       uuid.NewString(),
	}

	if cmd.From != "" {
		from, err := parseAddresses([]string{cmd.From})
		if err != nil {
			return nil, err
		}
		if len(from) != 1 {
			return nil, output.NewCLIError(output.ExitUsage, "--from takes a single address")
		}
		req.From = &from[0]
	}
	if cmd.ReplyTo != "" {
		replyTo, err := parseAddresses([]string{cmd.ReplyTo})
		if err != nil {
			return nil, err
		}
		if len(replyTo) != 1 {
			return nil, output.NewCLIError(output.ExitUsage, "--reply-to takes a single address")
		}
		req.ReplyTo = &replyTo[0]
	}

	if cmd.TextFile != "" {
		if cmd.Text != "" {
			return nil, output.NewCLIError(output.ExitUsage, "--text and --text-file are mutually exclusive")
		}
		data, err := readInput(cmd.TextFile)
		if err != nil {
			return nil, output.NewCLIError(output.ExitUsage, fmt.Sprintf("Failed to read %s: %v", cmd.TextFile, err))
		}
		req.Text = string(data)
	}
	if cmd.HTMLFile != "" {
		data, err := os.ReadFile(cmd.HTMLFile)
		if err != nil {
			return nil, output.NewCLIError(output.ExitUsage, fmt.Sprintf("Failed to read %s: %v", cmd.HTMLFile, err))
		}
		req.HTML = string(data)
	}

	for _, h := range cmd.Header {
		key, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, output.NewCLIError(output.ExitUsage, fmt.Sprintf("Invalid header %q (use Key: Value)", h))
		}
		req.Headers = append(req.Headers, wildduck.Header{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
	}

	for _, path := range cmd.Attach {
		att, err := loadAttachment(path)
		if err != nil {
			return nil, err
		}
		req.Attachments = append(req.Attachments, att)
	}

	if cmd.SendAt != "" {
		t, err := time.Parse(time.RFC3339, cmd.SendAt)
		if err != nil {
			return nil, output.NewCLIError(output.ExitUsage,
				fmt.Sprintf("Invalid --send-at time %q (use RFC3339, e.g. 2026-01-02T15:04:05Z)", cmd.SendAt))
		}
		req.SendTime = &t
	}

	return req, nil
}

// loadAttachment reads a file into a base64 encoded attachment
func loadAttachment(path string) (wildduck.UploadAttachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return wildduck.UploadAttachment{}, output.NewCLIError(output.ExitUsage,
			fmt.Sprintf("Failed to read attachment %s: %v", path, err))
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return wildduck.UploadAttachment{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Encoding:    "base64",
		Content:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

// Run executes the submit command
func (cmd *SubmitCmd) Run(ctx context.Context, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	req, err := cmd.buildRequest()
	if err != nil {
		return err
	}

	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would submit message as %s\n", sp.User())
		fmt.Fprintf(fp.Err, "  To:      %s\n", formatAddresses(req.To))
		if len(req.Cc) > 0 {
			fmt.Fprintf(fp.Err, "  Cc:      %s\n", formatAddresses(req.Cc))
		}
		if len(req.Bcc) > 0 {
			fmt.Fprintf(fp.Err, "  Bcc:     %s\n", formatAddresses(req.Bcc))
		}
		fmt.Fprintf(fp.Err, "  Subject: %s\n", req.Subject)
		if len(req.Attachments) > 0 {
			fmt.Fprintf(fp.Err, "  Attachments: %d\n", len(req.Attachments))
		}
		return nil
	}

	services, err := sp.Services()
	if err != nil {
		return err
	}

	user := sp.User()
	if cmd.Mailbox != "" {
		mailbox, err := resolveMailbox(ctx, services.Mailboxes, user, cmd.Mailbox)
		if err != nil {
			return err
		}
		req.Mailbox = mailbox
	}

	result, err := services.Submission.Submit(ctx, user, *req)
	if err != nil {
		return output.FromAPIError(err, "submit message")
	}

	switch {
	case cmd.Draft:
		fmt.Fprintf(fp.Err, "Draft stored: %d\n", result.Message.ID)
	case cmd.UploadOnly:
		fmt.Fprintf(fp.Err, "Message stored: %d\n", result.Message.ID)
	default:
		queueID := result.QueueID
		if queueID == "" {
			queueID = result.Message.QueueID
		}
		fmt.Fprintf(fp.Err, "Message queued: %s\n", queueID)
	}

	return fp.Formatter.Print(result)
}
