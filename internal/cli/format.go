package cli

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/semmy-space/wdc/internal/output"
	"github.com/semmy-space/wdc/internal/wildduck"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// isObjectID reports whether s looks like a 24 hex digit record id
func isObjectID(s string) bool {
	return objectIDPattern.MatchString(s)
}

// formatBytes converts bytes to human-readable size
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatQuota renders used/allowed storage
func formatQuota(q wildduck.Quota) string {
	if q.Allowed <= 0 {
		return formatBytes(q.Used)
	}
	return fmt.Sprintf("%s / %s", formatBytes(q.Used), formatBytes(q.Allowed))
}

// formatBool converts bool to string
func formatBool(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

// formatFlags renders message flags as a short status column
func formatFlags(seen, flagged, draft, answered bool) string {
	var b strings.Builder
	if !seen {
		b.WriteByte('N')
	}
	if flagged {
		b.WriteByte('F')
	}
	if draft {
		b.WriteByte('D')
	}
	if answered {
		b.WriteByte('A')
	}
	return b.String()
}

// formatAddress renders a name/address pair the way mail headers do
func formatAddress(addr *wildduck.Address) string {
	if addr == nil {
		return ""
	}
	if addr.Name == "" {
		return addr.Address
	}
	return fmt.Sprintf("%s <%s>", addr.Name, addr.Address)
}

func formatAddresses(addrs []wildduck.Address) string {
	parts := make([]string, len(addrs))
	for i := range addrs {
		parts[i] = formatAddress(&addrs[i])
	}
	return strings.Join(parts, ", ")
}

// formatTime renders t for tables; zero times are blank
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

// maskSecret masks sensitive values, showing only last 4 characters
func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}

// parseDate parses a YYYY-MM-DD flag value
func parseDate(flag, value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, output.NewCLIError(output.ExitUsage,
			fmt.Sprintf("Invalid --%s date %q (use YYYY-MM-DD)", flag, value))
	}
	return t, nil
}

// parseAddresses turns repeated flag values like "Ann <ann@example.com>, bob@example.com"
// into address pairs
func parseAddresses(values []string) ([]wildduck.Address, error) {
	var result []wildduck.Address
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		list, err := mail.ParseAddressList(v)
		if err != nil {
			return nil, output.NewCLIError(output.ExitUsage, fmt.Sprintf("Invalid address %q: %v", v, err))
		}
		for _, a := range list {
			result = append(result, wildduck.Address{Name: a.Name, Address: a.Address})
		}
	}
	return result, nil
}

// triState maps an on/off flag pair to an optional bool
func triState(on, off bool) (*bool, error) {
	switch {
	case on && off:
		return nil, output.NewCLIError(output.ExitUsage, "conflicting flags")
	case on:
		return wildduck.Bool(true), nil
	case off:
		return wildduck.Bool(false), nil
	}
	return nil, nil
}

// optString returns nil for empty flag values
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// optInt returns nil for non-positive flag values
func optInt(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

// pageParams builds cursor paging from the shared list flags
func pageParams(limit int, next, previous string, page int) wildduck.PageParams {
	return wildduck.PageParams{
		Limit:    optInt(limit),
		Next:     optString(next),
		Previous: optString(previous),
		Page:     optInt(page),
	}
}

// printCursorHint tells the user how to fetch the adjacent page
func printCursorHint(w io.Writer, next, previous wildduck.Cursor) {
	if next != "" {
		fmt.Fprintf(w, "next page: --next %s\n", next)
	}
	if previous != "" {
		fmt.Fprintf(w, "previous page: --previous %s\n", previous)
	}
}

// requireConfirmation rejects destructive operations without --force, --confirm or --dry-run
func requireConfirmation(globals *Globals, confirmed bool, what string) error {
	if confirmed || globals.Force || globals.DryRun {
		return nil
	}
	return output.NewCLIError(output.ExitUsage, fmt.Sprintf("%s requires --confirm or --force flag", what))
}

// readInput reads a file, or stdin for "-"
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// writeOutput writes data to path, or to w when path is empty or "-"
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// mailboxResolver is the part of the mailbox API used to turn paths into ids
type mailboxResolver interface {
	Resolve(ctx context.Context, user, path string) (string, error)
}

// resolveMailbox accepts a mailbox id or a path like "INBOX" or "Archive/2024"
func resolveMailbox(ctx context.Context, api mailboxResolver, user, ref string) (string, error) {
	if ref == "" {
		ref = "INBOX"
	}
	if isObjectID(ref) {
		return ref, nil
	}
	id, err := api.Resolve(ctx, user, ref)
	if err != nil {
		return "", output.FromAPIError(err, fmt.Sprintf("resolve mailbox %q", ref))
	}
	return id, nil
}
