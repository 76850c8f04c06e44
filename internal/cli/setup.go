package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/semmy-space/wdc/internal/auth"
	"github.com/semmy-space/wdc/internal/config"
	"github.com/semmy-space/wdc/internal/output"
)

// SetupCmd implements the interactive setup wizard
type SetupCmd struct {
	SkipCheck bool `help:"Do not verify the token against the API" name:"skip-check"`
}

// Run executes the setup wizard
func (cmd *SetupCmd) Run(ctx context.Context, cfg *config.Config, sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	if globals.NoInput {
		return output.NewCLIError(output.ExitUsage, "setup is interactive and cannot run with --no-input").
			WithHint("Use: wdc config set api_url <url> and wdc auth login --token")
	}

	reader := bufio.NewReader(os.Stdin)
	w := fp.Err

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  wdc setup\n")
	fmt.Fprintf(w, "  =========\n\n")

	// Step 1: API
	fmt.Fprintf(w, "  Step 1: Mail API server\n\n")
	current := cfg.APIURL
	if current == "" {
		current = config.DefaultAPIURL
	}
	apiURL := prompt(reader, w, fmt.Sprintf("  API URL [%s]: ", current))
	if apiURL == "" {
		apiURL = current
	}
	apiURL, err := config.NormalizeAPIURL(apiURL)
	if err != nil {
		return output.NewCLIError(output.ExitUsage, err.Error())
	}

	// Step 2: default user
	fmt.Fprintf(w, "\n  Step 2: Default user\n\n")
	fmt.Fprintf(w, "    Commands act on this user unless --user is given.\n")
	fmt.Fprintf(w, "    Leave empty to act on the token owner (me).\n\n")
	defaultUser := prompt(reader, w, fmt.Sprintf("  Default user [%s]: ", cfg.DefaultUser))
	if defaultUser == "" {
		defaultUser = cfg.DefaultUser
	}

	// Step 3: token
	fmt.Fprintf(w, "\n  Step 3: Access token\n\n")
	fmt.Fprintf(w, "    Paste an API access token. Leave empty to keep the stored one.\n\n")
	var in io.Reader = reader
	if term.IsTerminal(int(os.Stdin.Fd())) {
		in = os.Stdin
	}
	token, err := auth.ReadSecret(in, w, "  Access token: ")
	if err != nil {
		return fmt.Errorf("failed to read access token: %w", err)
	}

	if globals.DryRun {
		fmt.Fprintf(w, "\n[DRY RUN] Would save api_url=%s default_user=%s\n", apiURL, defaultUser)
		if token != "" {
			fmt.Fprintf(w, "[DRY RUN] Would store access token %s\n", maskSecret(token))
		}
		return nil
	}

	cfg.APIURL = apiURL
	cfg.DefaultUser = defaultUser
	if err := cfg.Save(); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to save config: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	if token != "" {
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
	}

	if !cmd.SkipCheck {
		if err := checkSetup(ctx, sp, w); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\n  Setup complete!\n\n")
	fmt.Fprintf(w, "    API:         %s\n", apiURL)
	fmt.Fprintf(w, "    Credentials: %s\n", storageType())
	fmt.Fprintf(w, "    Config:      %s\n\n", cfg.Path())
	fmt.Fprintf(w, "  Try it out:\n\n")
	fmt.Fprintf(w, "    wdc auth whoami\n")
	fmt.Fprintf(w, "    wdc mailboxes list --counters\n")
	fmt.Fprintf(w, "    wdc messages search --unseen\n\n")

	return nil
}

// checkSetup verifies the saved settings by fetching the effective user
func checkSetup(ctx context.Context, sp *ServiceProvider, w io.Writer) error {
	services, err := sp.Services()
	if err != nil {
		return err
	}
	user, err := services.Users.Get(ctx, sp.User())
	if err != nil {
		return output.FromAPIError(err, "verify setup")
	}
	fmt.Fprintf(w, "\n  ✓ Connected as %s (%s)\n", user.Username, user.ID)
	return nil
}

// prompt prints a prompt and reads a line of input
func prompt(reader *bufio.Reader, w io.Writer, text string) string {
	fmt.Fprint(w, text)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// NeedsSetup returns true if the CLI has not been configured yet
func NeedsSetup(cfg *config.Config) bool {
	return cfg.APIURL == ""
}
