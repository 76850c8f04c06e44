package cli

import (
	"os"

	"golang.org/x/term"

	"github.com/semmy-space/wdc/internal/config"
	"github.com/semmy-space/wdc/internal/wildduck"
)

// Globals holds global flags available to all commands
type Globals struct {
	APIURL      string  `help:"Mail API base URL" name:"api-url" env:"WDC_API_URL"`
	AccessToken string  `help:"Access token, overrides stored credentials" name:"access-token" env:"WDC_ACCESS_TOKEN" hidden:""`
	User        string  `help:"User id commands act on (default: me)" short:"u" env:"WDC_USER"`
	Output      string  `help:"Output format" default:"" enum:"json,plain,rich,auto," short:"o" env:"WDC_OUTPUT"`
	Verbose     bool    `help:"Log every API request to stderr" short:"v" env:"WDC_VERBOSE"`
	ResultsOnly bool    `help:"Strip JSON envelope, return data array only" env:"WDC_RESULTS_ONLY"`
	NoInput     bool    `help:"Disable interactive prompts (fail instead)" env:"WDC_NO_INPUT"`
	Force       bool    `help:"Skip confirmation for destructive operations" env:"WDC_FORCE"`
	DryRun      bool    `help:"Preview operation without executing" name:"dry-run" env:"WDC_DRY_RUN"`
	RateLimit   float64 `help:"Maximum requests per second (0 = unlimited)" name:"rate-limit" env:"WDC_RATE_LIMIT"`
}

// ResolvedOutput returns the effective output mode.
// Flag or env wins over the config file; "auto" picks rich on a TTY and plain otherwise.
func (g *Globals) ResolvedOutput(cfg *config.Config) string {
	mode := g.Output
	if mode == "" && cfg != nil {
		mode = cfg.DefaultOutput
	}
	if mode != "" && mode != "auto" {
		return mode
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "rich"
	}

	return "plain"
}

// ResolvedUser returns the user commands act on: flag or env, then config, then me.
func (g *Globals) ResolvedUser(cfg *config.Config) string {
	if g.User != "" {
		return g.User
	}
	if cfg != nil && cfg.DefaultUser != "" {
		return cfg.DefaultUser
	}
	return wildduck.Me
}

// ResolvedRateLimit returns the request pacing in requests per second.
func (g *Globals) ResolvedRateLimit(cfg *config.Config) float64 {
	if g.RateLimit > 0 {
		return g.RateLimit
	}
	if cfg != nil {
		return cfg.RateLimit
	}
	return 0
}
