package auth

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultScope grants access to the whole API.
const DefaultScope = "master"

// Scopes lists the authentication scopes the server accepts.
// Application-specific passwords are usually limited to one protocol.
var Scopes = []string{
	DefaultScope,
	"imap",
	"smtp",
	"pop3",
}

// ScopeString returns the scopes as a "|" separated list for help text.
func ScopeString() string {
	return strings.Join(Scopes, "|")
}

// ValidateScope returns scope, or DefaultScope when empty.
func ValidateScope(scope string) (string, error) {
	scope = strings.ToLower(strings.TrimSpace(scope))
	if scope == "" {
		return DefaultScope, nil
	}
	if !slices.Contains(Scopes, scope) {
		return "", fmt.Errorf("unknown scope %q (expected %s)", scope, ScopeString())
	}
	return scope, nil
}
