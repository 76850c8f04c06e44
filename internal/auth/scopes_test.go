package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeString(t *testing.T) {
	result := ScopeString()

	assert.NotContains(t, result, " ")
	for _, scope := range Scopes {
		assert.Contains(t, result, scope)
	}
	assert.False(t, strings.HasPrefix(result, "|"))
	assert.False(t, strings.HasSuffix(result, "|"))
	assert.Equal(t, len(Scopes)-1, strings.Count(result, "|"))
}

func TestValidateScope(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{input: "", expected: "master"},
		{input: "master", expected: "master"},
		{input: " IMAP ", expected: "imap"},
		{input: "smtp", expected: "smtp"},
		{input: "pop3", expected: "pop3"},
		{input: "admin", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ValidateScope(tt.input)
			if tt.wantErr {
				assert.ErrorContains(t, err, "unknown scope")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
