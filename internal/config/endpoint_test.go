package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAPIURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  string
	}{
		{name: "plain", input: "https://mail.example.com", expected: "https://mail.example.com"},
		{name: "trailing slashes", input: "https://mail.example.com/api//", expected: "https://mail.example.com/api"},
		{name: "whitespace", input: "  http://127.0.0.1:8080  ", expected: "http://127.0.0.1:8080"},
		{name: "empty", input: " ", wantErr: "api url is empty"},
		{name: "bad scheme", input: "ftp://mail.example.com", wantErr: "scheme must be http or https"},
		{name: "no host", input: "http://", wantErr: "missing host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAPIURL(tt.input)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveAPIURLPrecedence(t *testing.T) {
	got, err := ResolveAPIURL("https://flag.example.com", "https://file.example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.com", got)

	got, err = ResolveAPIURL("", "https://file.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://file.example.com", got)

	got, err = ResolveAPIURL("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, got)
}
