package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semmy-space/wdc/internal/output"
	"github.com/semmy-space/wdc/internal/wildduck"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "zero bytes", bytes: 0, expected: "0 B"},
		{name: "small bytes", bytes: 512, expected: "512 B"},
		{name: "just under 1KB", bytes: 1023, expected: "1023 B"},
		{name: "exactly 1KB", bytes: 1024, expected: "1.0 KB"},
		{name: "1.5KB", bytes: 1536, expected: "1.5 KB"},
		{name: "exactly 1MB", bytes: 1024 * 1024, expected: "1.0 MB"},
		{name: "exactly 1GB", bytes: 1024 * 1024 * 1024, expected: "1.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatBytes(tt.bytes))
		})
	}
}

func TestFormatBool(t *testing.T) {
	assert.Equal(t, "Yes", formatBool(true))
	assert.Equal(t, "No", formatBool(false))
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "empty string", value: "", expected: ""},
		{name: "1 char", value: "a", expected: "****"},
		{name: "4 chars", value: "abcd", expected: "****"},
		{name: "5 chars", value: "abcde", expected: "****bcde"},
		{name: "long string", value: "secret-key-12345", expected: "****2345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskSecret(tt.value))
		})
	}
}

func TestFormatFlags(t *testing.T) {
	tests := []struct {
		name                            string
		seen, flagged, draft, answered bool
		expected                        string
	}{
		{name: "read", seen: true, expected: ""},
		{name: "unread", expected: "N"},
		{name: "unread flagged", flagged: true, expected: "NF"},
		{name: "all", flagged: true, draft: true, answered: true, expected: "NFDA"},
		{name: "answered", seen: true, answered: true, expected: "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFlags(tt.seen, tt.flagged, tt.draft, tt.answered))
		})
	}
}

func TestIsObjectID(t *testing.T) {
	assert.True(t, isObjectID("59fc66a03e54454869460e45"))
	assert.True(t, isObjectID("59FC66A03E54454869460E45"))
	assert.False(t, isObjectID("INBOX"))
	assert.False(t, isObjectID("59fc66a03e54454869460e4"))
	assert.False(t, isObjectID("59fc66a03e54454869460e4z"))
}

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "", formatAddress(nil))
	assert.Equal(t, "ann@example.com", formatAddress(&wildduck.Address{Address: "ann@example.com"}))
	assert.Equal(t, "Ann <ann@example.com>", formatAddress(&wildduck.Address{Name: "Ann", Address: "ann@example.com"}))
	assert.Equal(t, "a@example.com, B <b@example.com>", formatAddresses([]wildduck.Address{
		{Address: "a@example.com"},
		{Name: "B", Address: "b@example.com"},
	}))
}

func TestFormatQuota(t *testing.T) {
	assert.Equal(t, "512 B", formatQuota(wildduck.Quota{Used: 512}))
	assert.Equal(t, "1.0 KB / 1.0 MB", formatQuota(wildduck.Quota{Used: 1024, Allowed: 1024 * 1024}))
}

func TestParseAddresses(t *testing.T) {
	addrs, err := parseAddresses([]string{"Ann <ann@example.com>, bob@example.com", "", "carol@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []wildduck.Address{
		{Name: "Ann", Address: "ann@example.com"},
		{Address: "bob@example.com"},
		{Address: "carol@example.com"},
	}, addrs)

	_, err = parseAddresses([]string{"not an address"})
	require.Error(t, err)
	assert.Equal(t, output.ExitUsage, output.ExitCode(err))
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("after", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, 3, int(d.Month()))

	_, err = parseDate("after", "03/01/2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--after")
}

func TestTriState(t *testing.T) {
	v, err := triState(false, false)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = triState(true, false)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.True(t, *v)

	v, err = triState(false, true)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.False(t, *v)

	_, err = triState(true, true)
	assert.Error(t, err)
}

func TestPageParams(t *testing.T) {
	p := pageParams(0, "", "", 0)
	assert.Nil(t, p.Limit)
	assert.Nil(t, p.Next)
	assert.Nil(t, p.Previous)
	assert.Nil(t, p.Page)

	p = pageParams(50, "abc", "", 2)
	require.NotNil(t, p.Limit)
	assert.Equal(t, 50, *p.Limit)
	require.NotNil(t, p.Next)
	assert.Equal(t, "abc", *p.Next)
	assert.Nil(t, p.Previous)
	require.NotNil(t, p.Page)
	assert.Equal(t, 2, *p.Page)
}

func TestRequireConfirmation(t *testing.T) {
	assert.Error(t, requireConfirmation(&Globals{}, false, "Deletion"))
	assert.NoError(t, requireConfirmation(&Globals{}, true, "Deletion"))
	assert.NoError(t, requireConfirmation(&Globals{Force: true}, false, "Deletion"))
	assert.NoError(t, requireConfirmation(&Globals{DryRun: true}, false, "Deletion"))
}

func TestIsMessageRange(t *testing.T) {
	assert.False(t, isMessageRange("12"))
	assert.True(t, isMessageRange("1:*"))
	assert.True(t, isMessageRange("3,5,9"))
}

func TestParseMessageID(t *testing.T) {
	id, err := parseMessageID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, err := parseMessageID(bad)
		assert.Error(t, err, bad)
	}
}

type fakeMailboxes struct {
	paths map[string]string
	calls []string
}

func (f *fakeMailboxes) Resolve(ctx context.Context, user, path string) (string, error) {
	f.calls = append(f.calls, user+":"+path)
	if id, ok := f.paths[path]; ok {
		return id, nil
	}
	return "", &wildduck.APIError{StatusCode: 404, Message: "Mailbox not found", Code: "NoSuchMailbox"}
}

func TestResolveMailbox(t *testing.T) {
	const inbox = "5a1c0ee490a34c67e266931c"
	api := &fakeMailboxes{paths: map[string]string{"INBOX": inbox, "Archive/2024": "5a1c0ee490a34c67e266931d"}}
	ctx := context.Background()

	id, err := resolveMailbox(ctx, api, "me", "")
	require.NoError(t, err)
	assert.Equal(t, inbox, id)

	id, err = resolveMailbox(ctx, api, "me", "Archive/2024")
	require.NoError(t, err)
	assert.Equal(t, "5a1c0ee490a34c67e266931d", id)

	id, err = resolveMailbox(ctx, api, "me", "5a1c0ee490a34c67e26693ff")
	require.NoError(t, err)
	assert.Equal(t, "5a1c0ee490a34c67e26693ff", id)
	assert.Equal(t, []string{"me:INBOX", "me:Archive/2024"}, api.calls)

	_, err = resolveMailbox(ctx, api, "me", "Missing")
	require.Error(t, err)
	assert.Equal(t, output.ExitNotFound, output.ExitCode(err))
	assert.Contains(t, err.Error(), `resolve mailbox "Missing"`)
}

type fakeUsers struct {
	ids map[string]string
}

func (f *fakeUsers) Resolve(ctx context.Context, username string) (string, error) {
	if id, ok := f.ids[username]; ok {
		return id, nil
	}
	return "", &wildduck.APIError{StatusCode: 404, Message: "User not found"}
}

func TestResolveUserID(t *testing.T) {
	api := &fakeUsers{ids: map[string]string{"alice": "59fc66a03e54454869460e45"}}
	ctx := context.Background()

	tests := []struct {
		name     string
		ref, def string
		expected string
		code     int
	}{
		{name: "me", ref: "me", expected: "me"},
		{name: "default", def: "me", expected: "me"},
		{name: "object id", ref: "59fc66a03e54454869460e46", expected: "59fc66a03e54454869460e46"},
		{name: "username", ref: "alice", expected: "59fc66a03e54454869460e45"},
		{name: "username from default", def: "alice", expected: "59fc66a03e54454869460e45"},
		{name: "unknown", ref: "bob", code: output.ExitNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := resolveUserID(ctx, api, tt.ref, tt.def)
			if tt.code != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.code, output.ExitCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, isPermanent(&wildduck.APIError{StatusCode: 401}))
	assert.True(t, isPermanent(&wildduck.APIError{StatusCode: 404}))
	assert.False(t, isPermanent(&wildduck.APIError{StatusCode: 502}))
	assert.False(t, isPermanent(errors.New("connection reset")))
}
