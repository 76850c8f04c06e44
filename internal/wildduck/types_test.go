package wildduck

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Cursor
	}{
		{name: "string", input: `"abc123"`, expected: "abc123"},
		{name: "false", input: `false`, expected: ""},
		{name: "null", input: `null`, expected: ""},
		{name: "escaped string", input: `"a\/b"`, expected: "a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc struct {
				Next Cursor `json:"nextCursor"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"nextCursor":`+tt.input+`}`), &doc))
			assert.Equal(t, tt.expected, doc.Next)
		})
	}
}

func TestCursorPtr(t *testing.T) {
	assert.Nil(t, Cursor("").Ptr())

	p := Cursor("abc").Ptr()
	require.NotNil(t, p)
	assert.Equal(t, "abc", *p)
}

func TestCursorFeedsNextPage(t *testing.T) {
	var page ListResponse[UserSummary]
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"nextCursor":"n2","previousCursor":false,"results":[]}`), &page))

	params := UserListParams{PageParams: PageParams{Next: page.NextCursor.Ptr(), Previous: page.PreviousCursor.Ptr()}}
	assert.Equal(t, "?next=n2", params.query().Encode())
}

func TestMessageSummaryDecode(t *testing.T) {
	data := `{
		"id": 12,
		"mailbox": "5a2f9ca57308fc3a6f5f811e",
		"thread": "5a2f9ca57308fc3a6f5f811f",
		"from": {"name": "Alice", "address": "alice@example.com"},
		"to": [{"name": "", "address": "bob@example.com"}],
		"subject": "Hello",
		"date": "2024-01-02T03:04:05.000Z",
		"intro": "Hi Bob",
		"attachments": true,
		"size": 2048,
		"seen": false,
		"flagged": true,
		"contentType": {"value": "multipart/mixed", "params": {"boundary": "xyz"}}
	}`

	var msg MessageSummary
	require.NoError(t, json.Unmarshal([]byte(data), &msg))

	assert.Equal(t, 12, msg.ID)
	require.NotNil(t, msg.From)
	assert.Equal(t, "alice@example.com", msg.From.Address)
	require.Len(t, msg.To, 1)
	assert.Equal(t, "bob@example.com", msg.To[0].Address)
	assert.True(t, msg.Attachments)
	assert.True(t, msg.Flagged)
	assert.Equal(t, int64(2048), msg.Size)
	assert.Equal(t, "xyz", msg.ContentType.Params["boundary"])
	assert.Equal(t, 2024, msg.Date.Year())
}

func TestUpdateRequestOmitsUnsetFields(t *testing.T) {
	data, err := json.Marshal(UpdateMessageRequest{Seen: Bool(false)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"seen":false}`, string(data))

	data, err = json.Marshal(UpdateUserRequest{Name: String("Alice"), Disabled: Bool(true)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Alice","disabled":true}`, string(data))
}
