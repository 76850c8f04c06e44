package wildduck

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchQueryIsEmpty(t *testing.T) {
	sq := NewSearchQuery()
	assert.True(t, sq.IsEmpty())

	sq.From("test@example.com")
	assert.False(t, sq.IsEmpty())
}

func TestSearchQueryBuild(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *SearchQuery
		expected string
	}{
		{
			name:     "empty query",
			build:    NewSearchQuery,
			expected: "",
		},
		{
			name: "from filter",
			build: func() *SearchQuery {
				return NewSearchQuery().From("alice@example.com")
			},
			expected: "from:alice@example.com",
		},
		{
			name: "to filter",
			build: func() *SearchQuery {
				return NewSearchQuery().To("bob@example.com")
			},
			expected: "to:bob@example.com",
		},
		{
			name: "subject with spaces is quoted",
			build: func() *SearchQuery {
				return NewSearchQuery().Subject("quarterly report")
			},
			expected: `subject:"quarterly report"`,
		},
		{
			name: "flags",
			build: func() *SearchQuery {
				return NewSearchQuery().HasAttachment().IsUnseen().IsFlagged()
			},
			expected: "has:attachment is:unseen is:flagged",
		},
		{
			name: "date range",
			build: func() *SearchQuery {
				return NewSearchQuery().
					After(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).
					Before(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
			},
			expected: "after:2024-01-01 before:2024-02-01",
		},
		{
			name: "free text",
			build: func() *SearchQuery {
				return NewSearchQuery().Text("invoice")
			},
			expected: "invoice",
		},
		{
			name: "blank free text is ignored",
			build: func() *SearchQuery {
				return NewSearchQuery().Text("   ")
			},
			expected: "",
		},
		{
			name: "embedded quotes are escaped",
			build: func() *SearchQuery {
				return NewSearchQuery().Text(`say "hi" now`)
			},
			expected: `"say \"hi\" now"`,
		},
		{
			name: "combined",
			build: func() *SearchQuery {
				return NewSearchQuery().From("alice@example.com").IsUnseen().Text("budget")
			},
			expected: "from:alice@example.com is:unseen budget",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.build().Build())
		})
	}
}

func TestSearchQueryParams(t *testing.T) {
	assert.Nil(t, NewSearchQuery().Params().Q)

	params := NewSearchQuery().From("alice@example.com").IsFlagged().Params()
	require.NotNil(t, params.Q)
	assert.Equal(t, "from:alice@example.com is:flagged", *params.Q)
	assert.Equal(t, "?q=from%3Aalice%40example.com+is%3Aflagged", params.query().Encode())
}
