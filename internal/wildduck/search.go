package wildduck

import (
	"strings"
	"time"
)

// SearchQuery builds the expression passed as the q search parameter
type SearchQuery struct {
	parts []string
}

// NewSearchQuery creates an empty search query builder
func NewSearchQuery() *SearchQuery {
	return &SearchQuery{
		parts: []string{},
	}
}

// From adds a sender filter
func (sq *SearchQuery) From(address string) *SearchQuery {
	return sq.term("from", address)
}

// To adds a recipient filter
func (sq *SearchQuery) To(address string) *SearchQuery {
	return sq.term("to", address)
}

// Subject adds a subject text filter
func (sq *SearchQuery) Subject(text string) *SearchQuery {
	return sq.term("subject", text)
}

// After adds a filter for messages received on or after date
func (sq *SearchQuery) After(date time.Time) *SearchQuery {
	return sq.term("after", date.Format("2006-01-02"))
}

// Before adds a filter for messages received before date
func (sq *SearchQuery) Before(date time.Time) *SearchQuery {
	return sq.term("before", date.Format("2006-01-02"))
}

// HasAttachment adds a filter for messages with attachments
func (sq *SearchQuery) HasAttachment() *SearchQuery {
	sq.parts = append(sq.parts, "has:attachment")
	return sq
}

// IsUnseen adds a filter for unread messages
func (sq *SearchQuery) IsUnseen() *SearchQuery {
	sq.parts = append(sq.parts, "is:unseen")
	return sq
}

// IsFlagged adds a filter for flagged messages
func (sq *SearchQuery) IsFlagged() *SearchQuery {
	sq.parts = append(sq.parts, "is:flagged")
	return sq
}

// Text adds free text matched against the whole message
func (sq *SearchQuery) Text(query string) *SearchQuery {
	if query = strings.TrimSpace(query); query != "" {
		sq.parts = append(sq.parts, quote(query))
	}
	return sq
}

// Build returns the complete search expression
func (sq *SearchQuery) Build() string {
	return strings.Join(sq.parts, " ")
}

// IsEmpty returns true if no search criteria have been added
func (sq *SearchQuery) IsEmpty() bool {
	return len(sq.parts) == 0
}

// Params returns SearchParams with q set, or empty params if no criteria were added.
func (sq *SearchQuery) Params() SearchParams {
	if sq.IsEmpty() {
		return SearchParams{}
	}
	return SearchParams{Q: String(sq.Build())}
}

func (sq *SearchQuery) term(key, value string) *SearchQuery {
	sq.parts = append(sq.parts, key+":"+quote(value))
	return sq
}

// quote wraps values containing whitespace in double quotes.
func quote(s string) string {
	if !strings.ContainsAny(s, " \t") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
