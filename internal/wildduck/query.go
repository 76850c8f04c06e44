package wildduck

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Me is the path literal for the currently authenticated user.
const Me = "me"

// Query is an ordered set of query parameters. Unset values are skipped.
type Query struct {
	keys   []string
	values []string
}

// NewQuery creates an empty query
func NewQuery() *Query {
	return &Query{}
}

// Set adds a literal value.
func (q *Query) Set(key, value string) *Query {
	q.keys = append(q.keys, key)
	q.values = append(q.values, value)
	return q
}

// String adds key when v is non-nil.
func (q *Query) String(key string, v *string) *Query {
	if v == nil {
		return q
	}
	return q.Set(key, *v)
}

// Bool adds key as "true"/"false" when v is non-nil.
func (q *Query) Bool(key string, v *bool) *Query {
	if v == nil {
		return q
	}
	return q.Set(key, strconv.FormatBool(*v))
}

// Int adds key as decimal text when v is non-nil.
func (q *Query) Int(key string, v *int) *Query {
	if v == nil {
		return q
	}
	return q.Set(key, strconv.Itoa(*v))
}

// Time adds key in RFC3339 when v is non-nil.
func (q *Query) Time(key string, v *time.Time) *Query {
	if v == nil {
		return q
	}
	return q.Set(key, v.UTC().Format(time.RFC3339))
}

// Strings adds key as a comma separated list when vs is non-empty.
func (q *Query) Strings(key string, vs []string) *Query {
	if len(vs) == 0 {
		return q
	}
	return q.Set(key, strings.Join(vs, ","))
}

// Len returns the number of parameters.
func (q *Query) Len() int {
	if q == nil {
		return 0
	}
	return len(q.keys)
}

// Encode returns "" or "?k=v&..." in insertion order.
func (q *Query) Encode() string {
	if q.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	for i, key := range q.keys {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(q.values[i]))
	}
	return sb.String()
}

// PageParams are the cursor fields shared by list operations.
type PageParams struct {
	Limit    *int
	Next     *string
	Previous *string
	Page     *int
}

func (p PageParams) apply(q *Query) *Query {
	return q.
		Int("limit", p.Limit).
		String("next", p.Next).
		String("previous", p.Previous).
		Int("page", p.Page)
}

// segment escapes one path segment; "/" becomes %2F.
func segment(s string) string {
	return url.PathEscape(s)
}

// userSegment resolves the Me sentinel and escapes the user id.
func userSegment(user string) string {
	if user == "" || user == Me {
		return Me
	}
	return segment(user)
}

// String returns a pointer to s.
func String(s string) *string { return &s }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// Time returns a pointer to t.
func Time(t time.Time) *time.Time { return &t }
