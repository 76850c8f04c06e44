package wildduck

import "encoding/json"

// SuccessResponse is the minimal body returned by mutating operations.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// IDResponse is returned by create operations.
type IDResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// ListResponse is a cursor-paginated list. Callers follow the cursors.
type ListResponse[T any] struct {
	Success        bool   `json:"success"`
	Total          int    `json:"total"`
	Page           int    `json:"page"`
	PreviousCursor Cursor `json:"previousCursor"`
	NextCursor     Cursor `json:"nextCursor"`
	Results        []T    `json:"results"`
}

// ResultsResponse is an unpaginated list.
type ResultsResponse[T any] struct {
	Success bool `json:"success"`
	Results []T  `json:"results"`
}

// Cursor is a pagination cursor. The service sends false when there is none.
type Cursor string

// UnmarshalJSON accepts a string or a boolean.
func (c *Cursor) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "false" || s == "null" || s == "true" {
		*c = ""
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var out string
		if err := json.Unmarshal(data, &out); err != nil {
			return err
		}
		*c = Cursor(out)
		return nil
	}
	*c = Cursor(s)
	return nil
}

// Ptr returns nil for an empty cursor, ready for PageParams.
func (c Cursor) Ptr() *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}

// Quota describes storage or rate usage.
type Quota struct {
	Allowed int64 `json:"allowed"`
	Used    int64 `json:"used"`
	TTL     int64 `json:"ttl,omitempty"`
}

// Address is a name/address pair used in message headers.
type Address struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}
