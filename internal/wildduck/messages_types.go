package wildduck

import "time"

// ContentType is a parsed Content-Type header
type ContentType struct {
	Value  string            `json:"value"`
	Params map[string]string `json:"params,omitempty"`
}

// MessageSummary is one entry of a message listing or search
type MessageSummary struct {
	ID          int               `json:"id"`
	Mailbox     string            `json:"mailbox"`
	Thread      string            `json:"thread"`
	From        *Address          `json:"from,omitempty"`
	To          []Address         `json:"to,omitempty"`
	Cc          []Address         `json:"cc,omitempty"`
	Bcc         []Address         `json:"bcc,omitempty"`
	MessageID   string            `json:"messageId"`
	Subject     string            `json:"subject"`
	Date        time.Time         `json:"date"`
	IDate       *time.Time        `json:"idate,omitempty"`
	Intro       string            `json:"intro"`
	Attachments bool              `json:"attachments"`
	Size        int64             `json:"size"`
	Seen        bool              `json:"seen"`
	Deleted     bool              `json:"deleted"`
	Flagged     bool              `json:"flagged"`
	Draft       bool              `json:"draft"`
	Answered    bool              `json:"answered"`
	Forwarded   bool              `json:"forwarded"`
	References  []string          `json:"references,omitempty"`
	ContentType *ContentType      `json:"contentType,omitempty"`
	MetaData    map[string]any    `json:"metaData,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

// Attachment describes one attachment of a message
type Attachment struct {
	ID               string `json:"id"`
	Filename         string `json:"filename"`
	ContentType      string `json:"contentType"`
	Disposition      string `json:"disposition"`
	TransferEncoding string `json:"transferEncoding"`
	Related          bool   `json:"related"`
	SizeKB           int64  `json:"sizeKb"`
}

// Envelope is the SMTP envelope of a message
type Envelope struct {
	From string `json:"from"`
	Rcpt []struct {
		Value     string `json:"value"`
		Formatted string `json:"formatted"`
	} `json:"rcpt"`
}

// Message is the response from GET .../messages/{message}
type Message struct {
	Success     bool           `json:"success"`
	ID          int            `json:"id"`
	Mailbox     string         `json:"mailbox"`
	User        string         `json:"user"`
	Envelope    *Envelope      `json:"envelope,omitempty"`
	Thread      string         `json:"thread"`
	From        *Address       `json:"from,omitempty"`
	ReplyTo     []Address      `json:"replyTo,omitempty"`
	To          []Address      `json:"to,omitempty"`
	Cc          []Address      `json:"cc,omitempty"`
	Bcc         []Address      `json:"bcc,omitempty"`
	Subject     string         `json:"subject"`
	MessageID   string         `json:"messageId"`
	Date        time.Time      `json:"date"`
	IDate       *time.Time     `json:"idate,omitempty"`
	Expires     *time.Time     `json:"expires,omitempty"`
	Seen        bool           `json:"seen"`
	Deleted     bool           `json:"deleted"`
	Flagged     bool           `json:"flagged"`
	Draft       bool           `json:"draft"`
	Answered    bool           `json:"answered"`
	Forwarded   bool           `json:"forwarded"`
	HTML        []string       `json:"html,omitempty"`
	Text        string         `json:"text,omitempty"`
	Attachments []Attachment   `json:"attachments,omitempty"`
	ContentType *ContentType   `json:"contentType,omitempty"`
	MetaData    map[string]any `json:"metaData,omitempty"`
	References  []string       `json:"references,omitempty"`
	Encrypted   bool           `json:"encrypted,omitempty"`
}

// MessageListParams controls GET .../mailboxes/{mailbox}/messages
type MessageListParams struct {
	Unseen         *bool
	MetaData       *bool
	ThreadCounters *bool
	IncludeHeaders []string
	Order          *string // "asc" or "desc"
	PageParams
}

func (p MessageListParams) query() *Query {
	q := NewQuery().
		Bool("unseen", p.Unseen).
		Bool("metaData", p.MetaData).
		Bool("threadCounters", p.ThreadCounters).
		Strings("includeHeaders", p.IncludeHeaders).
		String("order", p.Order)
	return p.PageParams.apply(q)
}

// SearchParams controls GET /users/{user}/search
type SearchParams struct {
	Q              *string
	Mailbox        *string
	Thread         *string
	Query          *string
	DateStart      *time.Time
	DateEnd        *time.Time
	From           *string
	To             *string
	Subject        *string
	MinSize        *int
	MaxSize        *int
	Attachments    *bool
	Flagged        *bool
	Unseen         *bool
	Searchable     *bool
	ThreadCounters *bool
	IncludeHeaders []string
	Order          *string
	PageParams
}

func (p SearchParams) query() *Query {
	q := NewQuery().
		String("q", p.Q).
		String("mailbox", p.Mailbox).
		String("thread", p.Thread).
		String("query", p.Query).
		Time("datestart", p.DateStart).
		Time("dateend", p.DateEnd).
		String("from", p.From).
		String("to", p.To).
		String("subject", p.Subject).
		Int("minSize", p.MinSize).
		Int("maxSize", p.MaxSize).
		Bool("attachments", p.Attachments).
		Bool("flagged", p.Flagged).
		Bool("unseen", p.Unseen).
		Bool("searchable", p.Searchable).
		Bool("threadCounters", p.ThreadCounters).
		Strings("includeHeaders", p.IncludeHeaders).
		String("order", p.Order)
	return p.PageParams.apply(q)
}

// GetMessageParams controls GET .../messages/{message}
type GetMessageParams struct {
	MarkAsSeen      *bool
	ReplaceCidLinks *bool
}

func (p GetMessageParams) query() *Query {
	return NewQuery().
		Bool("markAsSeen", p.MarkAsSeen).
		Bool("replaceCidLinks", p.ReplaceCidLinks)
}

// UpdateMessageRequest is the request body for PUT .../messages[/{message}].
// Message selects a range ("1:*", "12,14") when updating many.
type UpdateMessageRequest struct {
	Message  string         `json:"message,omitempty"`
	MoveTo   string         `json:"moveTo,omitempty"`
	Seen     *bool          `json:"seen,omitempty"`
	Deleted  *bool          `json:"deleted,omitempty"`
	Flagged  *bool          `json:"flagged,omitempty"`
	Draft    *bool          `json:"draft,omitempty"`
	Expires  *time.Time     `json:"expires,omitempty"`
	MetaData map[string]any `json:"metaData,omitempty"`
}

// UpdateMessageResult is the response from PUT .../messages[/{message}].
// ID holds [old, new] id pairs when messages were moved.
type UpdateMessageResult struct {
	Success bool    `json:"success"`
	Mailbox string  `json:"mailbox,omitempty"`
	ID      [][]int `json:"id,omitempty"`
	Updated int     `json:"updated,omitempty"`
}

// DeleteAllResult is the response from DELETE .../mailboxes/{mailbox}/messages
type DeleteAllResult struct {
	Success bool `json:"success"`
	Deleted int  `json:"deleted"`
	Errors  int  `json:"errors"`
}

// Header is a single custom message header
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// UploadAttachment is an attachment embedded in an upload or submission
type UploadAttachment struct {
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Encoding    string `json:"encoding,omitempty"` // "base64" by default
	Content     string `json:"content"`
	CID         string `json:"cid,omitempty"`
}

// MessageReference links a new message to an existing one
type MessageReference struct {
	Mailbox string `json:"mailbox"`
	ID      int    `json:"id"`
	Action  string `json:"action"` // "reply", "replyAll" or "forward"
}

// UploadMessageRequest is the JSON body for POST .../messages
type UploadMessageRequest struct {
	Date        *time.Time         `json:"date,omitempty"`
	Unseen      bool               `json:"unseen,omitempty"`
	Flagged     bool               `json:"flagged,omitempty"`
	Draft       bool               `json:"draft,omitempty"`
	From        *Address           `json:"from,omitempty"`
	ReplyTo     *Address           `json:"replyTo,omitempty"`
	To          []Address          `json:"to,omitempty"`
	Cc          []Address          `json:"cc,omitempty"`
	Bcc         []Address          `json:"bcc,omitempty"`
	Headers     []Header           `json:"headers,omitempty"`
	Subject     string             `json:"subject,omitempty"`
	Text        string             `json:"text,omitempty"`
	HTML        string             `json:"html,omitempty"`
	Files       []string           `json:"files,omitempty"`
	Attachments []UploadAttachment `json:"attachments,omitempty"`
	MetaData    map[string]any     `json:"metaData,omitempty"`
	Reference   *MessageReference  `json:"reference,omitempty"`
	Sess        string             `json:"sess,omitempty"`
	IP          string             `json:"ip,omitempty"`
}

// UploadRawParams controls a raw RFC822 upload
type UploadRawParams struct {
	Date    *time.Time
	Unseen  *bool
	Flagged *bool
	Draft   *bool
}

func (p UploadRawParams) query() *Query {
	return NewQuery().
		Time("date", p.Date).
		Bool("unseen", p.Unseen).
		Bool("flagged", p.Flagged).
		Bool("draft", p.Draft)
}

// UploadResult is the response from POST .../messages
type UploadResult struct {
	Success bool `json:"success"`
	Message struct {
		ID      int    `json:"id"`
		Mailbox string `json:"mailbox"`
		Size    int64  `json:"size"`
	} `json:"message"`
}

// ForwardRequest is the request body for POST .../messages/{message}/forward
type ForwardRequest struct {
	Target    *int     `json:"target,omitempty"`
	Addresses []string `json:"addresses,omitempty"`
}

// ForwardResult is the response from POST .../messages/{message}/forward
type ForwardResult struct {
	Success   bool   `json:"success"`
	QueueID   string `json:"queueId"`
	Forwarded []struct {
		Seq   string `json:"seq"`
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"forwarded"`
}

// SubmitDraftRequest is the request body for POST .../messages/{message}/submit
type SubmitDraftRequest struct {
	DeleteFiles bool       `json:"deleteFiles,omitempty"`
	SendTime    *time.Time `json:"sendTime,omitempty"`
}

// SubmitResult is returned by draft and direct submission
type SubmitResult struct {
	Success bool   `json:"success"`
	QueueID string `json:"queueId,omitempty"`
	Message struct {
		ID      int    `json:"id"`
		Mailbox string `json:"mailbox"`
		QueueID string `json:"queueId,omitempty"`
	} `json:"message"`
}

// RestoreRequest is the request body for restoring an archived message
type RestoreRequest struct {
	Mailbox string `json:"mailbox,omitempty"`
}

// RestoreMessageResult is the response from restoring an archived message
type RestoreMessageResult struct {
	Success bool   `json:"success"`
	Mailbox string `json:"mailbox"`
	ID      int    `json:"id"`
}
