package wildduck

import (
	"context"
	"fmt"
	"time"
)

// SubmitEnvelope overrides the SMTP envelope derived from the headers
type SubmitEnvelope struct {
	From string    `json:"from,omitempty"`
	To   []Address `json:"to,omitempty"`
}

// SubmitRequest is the request body for POST /users/{user}/submit
type SubmitRequest struct {
	Mailbox     string             `json:"mailbox,omitempty"`
	Reference   *MessageReference  `json:"reference,omitempty"`
	IsDraft     bool               `json:"isDraft,omitempty"`
	UploadOnly  bool               `json:"uploadOnly,omitempty"`
	SendTime    *time.Time         `json:"sendTime,omitempty"`
	Envelope    *SubmitEnvelope    `json:"envelope,omitempty"`
	From        *Address           `json:"from,omitempty"`
	ReplyTo     *Address           `json:"replyTo,omitempty"`
	To          []Address          `json:"to,omitempty"`
	Cc          []Address          `json:"cc,omitempty"`
	Bcc         []Address          `json:"bcc,omitempty"`
	Headers     []Header           `json:"headers,omitempty"`
	Subject     string             `json:"subject,omitempty"`
	Text        string             `json:"text,omitempty"`
	HTML        string             `json:"html,omitempty"`
	Attachments []UploadAttachment `json:"attachments,omitempty"`
	Meta        map[string]any     `json:"meta,omitempty"`
	Sess        string             `json:"sess,omitempty"`
	IP          string             `json:"ip,omitempty"`
}

// SubmissionService wraps /users/{user}/submit
type SubmissionService struct {
	client *Client
}

// NewSubmissionService creates a SubmissionService using client
func NewSubmissionService(client *Client) *SubmissionService {
	return &SubmissionService{client: client}
}

// Submit composes a message, stores it in Sent (or req.Mailbox) and queues it for delivery.
func (s *SubmissionService) Submit(ctx context.Context, user string, req SubmitRequest) (*SubmitResult, error) {
	var resp SubmitResult
	if err := s.client.Post(ctx, fmt.Sprintf("/users/%s/submit", userSegment(user)), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
