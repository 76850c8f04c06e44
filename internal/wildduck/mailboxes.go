package wildduck

import (
	"context"
	"fmt"
)

// Mailbox is a folder of a user
type Mailbox struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	SpecialUse  string `json:"specialUse,omitempty"`
	ModifyIndex int64  `json:"modifyIndex"`
	Subscribed  bool   `json:"subscribed"`
	Hidden      bool   `json:"hidden"`
	Retention   int64  `json:"retention,omitempty"`
	Total       int    `json:"total,omitempty"`
	Unseen      int    `json:"unseen,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// MailboxListParams controls GET /users/{user}/mailboxes
type MailboxListParams struct {
	SpecialUse *bool
	ShowHidden *bool
	Counters   *bool
	Sizes      *bool
}

func (p MailboxListParams) query() *Query {
	return NewQuery().
		Bool("specialUse", p.SpecialUse).
		Bool("showHidden", p.ShowHidden).
		Bool("counters", p.Counters).
		Bool("sizes", p.Sizes)
}

// CreateMailboxRequest is the request body for POST /users/{user}/mailboxes
type CreateMailboxRequest struct {
	Path      string `json:"path"`
	Hidden    bool   `json:"hidden,omitempty"`
	Retention int64  `json:"retention,omitempty"`
}

// UpdateMailboxRequest is the request body for PUT /users/{user}/mailboxes/{mailbox}
type UpdateMailboxRequest struct {
	Path       *string `json:"path,omitempty"`
	Retention  *int64  `json:"retention,omitempty"`
	Subscribed *bool   `json:"subscribed,omitempty"`
	Hidden     *bool   `json:"hidden,omitempty"`
}

// MailboxesService wraps /users/{user}/mailboxes
type MailboxesService struct {
	client *Client
}

// NewMailboxesService creates a MailboxesService using client
func NewMailboxesService(client *Client) *MailboxesService {
	return &MailboxesService{client: client}
}

func mailboxesPath(user string) string {
	return fmt.Sprintf("/users/%s/mailboxes", userSegment(user))
}

func mailboxPath(user, mailbox string) string {
	return mailboxesPath(user) + "/" + segment(mailbox)
}

// List fetches all mailboxes of user.
func (s *MailboxesService) List(ctx context.Context, user string, params MailboxListParams) (*ResultsResponse[Mailbox], error) {
	var resp ResultsResponse[Mailbox]
	if err := s.client.Get(ctx, mailboxesPath(user)+params.query().Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Create creates a mailbox and returns its ID.
func (s *MailboxesService) Create(ctx context.Context, user string, req CreateMailboxRequest) (*IDResponse, error) {
	var resp IDResponse
	if err := s.client.Post(ctx, mailboxesPath(user), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get fetches one mailbox by ID.
func (s *MailboxesService) Get(ctx context.Context, user, mailbox string) (*Mailbox, error) {
	var resp Mailbox
	if err := s.client.Get(ctx, mailboxPath(user, mailbox), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Resolve returns the ID of the mailbox at path, e.g. "INBOX/Receipts".
func (s *MailboxesService) Resolve(ctx context.Context, user, path string) (string, error) {
	var resp IDResponse
	if err := s.client.Get(ctx, mailboxesPath(user)+"/resolve/"+segment(path), &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Update renames or reconfigures a mailbox.
func (s *MailboxesService) Update(ctx context.Context, user, mailbox string, req UpdateMailboxRequest) error {
	return s.client.Put(ctx, mailboxPath(user, mailbox), req, nil)
}

// Delete removes a mailbox and its messages.
func (s *MailboxesService) Delete(ctx context.Context, user, mailbox string) error {
	return s.client.Delete(ctx, mailboxPath(user, mailbox), nil)
}
