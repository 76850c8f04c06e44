package wildduck

import (
	"context"
	"fmt"
	"strconv"
)

// MessagesService wraps messages stored in user mailboxes
type MessagesService struct {
	client *Client
}

// NewMessagesService creates a MessagesService using client
func NewMessagesService(client *Client) *MessagesService {
	return &MessagesService{client: client}
}

func messagesPath(user, mailbox string) string {
	return mailboxPath(user, mailbox) + "/messages"
}

func messagePath(user, mailbox string, id int) string {
	return messagesPath(user, mailbox) + "/" + strconv.Itoa(id)
}

// List fetches one page of messages in a mailbox.
func (s *MessagesService) List(ctx context.Context, user, mailbox string, params MessageListParams) (*ListResponse[MessageSummary], error) {
	var resp ListResponse[MessageSummary]
	if err := s.client.Get(ctx, messagesPath(user, mailbox)+params.query().Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Search searches messages across the mailboxes of user.
func (s *MessagesService) Search(ctx context.Context, user string, params SearchParams) (*ListResponse[MessageSummary], error) {
	path := fmt.Sprintf("/users/%s/search%s", userSegment(user), params.query().Encode())

	var resp ListResponse[MessageSummary]
	if err := s.client.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get fetches a parsed message.
func (s *MessagesService) Get(ctx context.Context, user, mailbox string, id int, params GetMessageParams) (*Message, error) {
	var resp Message
	if err := s.client.Get(ctx, messagePath(user, mailbox, id)+params.query().Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Source downloads the RFC822 source of a message byte for byte.
func (s *MessagesService) Source(ctx context.Context, user, mailbox string, id int) ([]byte, error) {
	return s.client.GetBytes(ctx, messagePath(user, mailbox, id)+"/message.eml",
		WithHeader("Accept", "message/rfc822"))
}

// Attachment downloads one attachment byte for byte.
func (s *MessagesService) Attachment(ctx context.Context, user, mailbox string, id int, attachment string) ([]byte, error) {
	return s.client.GetBytes(ctx, messagePath(user, mailbox, id)+"/attachments/"+segment(attachment),
		WithHeader("Accept", "application/octet-stream"))
}

// Update changes flags of, or moves, a single message.
func (s *MessagesService) Update(ctx context.Context, user, mailbox string, id int, req UpdateMessageRequest) (*UpdateMessageResult, error) {
	var resp UpdateMessageResult
	if err := s.client.Put(ctx, messagePath(user, mailbox, id), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateMany applies req to the range in req.Message.
func (s *MessagesService) UpdateMany(ctx context.Context, user, mailbox string, req UpdateMessageRequest) (*UpdateMessageResult, error) {
	var resp UpdateMessageResult
	if err := s.client.Put(ctx, messagesPath(user, mailbox), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete removes a message permanently.
func (s *MessagesService) Delete(ctx context.Context, user, mailbox string, id int) error {
	return s.client.Delete(ctx, messagePath(user, mailbox, id), nil)
}

// DeleteAll removes every message in a mailbox.
func (s *MessagesService) DeleteAll(ctx context.Context, user, mailbox string) (*DeleteAllResult, error) {
	var resp DeleteAllResult
	if err := s.client.Delete(ctx, messagesPath(user, mailbox), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Upload composes a message from structured fields and stores it.
func (s *MessagesService) Upload(ctx context.Context, user, mailbox string, req UploadMessageRequest) (*UploadResult, error) {
	var resp UploadResult
	if err := s.client.Post(ctx, messagesPath(user, mailbox), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadRaw stores an RFC822 message as-is.
func (s *MessagesService) UploadRaw(ctx context.Context, user, mailbox string, raw []byte, params UploadRawParams) (*UploadResult, error) {
	var resp UploadResult
	path := messagesPath(user, mailbox) + params.query().Encode()
	if err := s.client.Post(ctx, path, RawBody("message/rfc822", raw), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Forward resends a stored message to one or more targets.
func (s *MessagesService) Forward(ctx context.Context, user, mailbox string, id int, req ForwardRequest) (*ForwardResult, error) {
	var resp ForwardResult
	if err := s.client.Post(ctx, messagePath(user, mailbox, id)+"/forward", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitDraft queues a stored draft for delivery.
func (s *MessagesService) SubmitDraft(ctx context.Context, user, mailbox string, id int, req SubmitDraftRequest) (*SubmitResult, error) {
	var resp SubmitResult
	if err := s.client.Post(ctx, messagePath(user, mailbox, id)+"/submit", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListArchived lists deleted messages that can still be restored.
func (s *MessagesService) ListArchived(ctx context.Context, user string, params PageParams) (*ListResponse[MessageSummary], error) {
	path := fmt.Sprintf("/users/%s/archived/messages%s", userSegment(user), params.apply(NewQuery()).Encode())

	var resp ListResponse[MessageSummary]
	if err := s.client.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RestoreArchived moves an archived message back into a mailbox.
func (s *MessagesService) RestoreArchived(ctx context.Context, user, id string, req RestoreRequest) (*RestoreMessageResult, error) {
	path := fmt.Sprintf("/users/%s/archived/messages/%s/restore", userSegment(user), segment(id))

	var resp RestoreMessageResult
	if err := s.client.Post(ctx, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
