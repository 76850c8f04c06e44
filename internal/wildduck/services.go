package wildduck

import "context"

// AuthAPI defines authentication and audit log operations
type AuthAPI interface {
	Authenticate(ctx context.Context, req AuthenticateRequest) (*AuthenticateResult, error)
	Invalidate(ctx context.Context) error
	ListEvents(ctx context.Context, user string, params AuthLogParams) (*ListResponse[AuthEvent], error)
	GetEvent(ctx context.Context, user, event string) (*AuthEvent, error)
}

// UsersAPI defines user account operations
type UsersAPI interface {
	List(ctx context.Context, params UserListParams) (*ListResponse[UserSummary], error)
	Create(ctx context.Context, req CreateUserRequest) (*IDResponse, error)
	Get(ctx context.Context, user string) (*User, error)
	Update(ctx context.Context, user string, req UpdateUserRequest) error
	Delete(ctx context.Context, user string, params DeleteUserParams) (*DeleteUserResult, error)
	Resolve(ctx context.Context, username string) (string, error)
	Logout(ctx context.Context, user, reason string) error
	ResetQuota(ctx context.Context, user string) (*QuotaResetResult, error)
	ResetPassword(ctx context.Context, user string, req ResetPasswordRequest) (*ResetPasswordResult, error)
	RestoreInfo(ctx context.Context, user string) (*RestoreInfo, error)
	Restore(ctx context.Context, user string) (*RestoreResult, error)
	Updates(ctx context.Context, user string) (*Subscription, error)
}

// MailboxesAPI defines mailbox operations
type MailboxesAPI interface {
	List(ctx context.Context, user string, params MailboxListParams) (*ResultsResponse[Mailbox], error)
	Create(ctx context.Context, user string, req CreateMailboxRequest) (*IDResponse, error)
	Get(ctx context.Context, user, mailbox string) (*Mailbox, error)
	Resolve(ctx context.Context, user, path string) (string, error)
	Update(ctx context.Context, user, mailbox string, req UpdateMailboxRequest) error
	Delete(ctx context.Context, user, mailbox string) error
}

// AddressesAPI defines address and forwarded address operations
type AddressesAPI interface {
	List(ctx context.Context, params AddressListParams) (*ListResponse[AddressEntry], error)
	ListForUser(ctx context.Context, user string, params UserAddressParams) (*ResultsResponse[UserAddress], error)
	Create(ctx context.Context, user string, req CreateAddressRequest) (*IDResponse, error)
	Get(ctx context.Context, user, address string) (*UserAddress, error)
	Update(ctx context.Context, user, address string, req UpdateAddressRequest) error
	Delete(ctx context.Context, user, address string) error
	Resolve(ctx context.Context, address string, params ResolveAddressParams) (*ResolvedAddress, error)
	CreateForwarded(ctx context.Context, req CreateForwardedRequest) (*IDResponse, error)
	GetForwarded(ctx context.Context, address string) (*ForwardedAddress, error)
	UpdateForwarded(ctx context.Context, address string, req UpdateForwardedRequest) error
	DeleteForwarded(ctx context.Context, address string) error
	RenameDomain(ctx context.Context, oldDomain, newDomain string) (*RenameDomainResult, error)
}

// MessagesAPI defines message operations
type MessagesAPI interface {
	List(ctx context.Context, user, mailbox string, params MessageListParams) (*ListResponse[MessageSummary], error)
	Search(ctx context.Context, user string, params SearchParams) (*ListResponse[MessageSummary], error)
	Get(ctx context.Context, user, mailbox string, id int, params GetMessageParams) (*Message, error)
	Source(ctx context.Context, user, mailbox string, id int) ([]byte, error)
	Attachment(ctx context.Context, user, mailbox string, id int, attachment string) ([]byte, error)
	Update(ctx context.Context, user, mailbox string, id int, req UpdateMessageRequest) (*UpdateMessageResult, error)
	UpdateMany(ctx context.Context, user, mailbox string, req UpdateMessageRequest) (*UpdateMessageResult, error)
	Delete(ctx context.Context, user, mailbox string, id int) error
	DeleteAll(ctx context.Context, user, mailbox string) (*DeleteAllResult, error)
	Upload(ctx context.Context, user, mailbox string, req UploadMessageRequest) (*UploadResult, error)
	UploadRaw(ctx context.Context, user, mailbox string, raw []byte, params UploadRawParams) (*UploadResult, error)
	Forward(ctx context.Context, user, mailbox string, id int, req ForwardRequest) (*ForwardResult, error)
	SubmitDraft(ctx context.Context, user, mailbox string, id int, req SubmitDraftRequest) (*SubmitResult, error)
	ListArchived(ctx context.Context, user string, params PageParams) (*ListResponse[MessageSummary], error)
	RestoreArchived(ctx context.Context, user, id string, req RestoreRequest) (*RestoreMessageResult, error)
}

// SubmissionAPI defines direct message submission
type SubmissionAPI interface {
	Submit(ctx context.Context, user string, req SubmitRequest) (*SubmitResult, error)
}

// Compile-time interface checks
var (
	_ AuthAPI       = (*AuthService)(nil)
	_ UsersAPI      = (*UsersService)(nil)
	_ MailboxesAPI  = (*MailboxesService)(nil)
	_ AddressesAPI  = (*AddressesService)(nil)
	_ MessagesAPI   = (*MessagesService)(nil)
	_ SubmissionAPI = (*SubmissionService)(nil)
)

// Services groups every resource module over one shared Client.
type Services struct {
	Auth       *AuthService
	Users      *UsersService
	Mailboxes  *MailboxesService
	Addresses  *AddressesService
	Messages   *MessagesService
	Submission *SubmissionService
}

// NewServices builds all resource modules for client.
func NewServices(client *Client) *Services {
	return &Services{
		Auth:       NewAuthService(client),
		Users:      NewUsersService(client),
		Mailboxes:  NewMailboxesService(client),
		Addresses:  NewAddressesService(client),
		Messages:   NewMessagesService(client),
		Submission: NewSubmissionService(client),
	}
}

// Auth returns the authentication module bound to c.
func (c *Client) Auth() *AuthService {
	return NewAuthService(c)
}

// Users returns the users module bound to c.
func (c *Client) Users() *UsersService {
	return NewUsersService(c)
}

// Mailboxes returns the mailboxes module bound to c.
func (c *Client) Mailboxes() *MailboxesService {
	return NewMailboxesService(c)
}

// Addresses returns the addresses module bound to c.
func (c *Client) Addresses() *AddressesService {
	return NewAddressesService(c)
}

// Messages returns the messages module bound to c.
func (c *Client) Messages() *MessagesService {
	return NewMessagesService(c)
}

// Submission returns the submission module bound to c.
func (c *Client) Submission() *SubmissionService {
	return NewSubmissionService(c)
}

