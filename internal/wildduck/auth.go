package wildduck

import (
	"context"
	"fmt"
	"time"
)

// AuthenticateRequest is the request body for POST /authenticate.
// Token asks the server to issue an access token for the session.
type AuthenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Protocol string `json:"protocol,omitempty"`
	Scope    string `json:"scope,omitempty"` // "master", "imap", "smtp" or "pop3"
	AppID    string `json:"appId,omitempty"`
	Token    bool   `json:"token,omitempty"`
	Sess     string `json:"sess,omitempty"`
	IP       string `json:"ip,omitempty"`
}

// AuthenticateResult is the response from POST /authenticate.
// Require2FA is false or the list of enabled second factors.
type AuthenticateResult struct {
	Success               bool   `json:"success"`
	ID                    string `json:"id"`
	Username              string `json:"username"`
	Scope                 string `json:"scope"`
	Require2FA            any    `json:"require2fa"`
	RequirePasswordChange bool   `json:"requirePasswordChange"`
	Token                 string `json:"token,omitempty"`
}

// AuthEvent is one authentication log entry
type AuthEvent struct {
	ID         string     `json:"id"`
	Action     string     `json:"action"`
	Result     string     `json:"result"`
	Protocol   string     `json:"protocol"`
	Sess       string     `json:"sess"`
	IP         string     `json:"ip"`
	Created    time.Time  `json:"created"`
	Last       *time.Time `json:"last,omitempty"`
	Events     int        `json:"events,omitempty"`
	Expires    *time.Time `json:"expires,omitempty"`
	RequestURL string     `json:"requestUrl,omitempty"`
}

// AuthLogParams filters GET /users/{user}/authlog
type AuthLogParams struct {
	Action *string
	Sess   *string
	IP     *string
	PageParams
}

func (p AuthLogParams) query() *Query {
	q := NewQuery().
		String("action", p.Action).
		String("sess", p.Sess).
		String("ip", p.IP)
	return p.PageParams.apply(q)
}

// AuthService covers authentication and the authentication log.
type AuthService struct {
	client *Client
}

// NewAuthService creates an AuthService using client
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

// Authenticate checks a username/password pair.
func (s *AuthService) Authenticate(ctx context.Context, req AuthenticateRequest) (*AuthenticateResult, error) {
	var result AuthenticateResult
	if err := s.client.Post(ctx, "/authenticate", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Invalidate drops the access token used for this request.
func (s *AuthService) Invalidate(ctx context.Context) error {
	return s.client.Delete(ctx, "/authenticate", nil)
}

// ListEvents lists authentication log entries for user.
func (s *AuthService) ListEvents(ctx context.Context, user string, params AuthLogParams) (*ListResponse[AuthEvent], error) {
	path := fmt.Sprintf("/users/%s/authlog%s", userSegment(user), params.query().Encode())

	var resp ListResponse[AuthEvent]
	if err := s.client.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetEvent fetches one authentication log entry.
func (s *AuthService) GetEvent(ctx context.Context, user, eventID string) (*AuthEvent, error) {
	path := fmt.Sprintf("/users/%s/authlog/%s", userSegment(user), segment(eventID))

	var event AuthEvent
	if err := s.client.Get(ctx, path, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
