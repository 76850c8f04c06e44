package wildduck

import (
	"context"
	"fmt"
)

// UsersService wraps the /users resource family
type UsersService struct {
	client *Client
}

// NewUsersService creates a UsersService using client
func NewUsersService(client *Client) *UsersService {
	return &UsersService{client: client}
}

// List fetches one page of users.
func (s *UsersService) List(ctx context.Context, params UserListParams) (*ListResponse[UserSummary], error) {
	var resp ListResponse[UserSummary]
	if err := s.client.Get(ctx, "/users"+params.query().Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Create creates a user and returns its ID.
func (s *UsersService) Create(ctx context.Context, req CreateUserRequest) (*IDResponse, error) {
	var resp IDResponse
	if err := s.client.Post(ctx, "/users", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get fetches one user. Pass Me for the authenticated user.
func (s *UsersService) Get(ctx context.Context, user string) (*User, error) {
	var resp User
	if err := s.client.Get(ctx, "/users/"+userSegment(user), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Update changes user properties.
func (s *UsersService) Update(ctx context.Context, user string, req UpdateUserRequest) error {
	return s.client.Put(ctx, "/users/"+userSegment(user), req, nil)
}

// Delete deletes a user, immediately or after params.DeleteAfter.
func (s *UsersService) Delete(ctx context.Context, user string, params DeleteUserParams) (*DeleteUserResult, error) {
	path := "/users/" + userSegment(user) + params.query().Encode()

	var resp DeleteUserResult
	if err := s.client.Delete(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Resolve returns the ID for a username or address.
func (s *UsersService) Resolve(ctx context.Context, username string) (string, error) {
	var resp IDResponse
	if err := s.client.Get(ctx, "/users/resolve/"+segment(username), &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Logout closes all IMAP sessions of user.
func (s *UsersService) Logout(ctx context.Context, user, reason string) error {
	body := struct {
		Reason string `json:"reason,omitempty"`
	}{Reason: reason}
	return s.client.Put(ctx, fmt.Sprintf("/users/%s/logout", userSegment(user)), body, nil)
}

// ResetQuota recalculates the storage used by user.
func (s *UsersService) ResetQuota(ctx context.Context, user string) (*QuotaResetResult, error) {
	var resp QuotaResetResult
	if err := s.client.Post(ctx, fmt.Sprintf("/users/%s/quota/reset", userSegment(user)), sessionInfo{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetPassword generates a new temporary password for user.
func (s *UsersService) ResetPassword(ctx context.Context, user string, req ResetPasswordRequest) (*ResetPasswordResult, error) {
	var resp ResetPasswordResult
	if err := s.client.Post(ctx, fmt.Sprintf("/users/%s/password/reset", userSegment(user)), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RestoreInfo describes what can be recovered for a deleted user.
func (s *UsersService) RestoreInfo(ctx context.Context, user string) (*RestoreInfo, error) {
	var resp RestoreInfo
	if err := s.client.Get(ctx, fmt.Sprintf("/users/%s/restore", userSegment(user)), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Restore cancels a scheduled user deletion.
func (s *UsersService) Restore(ctx context.Context, user string) (*RestoreResult, error) {
	var resp RestoreResult
	if err := s.client.Post(ctx, fmt.Sprintf("/users/%s/restore", userSegment(user)), sessionInfo{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Updates opens the live update feed of user. The caller must Close it.
func (s *UsersService) Updates(ctx context.Context, user string) (*Subscription, error) {
	return s.client.Stream(ctx, fmt.Sprintf("/users/%s/updates", userSegment(user)), nil)
}
