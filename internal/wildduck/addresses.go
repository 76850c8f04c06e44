package wildduck

import (
	"context"
	"fmt"
	"time"
)

// AddressEntry is one entry of GET /addresses
type AddressEntry struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Address           string         `json:"address"`
	User              string         `json:"user,omitempty"`
	Forwarded         bool           `json:"forwarded"`
	ForwardedDisabled bool           `json:"forwardedDisabled"`
	Targets           []string       `json:"targets,omitempty"`
	Tags              []string       `json:"tags,omitempty"`
	MetaData          map[string]any `json:"metaData,omitempty"`
	InternalData      map[string]any `json:"internalData,omitempty"`
}

// UserAddress is an address registered to a user
type UserAddress struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Address      string         `json:"address"`
	Main         bool           `json:"main"`
	Created      *time.Time     `json:"created,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	MetaData     map[string]any `json:"metaData,omitempty"`
	InternalData map[string]any `json:"internalData,omitempty"`
}

// ResolvedAddress is the response from GET /addresses/resolve/{address}.
// User is set for user addresses, Targets for forwarded ones.
type ResolvedAddress struct {
	Success           bool           `json:"success"`
	ID                string         `json:"id"`
	Address           string         `json:"address"`
	Name              string         `json:"name"`
	User              string         `json:"user,omitempty"`
	Targets           []string       `json:"targets,omitempty"`
	Limits            map[string]any `json:"limits,omitempty"`
	Autoreply         *Autoreply     `json:"autoreply,omitempty"`
	ForwardedDisabled bool           `json:"forwardedDisabled,omitempty"`
	Tags              []string       `json:"tags,omitempty"`
	Created           *time.Time     `json:"created,omitempty"`
	MetaData          map[string]any `json:"metaData,omitempty"`
	InternalData      map[string]any `json:"internalData,omitempty"`
}

// Autoreply is the vacation responder of a forwarded address
type Autoreply struct {
	Status  bool       `json:"status"`
	Start   *time.Time `json:"start,omitempty"`
	End     *time.Time `json:"end,omitempty"`
	Name    string     `json:"name,omitempty"`
	Subject string     `json:"subject,omitempty"`
	Text    string     `json:"text,omitempty"`
	HTML    string     `json:"html,omitempty"`
}

// ForwardedAddress is the response from GET /addresses/forwarded/{address}
type ForwardedAddress struct {
	Success           bool           `json:"success"`
	ID                string         `json:"id"`
	Address           string         `json:"address"`
	Name              string         `json:"name"`
	Targets           []string       `json:"targets"`
	Limits            map[string]any `json:"limits,omitempty"`
	Autoreply         *Autoreply     `json:"autoreply,omitempty"`
	ForwardedDisabled bool           `json:"forwardedDisabled"`
	Created           *time.Time     `json:"created,omitempty"`
	Tags              []string       `json:"tags,omitempty"`
	MetaData          map[string]any `json:"metaData,omitempty"`
	InternalData      map[string]any `json:"internalData,omitempty"`
}

// AddressListParams filters GET /addresses
type AddressListParams struct {
	Query        *string
	Forward      *string
	Tags         []string
	RequiredTags []string
	MetaData     *bool
	InternalData *bool
	PageParams
}

func (p AddressListParams) query() *Query {
	q := NewQuery().
		String("query", p.Query).
		String("forward", p.Forward).
		Strings("tags", p.Tags).
		Strings("requiredTags", p.RequiredTags).
		Bool("metaData", p.MetaData).
		Bool("internalData", p.InternalData)
	return p.PageParams.apply(q)
}

// UserAddressParams controls GET /users/{user}/addresses
type UserAddressParams struct {
	MetaData     *bool
	InternalData *bool
}

func (p UserAddressParams) query() *Query {
	return NewQuery().
		Bool("metaData", p.MetaData).
		Bool("internalData", p.InternalData)
}

// ResolveAddressParams controls GET /addresses/resolve/{address}
type ResolveAddressParams struct {
	AllowWildcard *bool
	MetaData      *bool
	InternalData  *bool
}

func (p ResolveAddressParams) query() *Query {
	return NewQuery().
		Bool("allowWildcard", p.AllowWildcard).
		Bool("metaData", p.MetaData).
		Bool("internalData", p.InternalData)
}

// CreateAddressRequest is the request body for POST /users/{user}/addresses
type CreateAddressRequest struct {
	Address       string         `json:"address"`
	Name          string         `json:"name,omitempty"`
	Main          bool           `json:"main,omitempty"`
	AllowWildcard bool           `json:"allowWildcard,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	MetaData      map[string]any `json:"metaData,omitempty"`
	InternalData  map[string]any `json:"internalData,omitempty"`
}

// UpdateAddressRequest is the request body for PUT /users/{user}/addresses/{address}
type UpdateAddressRequest struct {
	Address      *string        `json:"address,omitempty"`
	Name         *string        `json:"name,omitempty"`
	Main         *bool          `json:"main,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	MetaData     map[string]any `json:"metaData,omitempty"`
	InternalData map[string]any `json:"internalData,omitempty"`
}

// CreateForwardedRequest is the request body for POST /addresses/forwarded
type CreateForwardedRequest struct {
	Address       string         `json:"address"`
	Name          string         `json:"name,omitempty"`
	Targets       []string       `json:"targets,omitempty"`
	Forwards      *int           `json:"forwards,omitempty"`
	AllowWildcard bool           `json:"allowWildcard,omitempty"`
	Autoreply     *Autoreply     `json:"autoreply,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	MetaData      map[string]any `json:"metaData,omitempty"`
	InternalData  map[string]any `json:"internalData,omitempty"`
}

// UpdateForwardedRequest is the request body for PUT /addresses/forwarded/{address}
type UpdateForwardedRequest struct {
	Address           *string        `json:"address,omitempty"`
	Name              *string        `json:"name,omitempty"`
	Targets           []string       `json:"targets,omitempty"`
	Forwards          *int           `json:"forwards,omitempty"`
	Autoreply         *Autoreply     `json:"autoreply,omitempty"`
	ForwardedDisabled *bool          `json:"forwardedDisabled,omitempty"`
	Tags              []string       `json:"tags,omitempty"`
	MetaData          map[string]any `json:"metaData,omitempty"`
	InternalData      map[string]any `json:"internalData,omitempty"`
}

// RenameDomainResult is the response from PUT /addresses/renameDomain
type RenameDomainResult struct {
	Success           bool `json:"success"`
	ModifiedAddresses int  `json:"modifiedAddresses"`
	ModifiedUsers     int  `json:"modifiedUsers"`
}

// AddressesService wraps /addresses and /users/{user}/addresses
type AddressesService struct {
	client *Client
}

// NewAddressesService creates an AddressesService using client
func NewAddressesService(client *Client) *AddressesService {
	return &AddressesService{client: client}
}

func userAddressesPath(user string) string {
	return fmt.Sprintf("/users/%s/addresses", userSegment(user))
}

// List searches all registered addresses.
func (s *AddressesService) List(ctx context.Context, params AddressListParams) (*ListResponse[AddressEntry], error) {
	var resp ListResponse[AddressEntry]
	if err := s.client.Get(ctx, "/addresses"+params.query().Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListForUser lists the addresses of user.
func (s *AddressesService) ListForUser(ctx context.Context, user string, params UserAddressParams) (*ResultsResponse[UserAddress], error) {
	var resp ResultsResponse[UserAddress]
	if err := s.client.Get(ctx, userAddressesPath(user)+params.query().Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Create adds an address to user.
func (s *AddressesService) Create(ctx context.Context, user string, req CreateAddressRequest) (*IDResponse, error) {
	var resp IDResponse
	if err := s.client.Post(ctx, userAddressesPath(user), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get fetches one address of user by ID.
func (s *AddressesService) Get(ctx context.Context, user, address string) (*UserAddress, error) {
	var resp UserAddress
	if err := s.client.Get(ctx, userAddressesPath(user)+"/"+segment(address), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Update changes an address of user.
func (s *AddressesService) Update(ctx context.Context, user, address string, req UpdateAddressRequest) error {
	return s.client.Put(ctx, userAddressesPath(user)+"/"+segment(address), req, nil)
}

// Delete removes an address from user.
func (s *AddressesService) Delete(ctx context.Context, user, address string) error {
	return s.client.Delete(ctx, userAddressesPath(user)+"/"+segment(address), nil)
}

// Resolve looks up the owner of an address.
func (s *AddressesService) Resolve(ctx context.Context, address string, params ResolveAddressParams) (*ResolvedAddress, error) {
	path := "/addresses/resolve/" + segment(address) + params.query().Encode()

	var resp ResolvedAddress
	if err := s.client.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateForwarded creates an address that forwards to external targets.
func (s *AddressesService) CreateForwarded(ctx context.Context, req CreateForwardedRequest) (*IDResponse, error) {
	var resp IDResponse
	if err := s.client.Post(ctx, "/addresses/forwarded", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetForwarded fetches a forwarded address.
func (s *AddressesService) GetForwarded(ctx context.Context, address string) (*ForwardedAddress, error) {
	var resp ForwardedAddress
	if err := s.client.Get(ctx, "/addresses/forwarded/"+segment(address), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateForwarded changes a forwarded address.
func (s *AddressesService) UpdateForwarded(ctx context.Context, address string, req UpdateForwardedRequest) error {
	return s.client.Put(ctx, "/addresses/forwarded/"+segment(address), req, nil)
}

// DeleteForwarded removes a forwarded address.
func (s *AddressesService) DeleteForwarded(ctx context.Context, address string) error {
	return s.client.Delete(ctx, "/addresses/forwarded/"+segment(address), nil)
}

// RenameDomain rewrites every address and username on oldDomain.
func (s *AddressesService) RenameDomain(ctx context.Context, oldDomain, newDomain string) (*RenameDomainResult, error) {
	body := struct {
		OldDomain string `json:"oldDomain"`
		NewDomain string `json:"newDomain"`
	}{OldDomain: oldDomain, NewDomain: newDomain}

	var resp RenameDomainResult
	if err := s.client.Put(ctx, "/addresses/renameDomain", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
