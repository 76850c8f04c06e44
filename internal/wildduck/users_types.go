package wildduck

import "time"

// UserSummary is one entry of GET /users
type UserSummary struct {
	ID               string         `json:"id"`
	Username         string         `json:"username"`
	Name             string         `json:"name"`
	Address          string         `json:"address"`
	Tags             []string       `json:"tags"`
	Targets          []string       `json:"targets"`
	Enabled2FA       []string       `json:"enabled2fa"`
	Autoreply        bool           `json:"autoreply"`
	EncryptMessages  bool           `json:"encryptMessages"`
	EncryptForwarded bool           `json:"encryptForwarded"`
	Quota            Quota          `json:"quota"`
	MetaData         map[string]any `json:"metaData,omitempty"`
	InternalData     map[string]any `json:"internalData,omitempty"`
	HasPasswordSet   bool           `json:"hasPasswordSet"`
	Activated        bool           `json:"activated"`
	Disabled         bool           `json:"disabled"`
	Suspended        bool           `json:"suspended"`
}

// UserLimits are the per-user quotas returned by GET /users/{user}
type UserLimits struct {
	Quota              Quota `json:"quota"`
	Recipients         Quota `json:"recipients"`
	Filters            Quota `json:"filters"`
	Forwards           Quota `json:"forwards"`
	Received           Quota `json:"received"`
	IMAPUpload         Quota `json:"imapUpload"`
	IMAPDownload       Quota `json:"imapDownload"`
	POP3Download       Quota `json:"pop3Download"`
	IMAPMaxConnections Quota `json:"imapMaxConnections"`
}

// User is the response from GET /users/{user}
type User struct {
	Success          bool           `json:"success"`
	ID               string         `json:"id"`
	Username         string         `json:"username"`
	Name             string         `json:"name"`
	Address          string         `json:"address"`
	Retention        int64          `json:"retention"`
	Enabled2FA       []string       `json:"enabled2fa"`
	Autoreply        bool           `json:"autoreply"`
	EncryptMessages  bool           `json:"encryptMessages"`
	EncryptForwarded bool           `json:"encryptForwarded"`
	PubKey           string         `json:"pubKey"`
	MetaData         map[string]any `json:"metaData,omitempty"`
	InternalData     map[string]any `json:"internalData,omitempty"`
	Targets          []string       `json:"targets"`
	SpamLevel        int            `json:"spamLevel"`
	Limits           UserLimits     `json:"limits"`
	Tags             []string       `json:"tags"`
	DisabledScopes   []string       `json:"disabledScopes"`
	HasPasswordSet   bool           `json:"hasPasswordSet"`
	Activated        bool           `json:"activated"`
	Disabled         bool           `json:"disabled"`
	Suspended        bool           `json:"suspended"`
}

// UserListParams filters GET /users
type UserListParams struct {
	Query        *string
	Tags         []string
	RequiredTags []string
	MetaData     *bool
	InternalData *bool
	PageParams
}

func (p UserListParams) query() *Query {
	q := NewQuery().
		String("query", p.Query).
		Strings("tags", p.Tags).
		Strings("requiredTags", p.RequiredTags).
		Bool("metaData", p.MetaData).
		Bool("internalData", p.InternalData)
	return p.PageParams.apply(q)
}

// CreateUserRequest is the request body for POST /users
type CreateUserRequest struct {
	Username              string         `json:"username"`
	Password              string         `json:"password,omitempty"`
	HashedPassword        bool           `json:"hashedPassword,omitempty"`
	AllowUnsafe           *bool          `json:"allowUnsafe,omitempty"`
	Address               string         `json:"address,omitempty"`
	EmptyAddress          bool           `json:"emptyAddress,omitempty"`
	RequirePasswordChange bool           `json:"requirePasswordChange,omitempty"`
	Name                  string         `json:"name,omitempty"`
	Tags                  []string       `json:"tags,omitempty"`
	AddTagsToAddress      bool           `json:"addTagsToAddress,omitempty"`
	Retention             *int64         `json:"retention,omitempty"`
	EncryptMessages       *bool          `json:"encryptMessages,omitempty"`
	EncryptForwarded      *bool          `json:"encryptForwarded,omitempty"`
	PubKey                string         `json:"pubKey,omitempty"`
	MetaData              map[string]any `json:"metaData,omitempty"`
	InternalData          map[string]any `json:"internalData,omitempty"`
	Language              string         `json:"language,omitempty"`
	Targets               []string       `json:"targets,omitempty"`
	SpamLevel             *int           `json:"spamLevel,omitempty"`
	Quota                 *int64         `json:"quota,omitempty"`
	Recipients            *int           `json:"recipients,omitempty"`
	Forwards              *int           `json:"forwards,omitempty"`
	Filters               *int           `json:"filters,omitempty"`
	DisabledScopes        []string       `json:"disabledScopes,omitempty"`
	FromWhitelist         []string       `json:"fromWhitelist,omitempty"`
	Sess                  string         `json:"sess,omitempty"`
	IP                    string         `json:"ip,omitempty"`
}

// UpdateUserRequest is the request body for PUT /users/{user}.
// Nil fields are left unchanged.
type UpdateUserRequest struct {
	Name             *string        `json:"name,omitempty"`
	ExistingPassword string         `json:"existingPassword,omitempty"`
	Password         string         `json:"password,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
	Retention        *int64         `json:"retention,omitempty"`
	EncryptMessages  *bool          `json:"encryptMessages,omitempty"`
	EncryptForwarded *bool          `json:"encryptForwarded,omitempty"`
	PubKey           *string        `json:"pubKey,omitempty"`
	MetaData         map[string]any `json:"metaData,omitempty"`
	InternalData     map[string]any `json:"internalData,omitempty"`
	Language         *string        `json:"language,omitempty"`
	Targets          []string       `json:"targets,omitempty"`
	SpamLevel        *int           `json:"spamLevel,omitempty"`
	Quota            *int64         `json:"quota,omitempty"`
	Recipients       *int           `json:"recipients,omitempty"`
	Forwards         *int           `json:"forwards,omitempty"`
	Filters          *int           `json:"filters,omitempty"`
	DisabledScopes   []string       `json:"disabledScopes,omitempty"`
	Disable2FA       *bool          `json:"disable2fa,omitempty"`
	Disabled         *bool          `json:"disabled,omitempty"`
	Suspended        *bool          `json:"suspended,omitempty"`
	FromWhitelist    []string       `json:"fromWhitelist,omitempty"`
	Sess             string         `json:"sess,omitempty"`
	IP               string         `json:"ip,omitempty"`
}

// DeleteUserParams controls DELETE /users/{user}
type DeleteUserParams struct {
	DeleteAfter *time.Time
	Sess        *string
	IP          *string
}

func (p DeleteUserParams) query() *Query {
	return NewQuery().
		Time("deleteAfter", p.DeleteAfter).
		String("sess", p.Sess).
		String("ip", p.IP)
}

// DeleteUserResult is the response from DELETE /users/{user}
type DeleteUserResult struct {
	Success     bool       `json:"success"`
	Code        string     `json:"code"`
	User        string     `json:"user"`
	DeleteAfter *time.Time `json:"deleteAfter,omitempty"`
	Task        string     `json:"task,omitempty"`
}

// QuotaResetResult is the response from POST /users/{user}/quota/reset
type QuotaResetResult struct {
	Success             bool  `json:"success"`
	StorageUsed         int64 `json:"storageUsed"`
	PreviousStorageUsed int64 `json:"previousStorageUsed"`
}

// ResetPasswordRequest is the request body for POST /users/{user}/password/reset
type ResetPasswordRequest struct {
	ValidAfter *time.Time `json:"validAfter,omitempty"`
	Sess       string     `json:"sess,omitempty"`
	IP         string     `json:"ip,omitempty"`
}

// ResetPasswordResult carries the generated one-time password
type ResetPasswordResult struct {
	Success  bool   `json:"success"`
	Password string `json:"password"`
}

// RestoreInfo is the response from GET /users/{user}/restore
type RestoreInfo struct {
	Success              bool       `json:"success"`
	User                 string     `json:"user"`
	Username             string     `json:"username"`
	StorageUsed          int64      `json:"storageUsed"`
	Tags                 []string   `json:"tags"`
	Deleted              *time.Time `json:"deleted,omitempty"`
	RecoverableAddresses []string   `json:"recoverableAddresses"`
}

// RestoreResult is the response from POST /users/{user}/restore
type RestoreResult struct {
	Success   bool   `json:"success"`
	Code      string `json:"code"`
	User      string `json:"user"`
	Task      string `json:"task"`
	Addresses struct {
		Recovered int    `json:"recovered"`
		Main      string `json:"main"`
	} `json:"addresses"`
}

// sessionInfo is the optional sess/ip body accepted by several endpoints.
type sessionInfo struct {
	Sess string `json:"sess,omitempty"`
	IP   string `json:"ip,omitempty"`
}
