package models

// Company is one FSM company the OAuth client has access to
type Company struct {
	ID                     int64  `json:"id"`
	Name                   string `json:"name"`
	StrictEncryptionPolicy bool   `json:"strictEncryptionPolicy"`
	PermissionGroupID      int64  `json:"permissionGroupId"`
}

// TokenResponse is the body returned by the FSM OAuth2 token endpoint.
// AccessToken is Sensitive, so logging the whole response is safe.
type TokenResponse struct {
	AccessToken       Sensitive `json:"access_token"`
	TokenType         string    `json:"token_type"`
	ExpiresIn         int64     `json:"expires_in"`
	Companies         []Company `json:"companies,omitempty"`
	AccountID         int64     `json:"account_id,omitempty"`
	Authorities       []string  `json:"authorities,omitempty"`
	Account           string    `json:"account,omitempty"`
	PermissionGroupID int64     `json:"permission_group_id,omitempty"`
	Scope             string    `json:"scope,omitempty"`
	ClusterURL        string    `json:"cluster_url,omitempty"`
}
