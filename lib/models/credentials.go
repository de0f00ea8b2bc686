package models

// CredentialSecret is the JSON document stored in Secrets Manager for the FSM OAuth client
type CredentialSecret struct {
	ClientID         string    `json:"clientId"`
	ClientSecret     Sensitive `json:"clientSecret"`
	FsmClientID      string    `json:"fsmClientId"`
	FsmClientVersion string    `json:"fsmClientVersion"`
	FsmAccountID     string    `json:"fsmAccountId"`
	FsmCompanyID     string    `json:"fsmCompanyId"`
}

// FsmIdentity is the set of identifiers FSM expects on every data API call
type FsmIdentity struct {
	AccountID     string
	CompanyID     string
	ClientID      string
	ClientVersion string
}

// Identity returns the FSM identifiers carried by the secret
func (s CredentialSecret) Identity() FsmIdentity {
	return FsmIdentity{
		AccountID:     s.FsmAccountID,
		CompanyID:     s.FsmCompanyID,
		ClientID:      s.FsmClientID,
		ClientVersion: s.FsmClientVersion,
	}
}
