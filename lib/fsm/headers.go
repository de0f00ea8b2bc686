package fsm

import (
	"net/http"

	"fsm-backup/lib/constants"
	"fsm-backup/lib/models"
)

// Headers are the FSM data API request headers, bearer token included
type Headers struct {
	Identity    models.FsmIdentity
	AccessToken models.Sensitive
	ContentType string
}

// NewHeaders builds the request headers for an FSM call
func NewHeaders(identity models.FsmIdentity, accessToken string) Headers {
	return Headers{Identity: identity, AccessToken: models.Sensitive(accessToken)}
}

// WithJSONBody returns a copy of the headers that also sets Content-Type: application/json
func (h Headers) WithJSONBody() Headers {
	h.ContentType = "application/json"
	return h
}

// Apply writes the headers onto an outgoing request
func (h Headers) Apply(req *http.Request) {
	req.Header.Set(constants.HEADER_ACCOUNT_ID, h.Identity.AccountID)
	req.Header.Set(constants.HEADER_COMPANY_ID, h.Identity.CompanyID)
	req.Header.Set(constants.HEADER_CLIENT_ID, h.Identity.ClientID)
	req.Header.Set(constants.HEADER_CLIENT_VERSION, h.Identity.ClientVersion)
	req.Header.Set("Authorization", "Bearer "+h.AccessToken.Reveal())
	if h.ContentType != "" {
		req.Header.Set("Content-Type", h.ContentType)
	}
}
