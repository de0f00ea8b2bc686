package models

import (
	"encoding/json"
	"fmt"

	"fsm-backup/lib/constants"
)

// Rule field values for the attachment backup business rule
const (
	RuleEventTypeCreate       = "CREATE"
	RuleObjectTypeAttachment  = "ATTACHMENT"
	RuleExecutionOnSuccess    = "ON_SUCCESS"
	RuleTypeTwo               = "TWO"
	RulePermissionsTypeUser   = "USER"
	RuleActionHTTPRequest     = "HttpRequest"
	RuleActionMethodPost      = "POST"
	RuleActionContentTypeJSON = "application/json"
	RuleActionResponseVar     = "response"
)

// AttachmentCreatedBodyTemplate is the webhook body FSM renders when the rule fires.
// The ${attachment.*} placeholders are substituted by FSM, not by this code.
const AttachmentCreatedBodyTemplate = `{
  "detailType": "AttachmentCreated",
  "detail": {
    "fileName": "${attachment.fileName}",
    "attachmentId": "${attachment.id}",
    "description": "${attachment.description}",
    "type": "${attachment.type}",
    "lastChanged": "${attachment.lastChanged}",
    "lastChangedByClientVersion": "${attachment.lastChangedByClientVersion}",
    "id": "${attachment.id}",
    "createPerson": "${attachment.createPerson}",
    "createDateTime": "${attachment.createDateTime}",
    "lastChangedBy": "${attachment.lastChangedBy}"
  }
}`

// RuleHeader is an HTTP header the rule action sends. The value is usually the API key.
type RuleHeader struct {
	Name  string    `json:"name"`
	Value Sensitive `json:"value"`
}

// ActionParameters configure the HttpRequest action
type ActionParameters struct {
	URL              string       `json:"url"`
	Body             string       `json:"body"`
	Method           string       `json:"method"`
	Headers          []RuleHeader `json:"headers"`
	ContentType      string       `json:"contentType,omitempty"`
	ResponseVariable string       `json:"responseVariable,omitempty"`
}

// Action is one step executed when the rule fires
type Action struct {
	ExecutionCount string           `json:"executionCount"`
	Name           string           `json:"name"`
	Parameters     ActionParameters `json:"parameters"`
}

// CustomRule is an FSM business rule. Code is its identity.
type CustomRule struct {
	ID              string   `json:"id,omitempty"`
	Code            string   `json:"code"`
	Name            string   `json:"name"`
	EventType       string   `json:"eventType"`
	Type            string   `json:"type"`
	PermissionsType string   `json:"permissionsType"`
	Embedded        bool     `json:"embedded"`
	Enabled         bool     `json:"enabled"`
	ObjectType      string   `json:"objectType"`
	ExecutionType   string   `json:"executionType"`
	Description     string   `json:"description,omitempty"`
	Inactive        bool     `json:"inactive"`
	Responsible     string   `json:"responsible,omitempty"`
	Actions         []Action `json:"actions"`
}

// RuleCode derives the rule code for a deployment. The same stack and region always
// produce the same code, so redeployments target the same rule.
func RuleCode(stackName, region string) string {
	return fmt.Sprintf("%s-%s-%s", constants.RULE_CODE_PREFIX, stackName, region)
}

// NewAttachmentBackupRule builds the rule that posts attachment-created events to the webhook
func NewAttachmentBackupRule(code, webhookURL string, apiKey Sensitive) CustomRule {
	return CustomRule{
		Code:            code,
		Name:            constants.RULE_NAME,
		EventType:       RuleEventTypeCreate,
		Type:            RuleTypeTwo,
		PermissionsType: RulePermissionsTypeUser,
		Embedded:        false,
		Enabled:         true,
		ObjectType:      RuleObjectTypeAttachment,
		ExecutionType:   RuleExecutionOnSuccess,
		Description:     constants.RULE_DESCRIPTION,
		Inactive:        false,
		Actions: []Action{
			{
				ExecutionCount: "1",
				Name:           RuleActionHTTPRequest,
				Parameters: ActionParameters{
					URL:              webhookURL,
					Body:             AttachmentCreatedBodyTemplate,
					Method:           RuleActionMethodPost,
					Headers:          []RuleHeader{{Name: constants.HEADER_API_KEY, Value: apiKey}},
					ContentType:      RuleActionContentTypeJSON,
					ResponseVariable: RuleActionResponseVar,
				},
			},
		},
	}
}

// WireJSON encodes the rule as the request body for FSM. Unlike json.Marshal it
// reveals header values, so its output must only ever be sent, never logged.
func (r CustomRule) WireJSON() ([]byte, error) {
	type wireHeader struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	type wireParameters struct {
		ActionParameters
		Headers []wireHeader `json:"headers"`
	}
	type wireAction struct {
		Action
		Parameters wireParameters `json:"parameters"`
	}
	type wireRule struct {
		CustomRule
		Actions []wireAction `json:"actions"`
	}

	rule := wireRule{CustomRule: r, Actions: make([]wireAction, 0, len(r.Actions))}
	for _, action := range r.Actions {
		headers := make([]wireHeader, 0, len(action.Parameters.Headers))
		for _, header := range action.Parameters.Headers {
			headers = append(headers, wireHeader{Name: header.Name, Value: header.Value.Reveal()})
		}
		rule.Actions = append(rule.Actions, wireAction{
			Action:     action,
			Parameters: wireParameters{ActionParameters: action.Parameters, Headers: headers},
		})
	}
	return json.Marshal(rule)
}

// CustomRuleRef identifies a rule returned by the FSM data API. Only the identity is
// decoded; the rest of the rule as FSM stores it is ignored.
type CustomRuleRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// CustomRuleEnvelope wraps a rule in FSM data API responses
type CustomRuleEnvelope struct {
	CustomRule CustomRuleRef `json:"customRule"`
}

// CustomRuleQueryResponse is the FSM data API response for rule queries and creates
type CustomRuleQueryResponse struct {
	Data             []CustomRuleEnvelope `json:"data"`
	PageSize         int                  `json:"pageSize,omitempty"`
	CurrentPage      int                  `json:"currentPage,omitempty"`
	LastPage         int                  `json:"lastPage,omitempty"`
	TotalObjectCount int                  `json:"totalObjectCount,omitempty"`
}

// FindByCode returns the rule whose code matches exactly
func (r CustomRuleQueryResponse) FindByCode(code string) (*CustomRuleRef, bool) {
	for _, envelope := range r.Data {
		if envelope.CustomRule.Code == code {
			rule := envelope.CustomRule
			return &rule, true
		}
	}
	return nil, false
}
