package data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"fsm-backup/lib/clients"
	"fsm-backup/lib/constants"
	"fsm-backup/lib/fsm"
	"fsm-backup/lib/models"

	"github.com/sirupsen/logrus"
)

// CustomRuleRepository looks up and creates FSM business rules
type CustomRuleRepository interface {
	// FindRuleByCode returns nil, nil when no rule has exactly this code
	FindRuleByCode(ctx context.Context, headers fsm.Headers, code string) (*models.CustomRuleRef, error)
	CreateRule(ctx context.Context, headers fsm.Headers, rule models.CustomRule) (*models.CustomRuleRef, error)
}

// CustomRuleDao implements CustomRuleRepository against the FSM data API
type CustomRuleDao struct {
	HTTPClient clients.HTTPClientInterface
	BaseURL    string
	RulePath   string
	Logger     *logrus.Logger
}

func (dao *CustomRuleDao) ruleURL(query url.Values) string {
	query.Set("dtos", constants.CUSTOM_RULE_DTO_VERSION)
	return dao.BaseURL + dao.RulePath + "?" + query.Encode()
}

func (dao *CustomRuleDao) FindRuleByCode(ctx context.Context, headers fsm.Headers, code string) (*models.CustomRuleRef, error) {
	query := url.Values{}
	query.Set("query", fmt.Sprintf(`code="%s"`, code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dao.ruleURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule query: %w", err)
	}
	headers.Apply(req)

	result, err := dao.do(req, "find business rule")
	if err != nil {
		return nil, err
	}

	rule, found := result.FindByCode(code)
	dao.Logger.WithFields(logrus.Fields{
		"operation": "FindRuleByCode",
		"code":      code,
		"found":     found,
		"matches":   len(result.Data),
	}).Info("Queried business rules")
	if !found {
		return nil, nil
	}
	return rule, nil
}

func (dao *CustomRuleDao) CreateRule(ctx context.Context, headers fsm.Headers, rule models.CustomRule) (*models.CustomRuleRef, error) {
	body, err := rule.WireJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode business rule: %w", err)
	}

	// json.Marshal keeps the API key redacted
	logged, _ := json.Marshal(rule)
	dao.Logger.WithFields(logrus.Fields{
		"operation": "CreateRule",
		"rule":      string(logged),
	}).Info("Creating business rule")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dao.ruleURL(url.Values{}), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build rule request: %w", err)
	}
	headers.WithJSONBody().Apply(req)

	result, err := dao.do(req, "create business rule")
	if err != nil {
		return nil, err
	}

	created := models.CustomRuleRef{ID: rule.ID, Code: rule.Code}
	if len(result.Data) > 0 {
		created.ID = result.Data[0].CustomRule.ID
	}
	return &created, nil
}

func (dao *CustomRuleDao) do(req *http.Request, operation string) (*models.CustomRuleQueryResponse, error) {
	resp, err := dao.HTTPClient.Do(req)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation": operation,
			"error":     err.Error(),
		}).Error("Failed to reach FSM data API")
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	if !fsm.IsSuccess(resp.StatusCode) {
		httpErr := fsm.NewHTTPError(operation, resp)
		fields := logrus.Fields{
			"operation":   operation,
			"status_code": httpErr.StatusCode,
			"status":      httpErr.Status,
		}
		if httpErr.IsClientError() {
			fields["response_body"] = httpErr.Body
		}
		dao.Logger.WithFields(fields).Error("FSM data API returned an error")
		return nil, httpErr
	}

	var result models.CustomRuleQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", operation, err)
	}
	return &result, nil
}
