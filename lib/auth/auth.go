package auth

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
)

// Authorizer context keys set by the FSM token authorizer
const (
	ContextUserID            = "userId"
	ContextUser              = "user"
	ContextPermissionGroupID = "permissionGroupId"
	ContextAccountID         = "accountId"
)

// Claims is the FSM identity the token authorizer passed on to the API Gateway request
type Claims struct {
	UserID            string `json:"userId"`
	User              string `json:"user"`
	PermissionGroupID int64  `json:"permissionGroupId"`
	AccountID         int64  `json:"accountId"`
}

// ExtractClaimsFromRequest reads the FSM identity from the API Gateway authorizer context
func ExtractClaimsFromRequest(request events.APIGatewayProxyRequest) (*Claims, error) {
	claimsMap := request.RequestContext.Authorizer
	if claimsMap == nil {
		return nil, fmt.Errorf("claims not found in authorizer context")
	}

	userID, ok := claimsMap[ContextUserID].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("%s not found in claims", ContextUserID)
	}
	user, _ := claimsMap[ContextUser].(string)

	accountID, err := parseInt64Claim(claimsMap, ContextAccountID)
	if err != nil {
		return nil, err
	}
	// permission group is optional on service tokens
	permissionGroupID, _ := parseInt64Claim(claimsMap, ContextPermissionGroupID)

	return &Claims{
		UserID:            userID,
		User:              user,
		PermissionGroupID: permissionGroupID,
		AccountID:         accountID,
	}, nil
}

// API Gateway hands context values over as strings; direct invocations may use numbers
func parseInt64Claim(claimsMap map[string]interface{}, key string) (int64, error) {
	value, exists := claimsMap[key]
	if !exists {
		return 0, fmt.Errorf("%s not found in claims", key)
	}

	switch v := value.(type) {
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse %s string: %w", key, err)
		}
		return parsed, nil
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	default:
		return 0, fmt.Errorf("%s has unexpected type", key)
	}
}

// ToJSON converts claims to JSON string for logging
func (c *Claims) ToJSON() string {
	data, _ := json.Marshal(c)
	return string(data)
}
