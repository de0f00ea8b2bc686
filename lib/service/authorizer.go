package service

import (
	"context"
	"errors"

	"fsm-backup/lib/auth"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

// ErrUnauthorized is the only error the authorizer returns; API Gateway maps it to 401
var ErrUnauthorized = errors.New("Unauthorized")

// TokenVerifier validates an FSM access token
type TokenVerifier interface {
	Verify(ctx context.Context, authorization string) (*auth.FsmClaims, error)
}

// Authorizer is the API Gateway TOKEN authorizer for FSM user tokens
type Authorizer struct {
	Verifier TokenVerifier
	Logger   *logrus.Logger
}

// Authorize allows the caller to invoke methodArn when the token verifies
func (a *Authorizer) Authorize(ctx context.Context, request events.APIGatewayCustomAuthorizerRequest) (events.APIGatewayCustomAuthorizerResponse, error) {
	logger := a.Logger.WithFields(logrus.Fields{
		"operation":  "Authorize",
		"method_arn": request.MethodArn,
	})

	claims, err := a.Verifier.Verify(ctx, request.AuthorizationToken)
	if err != nil {
		logger.WithError(err).Warn("Rejected token")
		return events.APIGatewayCustomAuthorizerResponse{}, ErrUnauthorized
	}

	logger.WithField("user_name", claims.UserName).Info("Token accepted")
	return AllowPolicy(claims, request.MethodArn), nil
}

// AllowPolicy grants execute-api:Invoke on methodArn and passes the FSM identity on
// to the backend through the authorizer context
func AllowPolicy(claims *auth.FsmClaims, methodArn string) events.APIGatewayCustomAuthorizerResponse {
	return events.APIGatewayCustomAuthorizerResponse{
		PrincipalID: claims.UserName,
		PolicyDocument: events.APIGatewayCustomAuthorizerPolicy{
			Version: "2012-10-17",
			Statement: []events.IAMPolicyStatement{
				{
					Action:   []string{"execute-api:Invoke"},
					Effect:   "Allow",
					Resource: []string{methodArn},
				},
			},
		},
		Context: map[string]interface{}{
			auth.ContextUserID:            claims.UserName,
			auth.ContextUser:              claims.User,
			auth.ContextPermissionGroupID: claims.PermissionGroupID.String(),
			auth.ContextAccountID:         claims.AccountID.String(),
		},
	}
}
