package data

import (
	"context"
	"errors"
	"fmt"

	"fsm-backup/lib/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"
)

// APIKeyRepository resolves an API Gateway key id to the key value
type APIKeyRepository interface {
	GetAPIKeyValue(ctx context.Context, apiKeyID string) (models.Sensitive, error)
}

type APIGatewayClientInterface interface {
	GetApiKey(ctx context.Context, params *apigateway.GetApiKeyInput, optFns ...func(*apigateway.Options)) (*apigateway.GetApiKeyOutput, error)
}

type APIKeyDao struct {
	APIGateway APIGatewayClientInterface
	Logger     *logrus.Logger
}

func (dao *APIKeyDao) GetAPIKeyValue(ctx context.Context, apiKeyID string) (models.Sensitive, error) {
	dao.Logger.WithFields(logrus.Fields{
		"operation":  "GetAPIKeyValue",
		"api_key_id": apiKeyID,
	}).Info("Retrieving API key value")

	output, err := dao.APIGateway.GetApiKey(ctx, &apigateway.GetApiKeyInput{
		ApiKey:       aws.String(apiKeyID),
		IncludeValue: aws.Bool(true),
	})
	if err != nil {
		fields := logrus.Fields{
			"operation":  "GetAPIKeyValue",
			"api_key_id": apiKeyID,
			"error":      err.Error(),
		}

		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			fields["error_code"] = apiErr.ErrorCode()
			switch apiErr.ErrorCode() {
			case "AccessDeniedException", "UnauthorizedException":
				dao.Logger.WithFields(fields).Error("Access denied, check the function's apigateway:GET permission")
			case "NotFoundException":
				dao.Logger.WithFields(fields).Error("API key not found")
			default:
				dao.Logger.WithFields(fields).Error("Unexpected API Gateway error")
			}
		} else {
			dao.Logger.WithFields(fields).Error("Failed to retrieve API key")
		}
		return "", fmt.Errorf("failed to get API key %s: %w", apiKeyID, err)
	}

	if output.Value == nil || *output.Value == "" {
		return "", fmt.Errorf("API key %s has no value", apiKeyID)
	}

	dao.Logger.WithField("operation", "GetAPIKeyValue").Info("Retrieved API key value")
	return models.Sensitive(*output.Value), nil
}
