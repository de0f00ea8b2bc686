package data

import (
	"context"
	"encoding/json"
	"fmt"

	"fsm-backup/lib/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/sirupsen/logrus"
)

// SecretRepository resolves the FSM client credential secret
type SecretRepository interface {
	GetCredentialSecret(ctx context.Context, secretID string) (*models.CredentialSecret, error)
}

type SecretsManagerClientInterface interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretDao reads the credential secret from Secrets Manager on every call.
// The value is never cached; only the OAuth token derived from it is.
type SecretDao struct {
	SecretsManager SecretsManagerClientInterface
	Logger         *logrus.Logger
}

func (dao *SecretDao) GetCredentialSecret(ctx context.Context, secretID string) (*models.CredentialSecret, error) {
	output, err := dao.SecretsManager.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret value: %w", err)
	}
	if output.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", secretID)
	}

	var secret models.CredentialSecret
	if err := json.Unmarshal([]byte(*output.SecretString), &secret); err != nil {
		return nil, fmt.Errorf("failed to parse credential secret: %w", err)
	}
	if secret.ClientID == "" || secret.ClientSecret == "" {
		return nil, fmt.Errorf("credential secret is missing clientId or clientSecret")
	}

	dao.Logger.WithFields(logrus.Fields{
		"operation":          "GetCredentialSecret",
		"fsm_client_id":      secret.FsmClientID,
		"fsm_client_version": secret.FsmClientVersion,
		"fsm_account_id":     secret.FsmAccountID,
		"fsm_company_id":     secret.FsmCompanyID,
	}).Info("Retrieved FSM credential secret")

	return &secret, nil
}
