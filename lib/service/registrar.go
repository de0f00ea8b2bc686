package service

import (
	"context"
	"fmt"

	"fsm-backup/lib/auth"
	"fsm-backup/lib/config"
	"fsm-backup/lib/data"
	"fsm-backup/lib/fsm"
	"fsm-backup/lib/models"

	"github.com/sirupsen/logrus"
)

// Registration is the outcome of EnsureRuleRegistered
type Registration struct {
	Rule    *models.CustomRuleRef
	Created bool
}

// Registrar makes sure FSM has exactly one business rule that forwards
// attachment-created events to the backup webhook
type Registrar struct {
	Config  *config.RuleConfig
	Secrets data.SecretRepository
	Tokens  auth.TokenProvider
	APIKeys data.APIKeyRepository
	Rules   data.CustomRuleRepository
	Logger  *logrus.Logger
}

// RuleCode is the identity of this deployment's rule
func (r *Registrar) RuleCode() string {
	return models.RuleCode(r.Config.StackName, r.Config.Region)
}

// EnsureRuleRegistered looks the rule up by code and creates it only when it is absent.
// Errors are returned to the caller so a failed registration fails the deployment.
func (r *Registrar) EnsureRuleRegistered(ctx context.Context) (*Registration, error) {
	if err := r.Config.RequireWebhook(); err != nil {
		return nil, err
	}

	code := r.RuleCode()
	logger := r.Logger.WithFields(logrus.Fields{
		"operation": "EnsureRuleRegistered",
		"code":      code,
	})

	apiKey, err := r.APIKeys.GetAPIKeyValue(ctx, r.Config.APIKeyID)
	if err != nil {
		return nil, err
	}

	headers, err := r.headers(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := r.Rules.FindRuleByCode(ctx, headers, code)
	if err != nil {
		return nil, r.fsmFailure(err)
	}
	if existing != nil {
		logger.WithField("rule_id", existing.ID).Info("Business rule already registered, skipping creation")
		return &Registration{Rule: existing, Created: false}, nil
	}

	rule := models.NewAttachmentBackupRule(code, r.Config.WebhookURL, apiKey)
	created, err := r.Rules.CreateRule(ctx, headers, rule)
	if err != nil {
		return nil, r.fsmFailure(err)
	}

	logger.WithField("rule_id", created.ID).Info("Business rule created")
	return &Registration{Rule: created, Created: true}, nil
}

func (r *Registrar) headers(ctx context.Context) (fsm.Headers, error) {
	secret, err := r.Secrets.GetCredentialSecret(ctx, r.Config.ClientSecretARN)
	if err != nil {
		return fsm.Headers{}, err
	}

	token, err := r.Tokens.GetToken(ctx, *secret)
	if err != nil {
		return fsm.Headers{}, err
	}

	identity := models.FsmIdentity{
		AccountID:     r.Config.FsmAccountID,
		CompanyID:     r.Config.FsmCompanyID,
		ClientID:      r.Config.FsmClientID,
		ClientVersion: r.Config.FsmClientVersion,
	}
	return fsm.NewHeaders(identity, token), nil
}

func (r *Registrar) fsmFailure(err error) error {
	if fsm.IsAuthFailure(err) {
		r.Tokens.Invalidate()
	}
	return fmt.Errorf("business rule registration failed: %w", err)
}
