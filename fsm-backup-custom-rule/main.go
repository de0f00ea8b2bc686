// Package main implements the business rule registrar Lambda function.
//
// The function makes sure FSM holds the business rule that posts AttachmentCreated
// events to the backup webhook. It runs as a CloudFormation custom resource during
// deployment and again whenever the FSM client secret is updated, so a rotated or
// newly entered secret gets the rule registered without a redeployment.
package main

import (
	"context"
	"time"

	"fsm-backup/lib/auth"
	"fsm-backup/lib/clients"
	"fsm-backup/lib/config"
	"fsm-backup/lib/data"
	"fsm-backup/lib/service"
	"fsm-backup/lib/util"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

const fsmHTTPTimeout = 30 * time.Second

// Global variables for Lambda cold start optimization
var (
	logger     *logrus.Logger
	ruleConfig *config.RuleConfig
	handler    *service.RuleResourceHandler
)

func init() {
	ctx := context.Background()

	runtime, err := config.LoadRuntime()
	if err != nil {
		logrus.WithError(err).Fatal("Error loading runtime configuration")
	}

	// Logger Setup
	logger = util.NewLogger(runtime.IsLocal, runtime.LogLevel)

	awsCfg, err := clients.NewAWSConfig(ctx, runtime)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error loading AWS configuration")
	}

	var params config.ParameterSource
	if runtime.SSMParameterPath != "" {
		params = &data.SSMDao{
			SSM:    clients.NewSSMClient(awsCfg),
			Path:   runtime.SSMParameterPath,
			Logger: logger,
		}
	}
	es, err := config.Environ(ctx, params)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error while getting SSM params from parameter store")
	}

	ruleConfig, err = config.LoadRule(es)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error loading custom rule configuration")
	}

	httpClient := clients.NewHTTPClient(fsmHTTPTimeout)
	registrar := &service.Registrar{
		Config: ruleConfig,
		Secrets: &data.SecretDao{
			SecretsManager: clients.NewSecretsManagerClient(awsCfg),
			Logger:         logger,
		},
		Tokens: auth.NewTokenManager(httpClient, ruleConfig.FsmBaseURL+ruleConfig.OAuthTokenPath, logger),
		APIKeys: &data.APIKeyDao{
			APIGateway: clients.NewAPIGatewayClient(awsCfg),
			Logger:     logger,
		},
		Rules: &data.CustomRuleDao{
			HTTPClient: httpClient,
			BaseURL:    ruleConfig.FsmBaseURL,
			RulePath:   ruleConfig.CustomRulePath,
			Logger:     logger,
		},
		Logger: logger,
	}

	handler = &service.RuleResourceHandler{Registrar: registrar, Logger: logger}

	logger.WithFields(logrus.Fields{
		"operation": "init",
		"rule_code": registrar.RuleCode(),
	}).Info("Custom rule registrar initialized successfully")
}

func main() {
	lambda.Start(handler.Handle)
}
