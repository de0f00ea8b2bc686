// Package main implements the API Gateway TOKEN authorizer for FSM user tokens.
//
// The FSM signing keys are downloaded during the cold start. A token is accepted when
// its RS256 signature verifies against one of them, it has not expired, and it was
// issued for the configured FSM account and company.
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

const jwksHTTPTimeout = 10 * time.Second

// Global variables for Lambda cold start optimization
var (
	logger     *logrus.Logger
	authorizer *service.Authorizer
)

func init() {
	ctx := context.Background()

	runtime, err := config.LoadRuntime()
	if err != nil {
		logrus.WithError(err).Fatal("Error loading runtime configuration")
	}

	// Logger Setup
	logger = util.NewLogger(runtime.IsLocal, runtime.LogLevel)

	var params config.ParameterSource
	if runtime.SSMParameterPath != "" {
		awsCfg, err := clients.NewAWSConfig(ctx, runtime)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"operation": "init",
				"error":     err.Error(),
			}).Fatal("Error loading AWS configuration")
		}
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

	authorizerConfig, err := config.LoadAuthorizer(es)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error loading authorizer configuration")
	}

	jwksURL := authorizerConfig.FsmBaseURL + authorizerConfig.JwksPath
	keys, err := auth.NewJWKS(ctx, auth.JWKSOptions{
		URL:        jwksURL,
		HTTPClient: clients.NewHTTPClient(jwksHTTPTimeout),
	})
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"jwks_url":  jwksURL,
			"error":     err.Error(),
		}).Fatal("Error downloading FSM signing keys")
	}

	authorizer = &service.Authorizer{
		Verifier: auth.NewJWTVerifier(keys, authorizerConfig.FsmAccountID, authorizerConfig.FsmCompanyID),
		Logger:   logger,
	}

	logger.WithField("operation", "init").Info("FSM token authorizer initialized successfully")
}

func main() {
	lambda.Start(authorizer.Authorize)
}
