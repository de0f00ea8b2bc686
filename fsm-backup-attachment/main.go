// Package main implements the attachment backup Lambda function.
//
// FSM posts an AttachmentCreated event to the webhook whenever a user adds an
// attachment. The function downloads the attachment content from the FSM attachment
// service and streams it into the backup bucket under {PREFIX}{id}/{fileName}, with
// the event detail stored as object metadata.
//
// The OAuth token is cached in the execution environment and reused by warm
// invocations until shortly before it expires.
package main

import (
	"context"
	"time"

	"fsm-backup/lib/auth"
	"fsm-backup/lib/clients"
	"fsm-backup/lib/config"
	"fsm-backup/lib/data"
	"fsm-backup/lib/models"
	"fsm-backup/lib/service"
	"fsm-backup/lib/util"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FSM attachment downloads can be large; the S3 upload runs while the body streams
const fsmHTTPTimeout = 5 * time.Minute

// Global variables for Lambda cold start optimization
var (
	logger        *logrus.Logger
	backupConfig  *config.BackupConfig
	backupService *service.BackupService
)

// Handler backs up one attachment
func Handler(ctx context.Context, event models.AttachmentEvent) (*service.BackupResult, error) {
	log := logger.WithFields(logrus.Fields{
		"operation":     "Handler",
		"request_id":    requestID(ctx),
		"detail_type":   event.DetailType,
		"attachment_id": event.Detail.AttachmentID,
	})
	log.Info("Processing attachment event")

	result, err := backupService.Backup(ctx, event)
	if err != nil {
		log.WithFields(logrus.Fields{
			"error": err.Error(),
			"state": result.State,
		}).Error("Attachment backup failed")
		return result, err
	}

	log.WithFields(logrus.Fields{
		"state":    result.State,
		"uploaded": result.Uploaded,
		"key":      result.Key,
	}).Info("Attachment backup finished")
	return result, nil
}

// requestID correlates log lines of one invocation; local runs have no Lambda context
func requestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}

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

	backupConfig, err = config.LoadBackup(es)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error loading backup configuration")
	}

	httpClient := clients.NewHTTPClient(fsmHTTPTimeout)
	backupService = &service.BackupService{
		Config: backupConfig,
		Secrets: &data.SecretDao{
			SecretsManager: clients.NewSecretsManagerClient(awsCfg),
			Logger:         logger,
		},
		Tokens: auth.NewTokenManager(httpClient, backupConfig.FsmBaseURL+backupConfig.OAuthTokenPath, logger),
		Attachments: &data.AttachmentDao{
			HTTPClient:   httpClient,
			BaseURL:      backupConfig.FsmBaseURL,
			PathTemplate: backupConfig.AttachmentAPIPath,
			Logger:       logger,
		},
		Storage: clients.NewS3Client(awsCfg, backupConfig.BucketName),
		Metrics: &data.MetricsDao{
			CloudWatch: clients.NewCloudWatchClient(awsCfg),
			Namespace:  backupConfig.MetricsNamespace,
			Logger:     logger,
		},
		Logger: logger,
	}

	logger.WithFields(logrus.Fields{
		"operation": "init",
		"bucket":    backupConfig.BucketName,
		"prefix":    backupConfig.KeyPrefix,
	}).Info("Attachment backup service initialized successfully")
}

func main() {
	lambda.Start(Handler)
}
