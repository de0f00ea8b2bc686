// Package service holds the orchestration behind each function: the attachment
// backup, the business rule registrar, the dashboard links and the token authorizer.
package service

import (
	"context"
	"fmt"

	"fsm-backup/lib/auth"
	"fsm-backup/lib/clients"
	"fsm-backup/lib/config"
	"fsm-backup/lib/data"
	"fsm-backup/lib/fsm"
	"fsm-backup/lib/models"

	"github.com/sirupsen/logrus"
)

// BackupState is the last state a backup invocation reached
type BackupState string

const (
	BackupStart             BackupState = "Start"
	BackupTokenAcquired     BackupState = "TokenAcquired"
	BackupAttachmentFetched BackupState = "AttachmentFetched"
	BackupUploaded          BackupState = "Uploaded"
	BackupDone              BackupState = "Done"
	BackupNotFound          BackupState = "NotFound"
	BackupAuthFailed        BackupState = "AuthFailed"
)

// BackupResult describes the outcome of one backup invocation
type BackupResult struct {
	State    BackupState `json:"state"`
	Uploaded bool        `json:"uploaded"`
	Bucket   string      `json:"bucket,omitempty"`
	Key      string      `json:"key,omitempty"`
	Bytes    int64       `json:"bytes,omitempty"`
}

// BackupService copies newly created FSM attachments into S3
type BackupService struct {
	Config      *config.BackupConfig
	Secrets     data.SecretRepository
	Tokens      auth.TokenProvider
	Attachments data.AttachmentRepository
	Storage     clients.S3ClientInterface
	Metrics     data.MetricsRepository
	Logger      *logrus.Logger
}

// Backup runs Start → TokenAcquired → AttachmentFetched → Uploaded → Done.
// A missing attachment ends the run successfully without an upload. An auth failure
// invalidates the cached token and fails the run; the next invocation gets a new token.
func (s *BackupService) Backup(ctx context.Context, event models.AttachmentEvent) (*BackupResult, error) {
	result := &BackupResult{State: BackupStart}

	if err := event.Validate(); err != nil {
		return result, err
	}
	detail := event.Detail
	logger := s.Logger.WithFields(logrus.Fields{
		"operation":     "Backup",
		"id":            detail.ID,
		"attachment_id": detail.AttachmentID,
		"file_name":     detail.FileName,
	})

	secret, err := s.Secrets.GetCredentialSecret(ctx, s.Config.ClientSecretARN)
	if err != nil {
		return result, err
	}

	token, err := s.Tokens.GetToken(ctx, *secret)
	if err != nil {
		return result, err
	}
	result.State = BackupTokenAcquired

	body, err := s.Attachments.FetchAttachment(ctx, fsm.NewHeaders(secret.Identity(), token), detail.AttachmentID)
	switch {
	case err == nil:
	case fsm.IsNotFound(err):
		logger.Warn("Attachment not found in FSM (is this a test invocation?)")
		result.State = BackupNotFound
		return result, nil
	case fsm.IsAuthFailure(err):
		logger.WithError(err).Error("FSM rejected the access token")
		s.Tokens.Invalidate()
		result.State = BackupAuthFailed
		return result, err
	default:
		return result, err
	}
	defer body.Close()
	result.State = BackupAttachmentFetched

	key := detail.BackupKey(s.Config.KeyPrefix)
	logger.WithFields(logrus.Fields{
		"bucket": s.Config.BucketName,
		"key":    key,
	}).Info("Uploading attachment to S3")

	upload, err := s.Storage.UploadObject(ctx, key, body, detail.Metadata())
	if err != nil {
		return result, fmt.Errorf("failed to upload s3://%s/%s: %w", s.Config.BucketName, key, err)
	}
	result.State = BackupUploaded
	result.Uploaded = true
	result.Bucket = upload.Bucket
	result.Key = upload.Key
	result.Bytes = upload.Bytes

	logger.WithFields(logrus.Fields{
		"key":        key,
		"bytes":      upload.Bytes,
		"version_id": upload.VersionID,
	}).Info("File uploaded successfully")

	if s.Metrics != nil {
		// best effort once the file is stored
		if err := s.Metrics.RecordBackup(ctx, models.BackupMetrics{Bucket: s.Config.BucketName, Bytes: upload.Bytes}); err != nil {
			logger.WithError(err).Warn("Failed to record backup metrics")
		}
	}

	result.State = BackupDone
	return result, nil
}
