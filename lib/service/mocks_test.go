package service

import (
	"context"
	"io"
	"strings"

	"fsm-backup/lib/clients"
	"fsm-backup/lib/fsm"
	"fsm-backup/lib/models"
)

type mockSecretRepository struct {
	secret *models.CredentialSecret
	err    error
}

func (m *mockSecretRepository) GetCredentialSecret(ctx context.Context, secretID string) (*models.CredentialSecret, error) {
	if m.err != nil {
		return nil, m.err
	}
	secret := *m.secret
	return &secret, nil
}

type mockTokenProvider struct {
	token       string
	err         error
	calls       int
	invalidated int
}

func (m *mockTokenProvider) GetToken(ctx context.Context, credentials models.CredentialSecret) (string, error) {
	m.calls++
	return m.token, m.err
}

func (m *mockTokenProvider) Invalidate() {
	m.invalidated++
}

type mockAttachmentRepository struct {
	content string
	err     error
	headers fsm.Headers
	id      string
}

func (m *mockAttachmentRepository) FetchAttachment(ctx context.Context, headers fsm.Headers, attachmentID string) (io.ReadCloser, error) {
	m.headers = headers
	m.id = attachmentID
	if m.err != nil {
		return nil, m.err
	}
	return io.NopCloser(strings.NewReader(m.content)), nil
}

type storedObject struct {
	key      string
	body     []byte
	metadata map[string]string
}

type mockStorage struct {
	bucket  string
	objects []storedObject
	err     error
}

func (m *mockStorage) UploadObject(ctx context.Context, key string, body io.Reader, metadata map[string]string) (*clients.UploadResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	m.objects = append(m.objects, storedObject{key: key, body: content, metadata: metadata})
	return &clients.UploadResult{Bucket: m.bucket, Key: key, Bytes: int64(len(content))}, nil
}

type mockMetrics struct {
	recorded []models.BackupMetrics
	err      error
}

func (m *mockMetrics) RecordBackup(ctx context.Context, metrics models.BackupMetrics) error {
	m.recorded = append(m.recorded, metrics)
	return m.err
}

type mockAPIKeyRepository struct {
	value models.Sensitive
	err   error
	calls int
}

func (m *mockAPIKeyRepository) GetAPIKeyValue(ctx context.Context, apiKeyID string) (models.Sensitive, error) {
	m.calls++
	return m.value, m.err
}

type mockCustomRuleRepository struct {
	existing  *models.CustomRuleRef
	findErr   error
	createErr error
	created   []models.CustomRule
	queried   []string
	headers   fsm.Headers
}

func (m *mockCustomRuleRepository) FindRuleByCode(ctx context.Context, headers fsm.Headers, code string) (*models.CustomRuleRef, error) {
	m.headers = headers
	m.queried = append(m.queried, code)
	return m.existing, m.findErr
}

func (m *mockCustomRuleRepository) CreateRule(ctx context.Context, headers fsm.Headers, rule models.CustomRule) (*models.CustomRuleRef, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, rule)
	return &models.CustomRuleRef{ID: "A1B2C3", Code: rule.Code}, nil
}
