package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fsm-backup/lib/clients"
	"fsm-backup/lib/constants"
	"fsm-backup/lib/fsm"
	"fsm-backup/lib/models"

	"github.com/sirupsen/logrus"
)

// TokenProvider hands out FSM bearer tokens
type TokenProvider interface {
	GetToken(ctx context.Context, credentials models.CredentialSecret) (string, error)
	Invalidate()
}

// TokenManager caches the OAuth2 client-credentials token for the lifetime of a warm
// Lambda environment. It is created once during the cold start and is not safe for
// concurrent use; Lambda delivers invocations to an environment one at a time.
type TokenManager struct {
	HTTPClient clients.HTTPClientInterface
	TokenURL   string
	Logger     *logrus.Logger

	now       func() time.Time
	token     *models.TokenResponse
	clientID  string
	expiresAt time.Time
}

// NewTokenManager creates a token manager for the FSM token endpoint
func NewTokenManager(httpClient clients.HTTPClientInterface, tokenURL string, logger *logrus.Logger) *TokenManager {
	return &TokenManager{
		HTTPClient: httpClient,
		TokenURL:   tokenURL,
		Logger:     logger,
		now:        time.Now,
	}
}

// GetToken returns the cached access token while it is valid and fetches a new one otherwise
func (m *TokenManager) GetToken(ctx context.Context, credentials models.CredentialSecret) (string, error) {
	if m.token != nil && m.clientID == credentials.ClientID && m.now().Before(m.expiresAt) {
		m.Logger.WithField("operation", "GetToken").Info("Using cached OAuth token")
		return m.token.AccessToken.Reveal(), nil
	}

	m.Logger.WithField("operation", "GetToken").Info("Fetching OAuth token")

	fetchedAt := m.now()
	token, err := m.fetch(ctx, credentials)
	if err != nil {
		return "", err
	}

	m.token = token
	m.clientID = credentials.ClientID
	m.expiresAt = fetchedAt.Add(time.Duration(token.ExpiresIn-constants.TOKEN_EXPIRY_SAFETY_MARGIN) * time.Second)

	logged, _ := json.Marshal(token)
	m.Logger.WithFields(logrus.Fields{
		"operation":      "GetToken",
		"token_response": string(logged),
		"expires_at":     m.expiresAt.Format(time.RFC3339),
	}).Info("OAuth token fetched successfully")

	return token.AccessToken.Reveal(), nil
}

// Invalidate expires the cached token so the next GetToken fetches a new one.
// Callers use it when FSM answers 401 or 403.
func (m *TokenManager) Invalidate() {
	m.expiresAt = m.now()
	m.Logger.WithField("operation", "Invalidate").Warn("OAuth token invalidated")
}

// ExpiresAt reports when the cached token stops being used
func (m *TokenManager) ExpiresAt() time.Time {
	return m.expiresAt
}

func (m *TokenManager) fetch(ctx context.Context, credentials models.CredentialSecret) (*models.TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+basicCredentials(credentials))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		m.Logger.WithFields(logrus.Fields{
			"operation": "GetToken",
			"error":     err.Error(),
		}).Error("Error fetching OAuth token")
		return nil, fmt.Errorf("failed to fetch OAuth token: %w", err)
	}
	defer resp.Body.Close()

	if !fsm.IsSuccess(resp.StatusCode) {
		httpErr := fsm.NewHTTPError("fetch OAuth token", resp)
		m.Logger.WithFields(logrus.Fields{
			"operation":     "GetToken",
			"status_code":   httpErr.StatusCode,
			"response_body": httpErr.Body,
		}).Error("Error fetching OAuth token")
		return nil, httpErr
	}

	var token models.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode OAuth token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("OAuth token response has no access_token")
	}
	return &token, nil
}

func basicCredentials(credentials models.CredentialSecret) string {
	raw := credentials.ClientID + ":" + credentials.ClientSecret.Reveal()
	return base64.StdEncoding.EncodeToString([]byte(raw))
}
