// Package config loads the environment-sourced configuration of each function.
//
// Every function reads its settings once, during the Lambda cold start, into one of
// the structs below and hands that struct to the services it constructs. Values can
// come from three places, in order of precedence: the process environment, an
// optional SSM Parameter Store path (SSM_PARAMETER_PATH), and, for local runs only,
// a .env file in the working directory.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"fsm-backup/lib/constants"

	goenv "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// ErrMissingParameter is returned when a setting that is only checked at invocation time is empty
var ErrMissingParameter = errors.New("missing required parameter")

// ParameterSource supplies configuration values by parameter name (full SSM path)
type ParameterSource interface {
	GetParameters(ctx context.Context) (map[string]string, error)
}

// RuntimeConfig holds the settings shared by every function
type RuntimeConfig struct {
	IsLocal            bool   `env:"IS_LOCAL,default=false"`
	LogLevel           string `env:"LOG_LEVEL,default=info"`
	Region             string `env:"AWS_REGION,default=us-east-1"`
	LocalstackEndpoint string `env:"LOCALSTACK_ENDPOINT,default=http://localhost:4566"`
	SSMParameterPath   string `env:"SSM_PARAMETER_PATH"`
}

// BackupConfig configures the attachment backup function
type BackupConfig struct {
	FsmBaseURL        string `env:"FSM_BASE_URL,required=true"`
	OAuthTokenPath    string `env:"OAUTH2_TOKEN_PATH,required=true"`
	AttachmentAPIPath string `env:"ATTACHMENT_API_PATH,required=true"`
	BucketName        string `env:"S3_BUCKET_NAME,required=true"`
	ClientSecretARN   string `env:"CLIENT_SECRET_ARN,required=true"`
	KeyPrefix         string `env:"PREFIX,default=uploads/"`
	MetricsNamespace  string `env:"METRICS_NAMESPACE"`
}

// RuleConfig configures the business rule registrar
type RuleConfig struct {
	FsmBaseURL       string `env:"FSM_BASE_URL,required=true"`
	OAuthTokenPath   string `env:"OAUTH2_TOKEN_PATH,required=true"`
	CustomRulePath   string `env:"FSM_CUSTOM_RULE_PATH,required=true"`
	FsmClientID      string `env:"FSM_CLIENT_ID,required=true"`
	FsmClientVersion string `env:"FSM_CLIENT_VERSION,required=true"`
	FsmAccountID     string `env:"FSM_ACCOUNT_ID,required=true"`
	FsmCompanyID     string `env:"FSM_COMPANY_ID,required=true"`
	StackName        string `env:"STACK_NAME,required=true"`
	Region           string `env:"AWS_REGION,required=true"`
	ClientSecretARN  string `env:"CLIENT_SECRET_ARN,required=true"`
	APIKeyID         string `env:"API_KEY_ID"`
	WebhookURL       string `env:"API_WEBHOOK_URL"`
}

// DashboardConfig configures the dashboard link function
type DashboardConfig struct {
	Region           string `env:"AWS_REGION,required=true"`
	BucketName       string `env:"BUCKET_NAME,required=true"`
	FunctionName     string `env:"LAMBDA_FUNCTION_NAME,required=true"`
	WebhookAPIName   string `env:"WEBHOOK_API_NAME,default=FSM Webhook Service"`
	MetricsNamespace string `env:"METRICS_NAMESPACE"`
	AllowedOrigins   string `env:"ALLOWED_ORIGINS,default=*"`
}

// Origins splits the comma separated ALLOWED_ORIGINS value
func (c *DashboardConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// AuthorizerConfig configures the FSM token authorizer
type AuthorizerConfig struct {
	FsmBaseURL   string `env:"FSM_BASE_URL,required=true"`
	JwksPath     string `env:"JWKS_PATH,required=true"`
	FsmAccountID string `env:"FSM_ACCOUNT_ID,required=true"`
	FsmCompanyID string `env:"FSM_COMPANY_ID,required=true"`
}

// LoadRuntime reads the shared settings straight from the process environment.
// Local runs load .env first so the rest of the cold start sees its values.
func LoadRuntime() (*RuntimeConfig, error) {
	if isLocal, _ := strconv.ParseBool(os.Getenv(constants.IS_LOCAL)); isLocal {
		// a missing .env is fine, the environment may already be complete
		_ = godotenv.Load()
	}

	var cfg RuntimeConfig
	if _, err := goenv.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("invalid runtime configuration: %w", err)
	}
	return &cfg, nil
}

// Environ returns the process environment, with unset variables filled from the
// parameter source. Parameters are matched on the last segment of their name, so
// /fsm-backup/FSM_BASE_URL fills FSM_BASE_URL.
func Environ(ctx context.Context, source ParameterSource) (goenv.EnvSet, error) {
	es, err := goenv.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if source == nil {
		return es, nil
	}

	params, err := source.GetParameters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters: %w", err)
	}
	for name, value := range params {
		key := path.Base(name)
		if current, ok := es[key]; !ok || current == "" {
			es[key] = value
		}
	}
	return es, nil
}

// LoadBackup parses the backup function configuration
func LoadBackup(es goenv.EnvSet) (*BackupConfig, error) {
	var cfg BackupConfig
	if err := goenv.Unmarshal(es, &cfg); err != nil {
		return nil, fmt.Errorf("invalid backup configuration: %w", err)
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = constants.DEFAULT_KEY_PREFIX
	}
	return &cfg, nil
}

// LoadRule parses the registrar configuration
func LoadRule(es goenv.EnvSet) (*RuleConfig, error) {
	var cfg RuleConfig
	if err := goenv.Unmarshal(es, &cfg); err != nil {
		return nil, fmt.Errorf("invalid custom rule configuration: %w", err)
	}
	return &cfg, nil
}

// LoadDashboard parses the dashboard function configuration
func LoadDashboard(es goenv.EnvSet) (*DashboardConfig, error) {
	var cfg DashboardConfig
	if err := goenv.Unmarshal(es, &cfg); err != nil {
		return nil, fmt.Errorf("invalid dashboard configuration: %w", err)
	}
	return &cfg, nil
}

// LoadAuthorizer parses the authorizer configuration
func LoadAuthorizer(es goenv.EnvSet) (*AuthorizerConfig, error) {
	var cfg AuthorizerConfig
	if err := goenv.Unmarshal(es, &cfg); err != nil {
		return nil, fmt.Errorf("invalid authorizer configuration: %w", err)
	}
	return &cfg, nil
}

// RequireWebhook checks the settings the registrar only needs when it actually registers
func (c *RuleConfig) RequireWebhook() error {
	if c.APIKeyID == "" || c.WebhookURL == "" {
		return fmt.Errorf("%w: %s and %s must be set", ErrMissingParameter, constants.API_KEY_ID, constants.API_WEBHOOK_URL)
	}
	return nil
}

