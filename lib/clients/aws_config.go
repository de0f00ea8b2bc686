package clients

import (
	"context"
	"fmt"

	"fsm-backup/lib/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// NewAWSConfig loads the default AWS configuration for the function's region.
// Local runs point every client at LocalStack.
func NewAWSConfig(ctx context.Context, runtime *config.RuntimeConfig) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(runtime.Region),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	if runtime.IsLocal {
		cfg.BaseEndpoint = aws.String(runtime.LocalstackEndpoint)
	}

	return cfg, nil
}
